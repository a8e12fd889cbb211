package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridsentry/upswatch/api/units"
	"github.com/gridsentry/upswatch/config"
	"github.com/gridsentry/upswatch/core/classifier"
	"github.com/gridsentry/upswatch/core/monitor"
	"github.com/gridsentry/upswatch/core/monitor/logging"
	coremonitoring "github.com/gridsentry/upswatch/core/monitoring"
	"github.com/gridsentry/upswatch/core/severity"
	"github.com/gridsentry/upswatch/core/sink"
	"github.com/gridsentry/upswatch/core/unitstatus"
	"github.com/gridsentry/upswatch/infra/logger"
	"github.com/gridsentry/upswatch/infra/monitoring"
	infmqtt "github.com/gridsentry/upswatch/infra/mqtt"
	_ "github.com/gridsentry/upswatch/infra/sink" // register built-in sinks
	"github.com/gridsentry/upswatch/infra/telemetry"
	"github.com/gridsentry/upswatch/internal/eventbus"
	"github.com/gridsentry/upswatch/jobs/fleetreport"
	"github.com/gridsentry/upswatch/jobs/notify"
)

// Service wires the monitoring engine to its collaborators: telemetry
// collector, sinks, audit log, HTTP API and the report job.
type Service struct {
	Scheduler *monitor.Scheduler

	cfg       *config.Config
	collector *telemetry.Collector
	bus       eventbus.EventBus
	store     logging.LogStore
	report    *fleetreport.Job
	notify    *notify.Job
	mqttCli   *infmqtt.PahoClient
	apiSrv    *http.Server
	log       logger.Logger
}

// New creates a Service from the configuration. A model artifact that fails
// to load is fatal here: the scheduler never starts without a classifier.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremonitoring.Init(mon)

	cls, err := classifier.Load(cfg.Model.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logg.Infof("failure model loaded, trained at %s", cls.TrainedAt())

	snk, err := sink.NewSink(cfg.Sink.Sinks)
	if err != nil {
		return nil, fmt.Errorf("result sinks: %w", err)
	}

	store, err := newLogStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	var collector *telemetry.Collector
	var source monitor.Source
	if cfg.Telemetry.Enabled {
		collector, err = telemetry.NewCollector(cfg.MQTT, cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry collector: %w", err)
		}
		source = collector
	} else {
		logg.Warnf("telemetry disabled; running with an empty source")
		source = monitor.Static{}
	}

	bus := eventbus.New(64)
	status := unitstatus.NewMemoryStore()

	engine, err := monitor.NewEngine(source, cls, severity.New(cfg.Severity), snk, logger.New("engine"), cfg.Monitor)
	if err != nil {
		return nil, err
	}
	engine.SetStatusStore(status)
	engine.SetBus(bus)
	engine.SetLogStore(store)
	if hp, ok := snk.(sink.HistoryProvider); ok {
		engine.SetHistoryProvider(hp)
	}

	sched, err := monitor.NewScheduler(engine, logger.New("scheduler"), cfg.Monitor)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Scheduler: sched,
		cfg:       cfg,
		collector: collector,
		bus:       bus,
		store:     store,
		log:       logg,
	}
	if cfg.Report.Enabled {
		svc.report = fleetreport.New(cfg.Report, bus)
	}
	if cfg.Notify.Enabled {
		cli, err := infmqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("notify client: %w", err)
		}
		svc.mqttCli = cli
		svc.notify = notify.New(cli, bus)
	}
	if cfg.API.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/api/units", units.NewStatusHandler(status))
		mux.Handle("/api/units/logs", units.NewLogHandler(store, cfg.API.LogToken))
		mux.Handle("/api/units/", units.NewStatusHandler(status))
		if svc.report != nil {
			mux.Handle("/api/fleet/health", units.NewHealthHandler(svc.report))
		}
		mux.Handle("/metrics", promhttp.Handler())
		svc.apiSrv = &http.Server{Addr: cfg.API.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return svc, nil
}

// newLogStore builds the audit backend selected by config.
func newLogStore(cfg config.LoggingConfig) (logging.LogStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return logging.NewSQLiteStore(cfg.Path)
	case "jsonl":
		if cfg.MaxSizeMB > 0 {
			return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return logging.NewJSONLStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown log backend %s", cfg.Backend)
	}
}

// Run starts all components and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.collector != nil {
		go s.collector.Start(ctx)
	}
	if s.report != nil {
		go s.report.Run()
	}
	if s.notify != nil {
		go s.notify.Run()
	}
	if s.apiSrv != nil {
		go func() {
			s.log.Infof("api listening on %s", s.apiSrv.Addr)
			if err := s.apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	s.Scheduler.Run(ctx)
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.apiSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.apiSrv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}
	s.bus.Close()
	if s.mqttCli != nil {
		s.mqttCli.Disconnect()
	}
	coremonitoring.Flush(2 * time.Second)
	return s.store.Close()
}
