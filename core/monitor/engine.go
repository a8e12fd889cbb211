// Package monitor drives the periodic evaluation of the fleet: extraction,
// inference, explanation, severity and persistence, under a scheduler that
// never lets two cycles overlap.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridsentry/upswatch/core/alerts"
	"github.com/gridsentry/upswatch/core/classifier"
	"github.com/gridsentry/upswatch/core/events"
	"github.com/gridsentry/upswatch/core/explain"
	"github.com/gridsentry/upswatch/core/features"
	"github.com/gridsentry/upswatch/core/logger"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/monitor/logging"
	"github.com/gridsentry/upswatch/core/risk"
	"github.com/gridsentry/upswatch/core/severity"
	"github.com/gridsentry/upswatch/core/sink"
	"github.com/gridsentry/upswatch/core/unitstatus"
	"github.com/gridsentry/upswatch/internal/eventbus"
)

// Engine evaluates every unit the source reports, one cycle at a time. Unit
// evaluations are independent: a failure for one unit never aborts its
// siblings, only a missing classifier aborts the cycle.
type Engine struct {
	source Source
	model  classifier.Classifier
	class  severity.Classifier
	sink   sink.Sink
	log    logger.Logger
	cfg    Config

	history sink.HistoryProvider
	status  unitstatus.Store
	bus     eventbus.EventBus
	store   logging.LogStore
}

// NewEngine builds an engine. Source and model are required; a nil sink
// falls back to the no-op sink.
func NewEngine(source Source, cls classifier.Classifier, sev severity.Classifier, snk sink.Sink, log logger.Logger, cfg Config) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("monitor: nil source provided to NewEngine")
	}
	if snk == nil {
		snk = sink.Nop{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{
		source: source,
		model:  cls,
		class:  sev,
		sink:   snk,
		log:    log,
		cfg:    cfg,
	}, nil
}

// SetHistoryProvider configures the archive the history risk score reads
// from. Call before the scheduler starts.
func (e *Engine) SetHistoryProvider(h sink.HistoryProvider) {
	e.history = h
}

// SetStatusStore configures the in-process store the HTTP API reads.
func (e *Engine) SetStatusStore(s unitstatus.Store) {
	e.status = s
}

// SetBus configures the internal event bus.
func (e *Engine) SetBus(b eventbus.EventBus) {
	e.bus = b
}

// SetLogStore configures the audit log predictions and alerts append to.
func (e *Engine) SetLogStore(s logging.LogStore) {
	e.store = s
}

// EvaluateCycle runs one full pass over the fleet. It returns the cycle
// record and an error only for conditions that aborted the cycle; per-unit
// failures are logged, counted and swallowed.
func (e *Engine) EvaluateCycle(ctx context.Context) (model.CycleRecord, error) {
	record := model.CycleRecord{StartedAt: time.Now().UTC()}
	if e.model == nil {
		record.EndedAt = time.Now().UTC()
		return record, fmt.Errorf("start cycle: %w", classifier.ErrUnavailable)
	}
	readings, err := e.source.Latest(ctx)
	if err != nil {
		record.EndedAt = time.Now().UTC()
		return record, fmt.Errorf("list latest readings: %w", err)
	}

	predictions := make([]model.Prediction, 0, len(readings))
	for _, r := range readings {
		if ctx.Err() != nil {
			e.log.Infof("cycle draining after %d of %d units", record.UnitsEvaluated, len(readings))
			break
		}
		record.UnitsEvaluated++
		p, err := e.evaluateUnit(ctx, r)
		if err != nil {
			if errors.Is(err, classifier.ErrUnavailable) {
				record.EndedAt = time.Now().UTC()
				return record, err
			}
			record.UnitsFailed++
			unitFailures.Inc()
			e.log.Errorf("unit %s: evaluation failed: %v", r.UnitID, err)
			continue
		}
		e.persist(ctx, r, p, &record)
		predictions = append(predictions, p)
	}

	record.EndedAt = time.Now().UTC()
	cyclesTotal.Inc()
	cycleDuration.Observe(record.Duration().Seconds())
	unitsEvaluated.Set(float64(record.UnitsEvaluated))
	if e.bus != nil {
		e.bus.Publish(events.CycleEvent{Record: record, Readings: readings, Predictions: predictions})
	}
	return record, nil
}

// evaluateUnit turns one reading into a prediction. The reading is a copy;
// enriching its risk field does not touch the captured snapshot.
func (e *Engine) evaluateUnit(ctx context.Context, r model.Reading) (model.Prediction, error) {
	if e.history != nil {
		hist, err := e.history.RecentReadings(ctx, r.UnitID, e.cfg.Window())
		if err != nil {
			e.log.Warnf("unit %s: history unavailable, keeping carried risk: %v", r.UnitID, err)
		} else if len(hist) > 0 {
			r.FailureRisk = risk.Score(hist)
		}
	}
	vec, err := features.Extract(r)
	if err != nil {
		return model.Prediction{}, err
	}
	prob, conf, err := e.predict(vec)
	if err != nil {
		return model.Prediction{}, err
	}
	reasons := explain.Explain(r)
	status := e.class.Classify(prob, reasons)
	return model.Prediction{
		ID:                 uuid.NewString(),
		UnitID:             r.UnitID,
		UnitName:           r.Name,
		Timestamp:          time.Now().UTC(),
		FailureProbability: prob,
		Confidence:         conf,
		Status:             status,
		Reasons:            reasons,
		RiskCategory:       severity.RiskCategory(status),
		Timeframe:          severity.Timeframe(status),
	}, nil
}

// predict bounds the classifier call with the evaluation timeout. The
// classifier is opaque, so expiry abandons the call instead of cancelling
// it; the unit counts as failed and the cycle moves on.
func (e *Engine) predict(vec features.Vector) (float64, float64, error) {
	type result struct {
		prob, conf float64
		err        error
	}
	ch := make(chan result, 1)
	go func() {
		p, c, err := e.model.Predict(vec)
		ch <- result{prob: p, conf: c, err: err}
	}()
	timer := time.NewTimer(e.cfg.EvaluationTimeout())
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.prob, res.conf, res.err
	case <-timer.C:
		return 0, 0, fmt.Errorf("prediction timed out after %s", e.cfg.EvaluationTimeout())
	}
}

// persist fans the result out to the sink, audit log, status store and bus.
// Sink failures count against the cycle; observers never do.
func (e *Engine) persist(ctx context.Context, r model.Reading, p model.Prediction, record *model.CycleRecord) {
	predictionsTotal.WithLabelValues(string(p.Status)).Inc()
	if ar, ok := e.sink.(sink.ReadingArchiver); ok {
		if err := ar.ArchiveReading(ctx, r); err != nil {
			e.log.Warnf("unit %s: archive reading: %v", r.UnitID, err)
		}
	}
	if err := e.sink.Save(ctx, p); err != nil {
		record.UnitsFailed++
		unitFailures.Inc()
		e.log.Errorf("unit %s: save prediction: %v", p.UnitID, err)
	}
	if e.store != nil {
		if err := e.store.Append(ctx, logging.NewPredictionRecord(p)); err != nil {
			e.log.Warnf("unit %s: append prediction log: %v", p.UnitID, err)
		}
	}
	if e.status != nil {
		e.status.Set(unitstatus.Status{
			UnitID:     p.UnitID,
			State:      p.Status,
			Reading:    r,
			Prediction: p,
			UpdatedAt:  p.Timestamp,
		})
	}
	if e.bus != nil {
		e.bus.Publish(events.PredictionEvent{Prediction: p})
	}
	if !p.IsCritical() {
		return
	}
	a := alerts.Build(p)
	if al, ok := e.sink.(sink.Alerter); ok {
		if err := al.RaiseAlert(ctx, a); err != nil {
			e.log.Errorf("unit %s: raise alert: %v", p.UnitID, err)
		}
	}
	if e.store != nil {
		if err := e.store.Append(ctx, logging.NewAlertRecord(a)); err != nil {
			e.log.Warnf("unit %s: append alert log: %v", p.UnitID, err)
		}
	}
	if e.bus != nil {
		e.bus.Publish(events.AlertEvent{Alert: a})
	}
}
