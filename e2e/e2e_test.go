package e2e

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/infra/sink"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// startInflux starts a pre-provisioned InfluxDB 2.7 container and returns it
// along with the base URL. The container is left running until terminated.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	url := fmt.Sprintf("http://%s:%s", host, port.Port())
	return cont, url
}

// Test_E2E_InfluxSink drives the InfluxDB sink against a real server:
// predictions, alerts and archived readings must land in their measurements
// and come back through Flux.
func Test_E2E_InfluxSink(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cont, url := startInflux(ctx, t)
	if cont != nil {
		defer cont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("InfluxDB started at %s", url)

	s := sink.NewInfluxSink(url, influxToken, influxOrg, influxBucket)
	defer func() { _ = s.Close() }()

	now := time.Now().UTC()
	pred := model.Prediction{
		ID:                 "pred-e2e",
		UnitID:             "ups0001",
		Timestamp:          now,
		FailureProbability: 0.82,
		Confidence:         0.82,
		Status:             model.StatusCritical,
		Reasons: []model.Reason{
			{Severity: model.SeverityCritical, Metric: model.MetricBattery, Message: "battery critically low"},
		},
		RiskCategory: "high",
		Timeframe:    "6_hours",
	}
	if err := s.Save(ctx, pred); err != nil {
		t.Fatalf("save prediction: %v", err)
	}
	if err := s.RaiseAlert(ctx, model.Alert{
		ID:        "alert-e2e",
		UnitID:    "ups0001",
		Type:      model.AlertTypePrediction,
		Severity:  model.SeverityCritical,
		Title:     "Failure risk on ups0001",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("raise alert: %v", err)
	}
	if err := s.ArchiveReading(ctx, model.Reading{UnitID: "ups0001", Timestamp: now, BatteryLevel: 15, Temperature: 26}); err != nil {
		t.Fatalf("archive reading: %v", err)
	}

	cli := NewInfluxClient(url, influxOrg, influxBucket, influxToken)
	defer cli.Close()

	for _, m := range []string{"ups_prediction", "ups_alert", "ups_reading"} {
		count, err := cli.CountMeasurement(ctx, m)
		if err != nil {
			t.Fatalf("query %s: %v", m, err)
		}
		if count == 0 {
			t.Errorf("no points in measurement %s", m)
		}
	}
}

// Test_E2E_InfluxFallback checks that an unreachable server degrades to the
// no-op sink instead of failing service startup.
func Test_E2E_InfluxFallback(t *testing.T) {
	s := sink.NewInfluxSinkWithFallback("http://127.0.0.1:1", "", "", "")
	if err := s.Save(context.Background(), model.Prediction{UnitID: "ups0001"}); err != nil {
		t.Fatalf("fallback sink must accept writes: %v", err)
	}
}
