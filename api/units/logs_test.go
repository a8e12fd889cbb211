package units

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/monitor/logging"
)

type memStore struct{ recs []logging.Record }

func (m *memStore) Append(ctx context.Context, r logging.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q logging.Query) ([]logging.Record, error) {
	var res []logging.Record
	for _, r := range m.recs {
		if q.UnitID != "" && r.UnitID != q.UnitID {
			continue
		}
		if q.Kind != "" && r.Kind != q.Kind {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	p := model.Prediction{UnitID: "ups0001", Timestamp: time.Now(), Status: model.StatusAtRisk}
	if err := store.Append(context.Background(), logging.NewPredictionRecord(p)); err != nil {
		t.Fatalf("append: %v", err)
	}
	a := model.Alert{UnitID: "ups0002", CreatedAt: time.Now()}
	if err := store.Append(context.Background(), logging.NewAlertRecord(a)); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := NewLogHandler(store, "tok")

	req := httptest.NewRequest("GET", "/api/units/logs?unit_id=ups0001", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Kind != logging.KindPrediction {
		t.Fatalf("expected one prediction record, got %+v", out)
	}

	req = httptest.NewRequest("GET", "/api/units/logs?kind=alert", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	out = nil
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].UnitID != "ups0002" {
		t.Fatalf("expected one alert record, got %+v", out)
	}

	// unauthorized
	req = httptest.NewRequest("GET", "/api/units/logs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
