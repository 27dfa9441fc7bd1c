package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aioracle/aioracle/internal/auth"
	"github.com/aioracle/aioracle/internal/database"
	"github.com/aioracle/aioracle/internal/forecaster"
	"github.com/aioracle/aioracle/internal/ingestion"
	"github.com/aioracle/aioracle/internal/models"
	"github.com/aioracle/aioracle/internal/worker"
)

const testSecret = "api-test-secret"

var testPrediction = models.Prediction{
	Timestamp:       "2026-03-01T09:30:00",
	AGIDate:         "2031-01-01",
	AGIType:         models.ConsensusCrowdExpert.Label(),
	AGIProb:         70,
	ASIDate:         "2036-01-01",
	ASIContext:      models.TakeoffModerate.Label(),
	SingularityDate: "2051-01-01",
	SingularityProb: 65,
}

type fakeEngine struct {
	analysis models.Analysis
	err      error
	forced   []bool
	cleared  int
}

func (f *fakeEngine) DetailedAnalysis(_ context.Context, force bool) (models.Analysis, error) {
	f.forced = append(f.forced, force)
	return f.analysis, f.err
}

func (f *fakeEngine) ClearCache() { f.cleared++ }

type fakeStore struct {
	records []models.PredictionRecord
	err     error
	limit   int
}

func (f *fakeStore) History(_ context.Context, limit int) ([]models.PredictionRecord, error) {
	f.limit = limit
	return f.records, f.err
}

func (f *fakeStore) Latest(context.Context) (models.PredictionRecord, error) {
	if f.err != nil {
		return models.PredictionRecord{}, f.err
	}
	if len(f.records) == 0 {
		return models.PredictionRecord{}, database.ErrNotFound
	}
	return f.records[0], nil
}

type fakeRuns struct {
	record  models.PredictionRecord
	err     error
	started []bool
	runs    map[string]worker.RunStatus
}

func (f *fakeRuns) Start(_ context.Context, force bool) string {
	f.started = append(f.started, force)
	return "run-1"
}

func (f *fakeRuns) Execute(context.Context, bool, worker.Handlers) (models.PredictionRecord, error) {
	return f.record, f.err
}

func (f *fakeRuns) Get(id string) (worker.RunStatus, bool) {
	st, ok := f.runs[id]
	return st, ok
}

type fakeSources []ingestion.ConnectorStatus

func (f fakeSources) Statuses() []ingestion.ConnectorStatus { return f }

type fakeDB struct {
	err error
}

func (f *fakeDB) Health(context.Context) error { return f.err }

func (f *fakeDB) PoolStats() map[string]interface{} {
	return map[string]interface{}{"open_connections": 1}
}

type fixture struct {
	engine *fakeEngine
	store  *fakeStore
	runs   *fakeRuns
	db     *fakeDB
	mux    *http.ServeMux
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine: &fakeEngine{analysis: models.Analysis{Prediction: testPrediction, TotalDataPoints: 3}},
		store:  &fakeStore{},
		runs:   &fakeRuns{record: models.PredictionRecord{ID: "pred-1", Prediction: testPrediction}, runs: map[string]worker.RunStatus{}},
		db:     &fakeDB{},
		mux:    http.NewServeMux(),
	}

	token, err := auth.GenerateToken(auth.AdminUser, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	f.token = token

	SetupRoutes(f.mux, Dependencies{
		Engine:  f.engine,
		Store:   f.store,
		Runs:    f.runs,
		Sources: fakeSources{{Name: "Metaculus", Healthy: true}, {Name: "Manifold"}},
		DB:      f.db,
		Auth:    auth.Config{JWTSecret: testSecret, AdminPassword: "pw", TokenDuration: time.Hour},
		Version: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

func (f *fixture) do(method, target, body string, admin bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if admin {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rr.Body.String(), err)
	}
}

func TestInfoAndSources(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/api/info", "", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var info InfoResponse
	decode(t, rr, &info)
	if info.Name != "aioracle" || info.Version != "test" || len(info.Sources) != 2 || !info.LoginEnabled {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Database["open_connections"] != float64(1) {
		t.Errorf("expected database pool stats in info, got %+v", info.Database)
	}

	rr = f.do(http.MethodGet, "/api/sources", "", false)
	var sources struct {
		Sources []ingestion.ConnectorStatus `json:"sources"`
		Count   int                         `json:"count"`
	}
	decode(t, rr, &sources)
	if sources.Count != 2 || sources.Sources[0].Name != "Metaculus" || !sources.Sources[0].Healthy {
		t.Errorf("unexpected sources: %+v", sources)
	}

	if rr := f.do(http.MethodGet, "/healthz", "", false); rr.Code != http.StatusOK {
		t.Errorf("expected healthz 200, got %d", rr.Code)
	}
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	f := newFixture(t)
	f.db.err = errors.New("connection refused")

	rr := f.do(http.MethodGet, "/healthz", "", false)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var body map[string]string
	decode(t, rr, &body)
	if body["status"] != "unavailable" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestListPredictions(t *testing.T) {
	f := newFixture(t)
	f.store.records = []models.PredictionRecord{{ID: "b", Prediction: testPrediction}, {ID: "a", Prediction: testPrediction}}

	rr := f.do(http.MethodGet, "/api/predictions?limit=5", "", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp HistoryResponse
	decode(t, rr, &resp)
	if resp.Count != 2 || resp.Predictions[0].ID != "b" || f.store.limit != 5 {
		t.Errorf("unexpected history: %+v (limit %d)", resp, f.store.limit)
	}

	if rr := f.do(http.MethodGet, "/api/predictions?limit=zero", "", false); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rr.Code)
	}

	f.store.err = errors.New("db down")
	if rr := f.do(http.MethodGet, "/api/predictions", "", false); rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on store failure, got %d", rr.Code)
	}
}

func TestLatestPrediction(t *testing.T) {
	f := newFixture(t)

	if rr := f.do(http.MethodGet, "/api/predictions/latest", "", false); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on empty store, got %d", rr.Code)
	}

	f.store.records = []models.PredictionRecord{{ID: "latest", Prediction: testPrediction}}
	rr := f.do(http.MethodGet, "/api/predictions/latest", "", false)
	var rec models.PredictionRecord
	decode(t, rr, &rec)
	if rec.ID != "latest" || rec.AGIDate != "2031-01-01" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestCreatePrediction(t *testing.T) {
	f := newFixture(t)

	if rr := f.do(http.MethodPost, "/api/predictions", "", false); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr := f.do(http.MethodPost, "/api/predictions?force=true", "", true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var rec models.PredictionRecord
	decode(t, rr, &rec)
	if rec.ID != "pred-1" {
		t.Errorf("unexpected record: %+v", rec)
	}

	rr = f.do(http.MethodPost, "/api/predictions?async=true&force=true", "", true)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	var accepted RunAccepted
	decode(t, rr, &accepted)
	if accepted.RunID != "run-1" || accepted.StatusURL != "/api/runs/run-1" {
		t.Errorf("unexpected accepted body: %+v", accepted)
	}
	if len(f.runs.started) != 1 || !f.runs.started[0] {
		t.Errorf("expected one forced async run, got %v", f.runs.started)
	}
}

func TestCreatePredictionMapsEngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"fetch", &forecaster.DataFetchError{Reason: "no forecast data retrieved from any source"}, http.StatusBadGateway},
		{"validation", &forecaster.DataValidationError{Got: 0, Need: 1}, http.StatusUnprocessableEntity},
		{"other", errors.New("failed to save prediction"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.runs.err = tt.err

			rr := f.do(http.MethodPost, "/api/predictions", "", true)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			var body map[string]string
			decode(t, rr, &body)
			if body["error"] != tt.err.Error() {
				t.Errorf("expected error %q, got %q", tt.err.Error(), body["error"])
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	f := newFixture(t)
	f.runs.runs["run-1"] = worker.RunStatus{ID: "run-1", State: worker.RunRunning, Progress: 55, Message: worker.StageValidating.Message}

	rr := f.do(http.MethodGet, "/api/runs/run-1", "", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var st worker.RunStatus
	decode(t, rr, &st)
	if st.Progress != 55 || st.State != worker.RunRunning {
		t.Errorf("unexpected status: %+v", st)
	}

	if rr := f.do(http.MethodGet, "/api/runs/missing", "", false); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestAnalysis(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/api/analysis", "", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var analysis models.Analysis
	decode(t, rr, &analysis)
	if analysis.TotalDataPoints != 3 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}

	if rr := f.do(http.MethodGet, "/api/analysis?force=true", "", false); rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous force, got %d", rr.Code)
	}
	if rr := f.do(http.MethodGet, "/api/analysis?force=true", "", true); rr.Code != http.StatusOK {
		t.Errorf("expected 200 for admin force, got %d", rr.Code)
	}
	if len(f.engine.forced) != 2 || f.engine.forced[0] || !f.engine.forced[1] {
		t.Errorf("unexpected force flags: %v", f.engine.forced)
	}
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)

	if rr := f.do(http.MethodDelete, "/api/cache", "", false); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := f.do(http.MethodDelete, "/api/cache", "", true); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if f.engine.cleared != 1 {
		t.Errorf("expected cache cleared once, got %d", f.engine.cleared)
	}
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)

	if rr := f.do(http.MethodPost, "/api/auth/login", `{"password":"wrong"}`, false); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := f.do(http.MethodPost, "/api/auth/login", `not json`, false); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr := f.do(http.MethodPost, "/api/auth/login", `{"password":"pw"}`, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var login LoginResponse
	decode(t, rr, &login)
	if login.Token == "" {
		t.Fatal("expected token")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	validate := httptest.NewRecorder()
	f.mux.ServeHTTP(validate, req)
	if validate.Code != http.StatusOK {
		t.Fatalf("expected issued token to validate, got %d", validate.Code)
	}
}

func TestLoginDisabledWithoutCredential(t *testing.T) {
	mux := http.NewServeMux()
	SetupRoutes(mux, Dependencies{
		Engine:  &fakeEngine{},
		Store:   &fakeStore{},
		Runs:    &fakeRuns{},
		Sources: fakeSources{},
		Auth:    auth.Config{JWTSecret: testSecret},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":""}`)))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
