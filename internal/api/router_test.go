package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-signals/internal/markethours"
	"stock-signals/internal/model"
)

type fakeCache struct {
	bundle *model.ResultBundle
	err    error
}

func (f *fakeCache) PutBundle(ctx context.Context, b *model.ResultBundle) error { return nil }
func (f *fakeCache) LatestBundle(ctx context.Context) (*model.ResultBundle, error) {
	return f.bundle, f.err
}
func (f *fakeCache) PutBars(ctx context.Context, symbol string, s model.Series, ttl time.Duration) error {
	return nil
}
func (f *fakeCache) GetBars(ctx context.Context, symbol string) (model.Series, error) {
	return nil, nil
}
func (f *fakeCache) Close() error { return nil }

type fakeStore struct {
	runs []*model.ResultBundle
	err  error
	gotN int
}

func (f *fakeStore) SaveRun(ctx context.Context, b *model.ResultBundle) error { return nil }
func (f *fakeStore) RecentRuns(ctx context.Context, n int) ([]*model.ResultBundle, error) {
	f.gotN = n
	if f.err != nil {
		return nil, f.err
	}
	if n < len(f.runs) {
		return f.runs[:n], nil
	}
	return f.runs, nil
}
func (f *fakeStore) Close() error { return nil }

func testBundle() *model.ResultBundle {
	return &model.ResultBundle{
		MarketRegime: model.RegimeInfo{Regime: "BULLISH", Modifier: 1.0},
		Signals:      []model.SignalRecord{{Ticker: "AAPL", Signal: model.SignalBuy}},
		Summary:      model.NewSummary(),
		GeneratedAt:  time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC),
	}
}

func get(t *testing.T, rt *Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rt := NewRouter(nil, nil)
	rec := get(t, rt, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got struct {
		Status       string `json:"status"`
		MarketOpen   *bool  `json:"market_open"`
		MarketStatus string `json:"market_status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("status = %q, want ok", got.Status)
	}
	if got.MarketOpen == nil {
		t.Error("market_open missing from health payload")
	} else if *got.MarketOpen != markethours.IsMarketOpen(time.Now()) {
		t.Errorf("market_open = %v, disagrees with session calendar", *got.MarketOpen)
	}
	if !strings.Contains(got.MarketStatus, "Market") {
		t.Errorf("market_status = %q, want a session status line", got.MarketStatus)
	}
}

func TestSignals_Latest(t *testing.T) {
	rt := NewRouter(&fakeCache{bundle: testBundle()}, nil)
	rec := get(t, rt, "/api/v1/signals")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var got model.ResultBundle
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MarketRegime.Regime != "BULLISH" || len(got.Signals) != 1 {
		t.Errorf("unexpected bundle: %+v", got)
	}
}

func TestSignals_Empty(t *testing.T) {
	rt := NewRouter(&fakeCache{}, nil)
	if rec := get(t, rt, "/api/v1/signals"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSignals_CacheDown(t *testing.T) {
	rt := NewRouter(&fakeCache{err: errors.New("connection refused")}, nil)
	if rec := get(t, rt, "/api/v1/signals"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSignals_NoCacheConfigured(t *testing.T) {
	rt := NewRouter(nil, nil)
	if rec := get(t, rt, "/api/v1/signals"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHistory_LimitHandling(t *testing.T) {
	store := &fakeStore{runs: []*model.ResultBundle{testBundle(), testBundle()}}
	rt := NewRouter(nil, store)

	rec := get(t, rt, "/api/v1/signals/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.gotN != defaultHistoryLimit {
		t.Errorf("default limit = %d, want %d", store.gotN, defaultHistoryLimit)
	}

	get(t, rt, "/api/v1/signals/history?limit=3")
	if store.gotN != 3 {
		t.Errorf("limit = %d, want 3", store.gotN)
	}

	get(t, rt, "/api/v1/signals/history?limit=500")
	if store.gotN != 100 {
		t.Errorf("capped limit = %d, want 100", store.gotN)
	}

	if rec := get(t, rt, "/api/v1/signals/history?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
	if rec := get(t, rt, "/api/v1/signals/history?limit=-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", rec.Code)
	}
}

func TestHistory_EmptyStoreReturnsEmptyList(t *testing.T) {
	rt := NewRouter(nil, &fakeStore{})
	rec := get(t, rt, "/api/v1/signals/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got struct {
		Count int                   `json:"count"`
		Runs  []*model.ResultBundle `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Count != 0 || got.Runs == nil {
		t.Errorf("want empty list, got %+v", got)
	}
}

func TestRegime(t *testing.T) {
	rt := NewRouter(&fakeCache{bundle: testBundle()}, nil)
	rec := get(t, rt, "/api/v1/regime")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got model.RegimeInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Regime != "BULLISH" || got.Modifier != 1.0 {
		t.Errorf("unexpected regime: %+v", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rt := NewRouter(&fakeCache{bundle: testBundle()}, &fakeStore{})
	for _, path := range []string{"/api/v1/signals", "/api/v1/signals/history", "/api/v1/regime"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: status = %d, want 405", path, rec.Code)
		}
	}
}
