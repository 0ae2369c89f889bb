// Package api serves the read-only HTTP API over cached and persisted
// run output.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"stock-signals/internal/markethours"
	"stock-signals/internal/model"
)

const defaultHistoryLimit = 10

// Router serves the signal API. Cache and store may be nil; the matching
// endpoints then answer 503.
type Router struct {
	mux   *http.ServeMux
	cache model.BundleCache
	store model.RunStore
}

// NewRouter sets up HTTP routes over the given collaborators.
func NewRouter(cache model.BundleCache, store model.RunStore) *Router {
	rt := &Router{
		mux:   http.NewServeMux(),
		cache: cache,
		store: store,
	}

	rt.mux.HandleFunc("/api/v1/health", rt.handleHealth)
	rt.mux.HandleFunc("/api/v1/signals", rt.handleSignals)
	rt.mux.HandleFunc("/api/v1/signals/history", rt.handleHistory)
	rt.mux.HandleFunc("/api/v1/regime", rt.handleRegime)

	return rt
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"market_open":   markethours.IsMarketOpen(now),
		"market_status": markethours.StatusString(now),
	})
}

// handleSignals returns the latest bundle, 404 if no run has completed yet.
func (rt *Router) handleSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rt.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}

	bundle, err := rt.cache.LatestBundle(r.Context())
	if err != nil {
		log.Printf("[api] latest bundle: %v", err)
		writeError(w, http.StatusInternalServerError, "cache read failed")
		return
	}
	if bundle == nil {
		writeError(w, http.StatusNotFound, "no signals generated yet")
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// handleHistory returns the newest runs, most recent first. ?limit=N caps
// the count (default 10, max 100).
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rt.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run store unavailable")
		return
	}

	limit := defaultHistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	runs, err := rt.store.RecentRuns(r.Context(), limit)
	if err != nil {
		log.Printf("[api] recent runs: %v", err)
		writeError(w, http.StatusInternalServerError, "history read failed")
		return
	}
	if runs == nil {
		runs = []*model.ResultBundle{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// handleRegime returns just the market-regime block of the latest bundle.
func (rt *Router) handleRegime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rt.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}

	bundle, err := rt.cache.LatestBundle(r.Context())
	if err != nil {
		log.Printf("[api] latest bundle: %v", err)
		writeError(w, http.StatusInternalServerError, "cache read failed")
		return
	}
	if bundle == nil {
		writeError(w, http.StatusNotFound, "no signals generated yet")
		return
	}
	writeJSON(w, http.StatusOK, bundle.MarketRegime)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
