package infra

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement counters, exported on the ops port.
var (
	BetsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sidebet_bets_resolved_total",
		Help: "Bets settled, by resolution mode.",
	}, []string{"mode"})

	PayoutsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sidebet_payouts_credited_cents_total",
		Help: "Total payout cents credited to member balances.",
	})

	ResolutionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sidebet_resolution_conflicts_total",
		Help: "Resolution requests rejected by the already-settled gate.",
	})

	WagersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sidebet_wagers_placed_total",
		Help: "Wagers accepted on open bets.",
	})
)

// HealthFunc reports backing-store health for the ops endpoint.
type HealthFunc func(ctx context.Context) error

// StartMetricsServer runs a small HTTP server serving /metrics and /healthz.
// It returns the server so the caller can shut it down.
func StartMetricsServer(port int, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "unhealthy: %v", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
