package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_dashboard"

var (
	// ConnectAttempts counts connect attempts by outcome.
	ConnectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connect_attempts_total",
		Help:      "Wallet connect attempts by outcome.",
	}, []string{"outcome"})

	// TokenFetches counts per-token queries by outcome.
	TokenFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_fetches_total",
		Help:      "Per-token balance queries by outcome.",
	}, []string{"token", "outcome"})

	// FetchDuration observes the duration of a full FetchTokenBalances call.
	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_fetch_duration_seconds",
		Help:      "Duration of a token balance fetch across all tokens.",
		Buckets:   prometheus.DefBuckets,
	})

	// RPCCalls counts JSON-RPC calls issued to the wallet or node by method and outcome.
	RPCCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_calls_total",
		Help:      "JSON-RPC calls by method and outcome.",
	}, []string{"method", "outcome"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ConnectAttempts, TokenFetches, FetchDuration, RPCCalls)
	})
}

// Outcome returns the label value for err.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSince records the elapsed time since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
