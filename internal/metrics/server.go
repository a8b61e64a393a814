package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/clubciclismoepn/backend/internal/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer exposes /metrics plus the liveness and readiness probes on a
// port separate from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, checker.Liveness(r.Context()))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, result)
	})

	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, status int, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
