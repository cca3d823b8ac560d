package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness probe failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "http_requests_total %d\n", s.metrics.requestsTotal.Load())
	fmt.Fprintf(w, "http_responses_2xx_total %d\n", s.metrics.responses2xx.Load())
	fmt.Fprintf(w, "http_responses_4xx_total %d\n", s.metrics.responses4xx.Load())
	fmt.Fprintf(w, "http_responses_5xx_total %d\n", s.metrics.responses5xx.Load())
	fmt.Fprintf(w, "http_rate_limit_drops_total %d\n", s.metrics.rateLimitDrops.Load())
}
