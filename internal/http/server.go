package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"smallledger/internal/auth"
	"smallledger/internal/log"
	"smallledger/internal/services"
)

type Server struct {
	http.Server

	auth   *auth.Service
	ledger *services.LedgerService
	goals  *services.GoalService
	tasks  *services.TaskService

	ready func(ctx context.Context) error

	rateLimiter  *rateLimiter
	metrics      metrics
	shutdownOnce sync.Once
}

// metrics holds the plain-text counters served at /metrics.
type metrics struct {
	requestsTotal  atomic.Int64
	responses2xx   atomic.Int64
	responses4xx   atomic.Int64
	responses5xx   atomic.Int64
	rateLimitDrops atomic.Int64
}

// Simple in-memory rate limiter, keyed by client IP.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Counter resets after a minute of quiet.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute.
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures all routes and middleware, returning a ready-to-run
// http.Server. ready is the probe used by /readyz, typically a database ping.
func NewServer(addr string, authSvc *auth.Service, ledger *services.LedgerService, goals *services.GoalService, tasks *services.TaskService, ready func(ctx context.Context) error) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:        authSvc,
		ledger:      ledger,
		goals:       goals,
		tasks:       tasks,
		ready:       ready,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/users/register", s.public(s.handleRegister))
	mux.HandleFunc("POST /api/users/login", s.public(s.handleLogin))
	mux.HandleFunc("GET /api/users/me", s.protected(s.handleMe))
	mux.HandleFunc("PUT /api/users/me", s.protected(s.handleChangePassword))

	mux.HandleFunc("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/statistics", s.protected(s.handleStatistics))
	mux.HandleFunc("GET /api/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/savings-goals", s.protected(s.handleCreateGoal))
	mux.HandleFunc("GET /api/savings-goals", s.protected(s.handleListGoals))
	mux.HandleFunc("GET /api/savings-goals/{id}", s.protected(s.handleGetGoal))
	mux.HandleFunc("PUT /api/savings-goals/{id}", s.protected(s.handleUpdateGoal))
	mux.HandleFunc("PUT /api/savings-goals/{id}/amount", s.protected(s.handleUpdateGoalAmount))
	mux.HandleFunc("GET /api/savings-goals/{id}/progress", s.protected(s.handleGoalProgress))
	mux.HandleFunc("DELETE /api/savings-goals/{id}", s.protected(s.handleDeleteGoal))

	mux.HandleFunc("POST /api/tasks", s.protected(s.handleCreateTask))
	mux.HandleFunc("GET /api/tasks", s.protected(s.handleListTasks))
	mux.HandleFunc("GET /api/tasks/quadrant", s.protected(s.handleTaskQuadrant))
	mux.HandleFunc("GET /api/tasks/period/{period}", s.protected(s.handleTasksByPeriod))
	mux.HandleFunc("GET /api/tasks/{id}", s.protected(s.handleGetTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.protected(s.handleUpdateTask))
	mux.HandleFunc("PUT /api/tasks/{id}/status", s.protected(s.handleUpdateTaskStatus))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.protected(s.handleDeleteTask))

	return s
}

// public wraps a handler with the base middleware chain.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return s.withBase(next)
}

// protected additionally requires a valid Bearer token.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withBase(s.withAuth(next))
}

// withBase adds request IDs, security headers, rate limiting on writes, and
// request logging.
func (s *Server) withBase(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.requestsTotal.Add(1)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.metrics.rateLimitDrops.Add(1)
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		switch {
		case rw.statusCode >= 500:
			s.metrics.responses5xx.Add(1)
		case rw.statusCode >= 400:
			s.metrics.responses4xx.Add(1)
		default:
			s.metrics.responses2xx.Add(1)
		}

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup goroutine before draining the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
