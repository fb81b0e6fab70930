package invoice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Server handles HTTP requests for the invoice API
type Server struct {
	service  *Service
	auth     *TokenAuth
	registry *Registry
	events   *EventLog
	mux      *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, auth *TokenAuth, registry *Registry, events *EventLog) *Server {
	return NewServerWithMux(service, auth, registry, events, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, auth *TokenAuth, registry *Registry, events *EventLog, mux *http.ServeMux) *Server {
	s := &Server{
		service:  service,
		auth:     auth,
		registry: registry,
		events:   events,
		mux:      mux,
	}
	s.registerRoutes()
	return s
}

type principalContextKey struct{}

// Principal returns the authenticated username stored by requireAuth
func Principal(ctx context.Context) string {
	principal, _ := ctx.Value(principalContextKey{}).(string)
	return principal
}

// bearerToken extracts the token from an Authorization header
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// requireAuth middleware rejects requests without a valid bearer token
// before they reach any handler
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.auth.Verify(bearerToken(r))
		if err != nil {
			if errors.Is(err, ErrNoToken) {
				writeError(w, http.StatusUnauthorized, "Authentication required")
			} else {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			}
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
		next(w, r.WithContext(ctx))
	}
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/extract-invoice", s.requireAuth(s.handleExtractInvoice))
	s.mux.HandleFunc("POST /api/queue-invoice", s.requireAuth(s.handleQueueInvoice))
	s.mux.HandleFunc("GET /api/job-status/{id}", s.requireAuth(s.handleJobStatus))
	s.mux.HandleFunc("POST /api/webhooks/subscribe", s.requireAuth(s.handleSubscribe))
	s.mux.HandleFunc("GET /api/webhooks/events", s.requireAuth(s.handleListEvents))
	s.mux.HandleFunc("POST /api/webhooks", s.handleInboundWebhook)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
