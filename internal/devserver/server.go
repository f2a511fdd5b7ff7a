package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"mewai/internal/config"
	"mewai/internal/logging"
)

// DefaultStep is the time spent in each simulated phase.
const DefaultStep = 2 * time.Second

// Server simulates the generation service.
type Server struct {
	step   time.Duration
	token  string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	jobs   *jobStore

	handler  http.Handler
	listener net.Listener
	server   *http.Server
}

// Option customizes the server.
type Option func(*Server)

// WithStep sets the duration of each simulated phase. Zero or negative values
// complete jobs on the first status read.
func WithStep(step time.Duration) Option {
	return func(s *Server) {
		s.step = step
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on generation routes.
func WithAPIToken(token string) Option {
	return func(s *Server) {
		s.token = strings.TrimSpace(token)
	}
}

// WithClock overrides the time source used for progression.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides job id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New constructs a server. Call Handler to mount it or Start to listen.
func New(opts ...Option) *Server {
	s := &Server{
		step:  DefaultStep,
		now:   time.Now,
		newID: uuid.NewString,
		jobs:  newJobStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "devserver")
	s.handler = s.routes()
	return s
}

// NewFromConfig constructs a server using the [devserver] and [service]
// sections of cfg. extra options are applied last.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, extra ...Option) *Server {
	opts := []Option{
		WithStep(time.Duration(cfg.DevServer.StepSeconds) * time.Second),
		WithAPIToken(cfg.Service.APIToken),
		WithLogger(logger),
	}
	return New(append(opts, extra...)...)
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/generation").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/{id}", s.handleStatus).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	})
	return c.Handler(r)
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// JobCount reports how many jobs were submitted.
func (s *Server) JobCount() int {
	return s.jobs.len()
}

// Start listens on bind and serves until ctx is cancelled or Stop is called.
// It returns the bound address, which resolves port 0.
func (s *Server) Start(ctx context.Context, bind string) (string, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return "", fmt.Errorf("devserver listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("devserver error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	addr := listener.Addr().String()
	s.logger.Info("devserver listening",
		logging.String("address", addr),
		logging.Duration("step", s.step),
	)
	return addr, nil
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// authMiddleware validates bearer tokens when a token is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
			s.writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
