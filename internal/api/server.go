// Package api exposes the footprint engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
)

// RequestIDHeader carries the per-request trace ID in and out.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// Config holds listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the engine over HTTP.
type Server struct {
	eng    *engine.Engine
	cfg    Config
	logger zerolog.Logger
}

// New returns a Server for eng.
func New(eng *engine.Engine, cfg Config, logger zerolog.Logger) *Server {
	return &Server{
		eng:    eng,
		cfg:    cfg,
		logger: logging.ComponentLogger(logger, "api"),
	}
}

// Router returns the route table without middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestContext)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	r.HandleFunc("/calculate/{category}", s.calculate).Methods(http.MethodPost)

	r.HandleFunc("/users/{userID}/trips", s.listTrips).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/trips", s.logTrip).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/routes", s.listRoutes).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/routes", s.logRoute).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/recommendations", s.generate).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/recommendations", s.recommend).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/recommendations/refine", s.refine).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/recommendations/history", s.history).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/feedback", s.feedback).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/prediction", s.predict).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/goal", s.setGoal).Methods(http.MethodPut)
	r.HandleFunc("/users/{userID}/progress", s.progress).Methods(http.MethodGet)

	return r
}

// Handler returns the router wrapped with access logging, panic recovery
// and CORS.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)
	return handlers.CustomLoggingHandler(io.Discard, recovery(cors(s.Router())), s.accessLog)
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

// requestContext stamps a request ID and a logger onto the request context.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logging.ContextWithTraceID(r.Context(), id)
		ctx = s.logger.WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Info().
		Str("operation", "http_request").
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Str("request_id", p.Request.Header.Get(RequestIDHeader)).
		Int64("duration_ms", time.Since(p.TimeStamp).Milliseconds()).
		Msg("request handled")
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error().Str("operation", "recover").Msg(fmt.Sprint(v...))
}
