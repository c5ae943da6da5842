// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/okian/dreamxi/internal/adapters/http/swagger"
	service "github.com/okian/dreamxi/internal/app"
	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/playback"
	"github.com/okian/dreamxi/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider

	// PreviewSquad normalizes a squad without simulating.
	PreviewSquad(players []model.Player, label string) (*model.Team, error)

	// SubmitMatch queues a match. It fails with service.ErrBackpressure when
	// the queue is full.
	SubmitMatch(ctx context.Context, req service.MatchRequest) (service.Submission, error)
	Rematch(ctx context.Context, id string) (service.Submission, error)

	// Read operations expose stored matches.
	Match(ctx context.Context, id string) (*model.Match, error)
	Timeline(ctx context.Context, id string, elapsed time.Duration) (service.Timeline, error)
	NewPlayback(ctx context.Context, id string, opts ...playback.Option) (*playback.Player, *model.Match, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	squadsHandler *SquadsHandler
	matchHandler  *MatchHandler
	streamHandler *StreamHandler

	allowedOrigins []string
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		allowedOrigins: []string{"*"},
		logger:         logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.squadsHandler = NewSquadsHandler(deps)
	s.matchHandler = NewMatchHandler(deps)
	s.streamHandler = NewStreamHandler(deps, s.allowedOrigins, s.logger)
	return s
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(_ context.Context, router *mux.Router) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	router.HandleFunc("/squads/preview", MetricsMiddleware(s.squadsHandler.HandlePreview, "squads_preview")).Methods(http.MethodPost)

	router.HandleFunc("/matches", MetricsMiddleware(s.matchHandler.HandleSubmit, "matches_submit")).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}", MetricsMiddleware(s.matchHandler.HandleGet, "matches_get")).Methods(http.MethodGet)
	router.HandleFunc("/matches/{id}/timeline", MetricsMiddleware(s.matchHandler.HandleTimeline, "matches_timeline")).Methods(http.MethodGet)
	router.HandleFunc("/matches/{id}/rematch", MetricsMiddleware(s.matchHandler.HandleRematch, "matches_rematch")).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/stream", MetricsMiddleware(s.streamHandler.HandleStream, "matches_stream")).Methods(http.MethodGet)
}

// Handler returns the complete HTTP handler: API routes, API docs and CORS.
func (s *Server) Handler(ctx context.Context) http.Handler {
	router := mux.NewRouter()
	s.Register(ctx, router)
	swagger.Register(ctx, router)

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching the response so an encoding failure
// can still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Get().Named("api").Error(context.Background(), "encoding response failed",
			logger.Int("status", status), logger.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal", Message: "response could not be encoded"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Get().Named("api").Debug(context.Background(), "writing response failed", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps service error kinds to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNoSquad):
		return http.StatusUnprocessableEntity, "no_squad"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrMatchPending):
		return http.StatusConflict, "pending"
	case errors.Is(err, service.ErrMatchFailed):
		return http.StatusConflict, "failed"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
