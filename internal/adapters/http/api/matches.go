package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	service "github.com/okian/dreamxi/internal/app"
	"github.com/okian/dreamxi/internal/domain/model"
)

// MatchDependencies defines what the match handlers need.
type MatchDependencies interface {
	SubmitMatch(ctx context.Context, req service.MatchRequest) (service.Submission, error)
	Rematch(ctx context.Context, id string) (service.Submission, error)
	Match(ctx context.Context, id string) (*model.Match, error)
	Timeline(ctx context.Context, id string, elapsed time.Duration) (service.Timeline, error)
}

// MatchHandler handles match requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type scoreResponse struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type matchResponse struct {
	*model.Match
	Score scoreResponse `json:"score"`
}

// HandleSubmit handles POST /matches requests.
func (h *MatchHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_match"
	var req service.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.SubmitMatch(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, sub)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

// HandleGet handles GET /matches/{id} requests.
func (h *MatchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.Match(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	home, away := m.Score()
	writeJSON(w, http.StatusOK, matchResponse{Match: m, Score: scoreResponse{Home: home, Away: away}})
}

// HandleTimeline handles GET /matches/{id}/timeline?elapsed_ms= requests.
func (h *MatchHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	const op = "api.timeline"
	elapsed, err := parseElapsed(r.URL.Query().Get("elapsed_ms"))
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	tl, err := h.deps.Timeline(r.Context(), mux.Vars(r)["id"], elapsed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

// HandleRematch handles POST /matches/{id}/rematch requests.
func (h *MatchHandler) HandleRematch(w http.ResponseWriter, r *http.Request) {
	sub, err := h.deps.Rematch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

// maxElapsedMS is the largest offset a time.Duration can hold.
const maxElapsedMS = math.MaxInt64 / int64(time.Millisecond)

// parseElapsed reads a non-negative millisecond count. Empty means kick-off;
// offsets beyond what a time.Duration can hold are clamped.
func parseElapsed(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("elapsed_ms must be an integer")
	}
	if ms < 0 {
		return 0, errors.New("elapsed_ms must not be negative")
	}
	ms = min(ms, maxElapsedMS)
	return time.Duration(ms) * time.Millisecond, nil
}
