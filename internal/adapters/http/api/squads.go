package api

import (
	"encoding/json"
	"net/http"

	service "github.com/okian/dreamxi/internal/app"
	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/squad"
)

// SquadPreviewer normalizes squads.
type SquadPreviewer interface {
	PreviewSquad(players []model.Player, label string) (*model.Team, error)
}

// SquadsHandler handles squad requests.
type SquadsHandler struct {
	deps SquadPreviewer
}

// NewSquadsHandler creates a new squads handler.
func NewSquadsHandler(deps SquadPreviewer) *SquadsHandler {
	return &SquadsHandler{deps: deps}
}

type pricedPlayer struct {
	model.Player
	Price float64 `json:"price"`
}

type squadPreviewResponse struct {
	*model.Team
	Squad []pricedPlayer `json:"squad"`
}

// HandlePreview handles POST /squads/preview requests.
func (h *SquadsHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview_squad"
	var req service.SquadInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	team, err := h.deps.PreviewSquad(req.Players, req.Label)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := squadPreviewResponse{Team: team, Squad: make([]pricedPlayer, len(team.Squad))}
	for i, p := range team.Squad {
		resp.Squad[i] = pricedPlayer{Player: p, Price: squad.PlayerPrice(p.Rating)}
	}
	writeJSON(w, http.StatusOK, resp)
}
