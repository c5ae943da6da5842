package simbench

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/dreamxi/internal/domain/model"
)

// GenerateSquad builds a 1-4-3-3 eleven whose ratings vary uniformly within
// ±spread around rating.
func GenerateSquad(label string, rating, spread float64, rnd *rand.Rand) []model.Player {
	players := make([]model.Player, len(squadShape))
	for i, tag := range squadShape {
		r := rating + (rnd.Float64()*2-1)*spread
		players[i] = model.Player{
			ID:       uuid.NewString(),
			Name:     label + " " + tag + " " + strconv.Itoa(i+1),
			Position: tag,
			Rating:   math.Round(math.Max(minRating, math.Min(maxRating, r))),
		}
	}
	return players
}
