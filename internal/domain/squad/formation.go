// Package squad turns raw rated player lists into fielded teams.
package squad

import (
	"math"
	"strings"

	"github.com/okian/dreamxi/internal/domain/model"
)

// MaxStarters is the number of fielded players per team.
const MaxStarters = 11

// Player ratings are read on this scale. Values outside it are clamped.
const (
	MinRating = 0.0
	MaxRating = 100.0
)

// Slot is one position of the default formation.
type Slot struct {
	Role  model.Role
	Coord model.Point
}

// defaultSlots is the 1-4-3-3 layout in home-relative coordinates.
var defaultSlots = []Slot{
	{model.RoleGoalkeeper, model.Point{X: 0.5, Y: 0.1}},
	{model.RoleDefender, model.Point{X: 0.15, Y: 0.3}},
	{model.RoleDefender, model.Point{X: 0.38, Y: 0.32}},
	{model.RoleDefender, model.Point{X: 0.62, Y: 0.32}},
	{model.RoleDefender, model.Point{X: 0.85, Y: 0.3}},
	{model.RoleMidfielder, model.Point{X: 0.25, Y: 0.55}},
	{model.RoleMidfielder, model.Point{X: 0.5, Y: 0.58}},
	{model.RoleMidfielder, model.Point{X: 0.75, Y: 0.55}},
	{model.RoleForward, model.Point{X: 0.2, Y: 0.8}},
	{model.RoleForward, model.Point{X: 0.5, Y: 0.83}},
	{model.RoleForward, model.Point{X: 0.8, Y: 0.8}},
}

// lineCentre is where a role sits when its formation slots are used up.
var lineCentre = map[model.Role]model.Point{
	model.RoleGoalkeeper: {X: 0.5, Y: 0.1},
	model.RoleDefender:   {X: 0.5, Y: 0.31},
	model.RoleMidfielder: {X: 0.5, Y: 0.56},
	model.RoleForward:    {X: 0.5, Y: 0.81},
}

// Vertical thresholds used to read a role off a home-relative coordinate.
const (
	keeperLineY   = 0.18
	defenceLineY  = 0.42
	midfieldLineY = 0.68
)

// DefaultSlots returns a copy of the default formation.
func DefaultSlots() []Slot {
	out := make([]Slot, len(defaultSlots))
	copy(out, defaultSlots)
	return out
}

// RoleFromTag derives a role from a free-text position tag.
func RoleFromTag(tag string) model.Role {
	v := strings.ToUpper(strings.TrimSpace(tag))
	switch {
	case v == "":
		return model.RoleUnknown
	case v == "G" || strings.Contains(v, "GK") || strings.Contains(v, "KEEP") || strings.Contains(v, "GOAL"):
		return model.RoleGoalkeeper
	case v == "D" || strings.Contains(v, "DEF") || strings.Contains(v, "BACK"):
		return model.RoleDefender
	case v == "M" || strings.Contains(v, "MID"):
		return model.RoleMidfielder
	case v == "F" || strings.Contains(v, "ATT") || strings.Contains(v, "STR") ||
		strings.Contains(v, "FWD") || strings.Contains(v, "FORW") || strings.Contains(v, "WING"):
		return model.RoleForward
	default:
		return model.RoleUnknown
	}
}

// RoleFromCoord reads a role off a home-relative pitch coordinate. A keeper
// tag wins over the coordinate.
func RoleFromCoord(tag string, c model.Point) model.Role {
	switch {
	case RoleFromTag(tag) == model.RoleGoalkeeper || c.Y <= keeperLineY:
		return model.RoleGoalkeeper
	case c.Y < defenceLineY:
		return model.RoleDefender
	case c.Y < midfieldLineY:
		return model.RoleMidfielder
	default:
		return model.RoleForward
	}
}

// Price bounds in millions.
const (
	priceRatingFloor = 60.0
	priceRatingCeil  = 100.0
	priceMin         = 4.0
	priceSpan        = 11.0
)

// PlayerPrice maps a rating onto the squad-builder price scale: ratings are
// clamped to 60..100 and spread linearly over 4.0m..15.0m.
func PlayerPrice(rating float64) float64 {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return priceMin
	}
	r := math.Max(priceRatingFloor, math.Min(priceRatingCeil, rating))
	norm := (r - priceRatingFloor) / (priceRatingCeil - priceRatingFloor)
	return math.Round((priceMin+norm*priceSpan)*10) / 10
}
