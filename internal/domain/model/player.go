// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strings"
)

// Point is a pitch coordinate in the unit square. Y grows from the home goal
// (0) towards the away goal (1).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clamp bounds both axes to [0,1].
func (p Point) Clamp() Point {
	return Point{X: clampUnit(p.X), Y: clampUnit(p.Y)}
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// InUnitSquare reports whether both axes lie within [0,1].
func (p Point) InUnitSquare() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(0, math.Min(1, v))
}

// Role is the formation role of a fielded player.
type Role int

// Formation roles.
const (
	RoleUnknown Role = iota
	RoleGoalkeeper
	RoleDefender
	RoleMidfielder
	RoleForward
)

var roleNames = map[Role]string{
	RoleUnknown:    "",
	RoleGoalkeeper: "GK",
	RoleDefender:   "DEF",
	RoleMidfielder: "MID",
	RoleForward:    "FWD",
}

func (r Role) String() string {
	return roleNames[r]
}

// ParseRole maps a canonical role name (GK, DEF, MID, FWD) back to a Role.
// Anything else yields RoleUnknown.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GK":
		return RoleGoalkeeper
	case "DEF":
		return RoleDefender
	case "MID":
		return RoleMidfielder
	case "FWD":
		return RoleForward
	default:
		return RoleUnknown
	}
}

// MarshalText encodes the role as its canonical name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a canonical role name.
func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}

// Player is a rated squad member. Role and Coord are optional pre-assigned
// formation data; the normalizer fills them in for fielded players.
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position string  `json:"position,omitempty"` // free-text tag, e.g. "GK", "Defender"
	Rating   float64 `json:"rating"`
	Role     Role    `json:"role,omitempty"`
	Coord    *Point  `json:"coord,omitempty"`
}

// Fielded reports whether the player carries pre-assigned formation data.
func (p Player) Fielded() bool {
	return p.Role != RoleUnknown || p.Coord != nil
}
