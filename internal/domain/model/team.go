package model

// Team is a normalized squad ready for simulation. Only the squad normalizer
// builds Teams; a Team always holds between one and eleven players.
type Team struct {
	Label    string   `json:"label"`
	Squad    []Player `json:"squad"`
	Rating   float64  `json:"rating"`
	Attack   float64  `json:"attack"`
	Midfield float64  `json:"midfield"`
	Defense  float64  `json:"defense"`
}

// Side identifies one of the two teams in a match.
type Side string

// Match sides.
const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// TeamStats summarizes one side's events.
type TeamStats struct {
	Goals           int     `json:"goals"`
	ShotsOff        int     `json:"shots_off"`
	Passes          int     `json:"passes"`
	CompletedPasses int     `json:"completed_passes"`
	Dribbles        int     `json:"dribbles"`
	Tackles         int     `json:"tackles"`
	Cards           int     `json:"cards"`
	Possession      float64 `json:"possession"`
}

// Clone returns a deep copy of t.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Squad = make([]Player, len(t.Squad))
	for i, p := range t.Squad {
		if p.Coord != nil {
			pt := *p.Coord
			p.Coord = &pt
		}
		c.Squad[i] = p
	}
	return &c
}
