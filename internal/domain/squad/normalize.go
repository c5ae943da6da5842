package squad

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/dreamxi/internal/domain/model"
)

// Normalize selects up to eleven starters from players, assigns each a
// formation role and coordinate, and derives the team's aggregate ratings.
// It returns nil when no usable player remains. Normalize is a pure function
// of its input.
func Normalize(players []model.Player, label string) *model.Team {
	starters := selectStarters(players)
	if len(starters) == 0 {
		return nil
	}

	var fielded []model.Player
	if anyFielded(starters) {
		fielded = fieldExplicit(starters)
	} else {
		fielded = fieldDefault(starters)
	}

	team := &model.Team{
		Label: strings.TrimSpace(label),
		Squad: fielded,
	}
	aggregate(team)
	return team
}

// selectStarters filters unusable players, drops duplicate ids, clamps ratings
// into [MinRating, MaxRating] and keeps the eleven best by rating. Ties are
// broken by id so the order is stable.
func selectStarters(players []model.Player) []model.Player {
	seen := make(map[string]struct{}, len(players))
	usable := make([]model.Player, 0, len(players))
	for _, p := range players {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" || math.IsNaN(p.Rating) || math.IsInf(p.Rating, 0) {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		p.Rating = math.Max(MinRating, math.Min(MaxRating, p.Rating))
		if p.Coord != nil {
			c := *p.Coord
			p.Coord = &c
		}
		usable = append(usable, p)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		if usable[i].Rating != usable[j].Rating {
			return usable[i].Rating > usable[j].Rating
		}
		return usable[i].ID < usable[j].ID
	})
	if len(usable) > MaxStarters {
		usable = usable[:MaxStarters]
	}
	return usable
}

func anyFielded(players []model.Player) bool {
	for _, p := range players {
		if p.Fielded() {
			return true
		}
	}
	return false
}

// fieldExplicit honours pre-assigned roles and coordinates, reading roles off
// coordinates or tags when only one of them is known.
func fieldExplicit(players []model.Player) []model.Player {
	used := make([]bool, len(defaultSlots))
	out := make([]model.Player, len(players))

	for i, p := range players {
		switch {
		case p.Role != model.RoleUnknown:
		case p.Coord != nil:
			p.Role = RoleFromCoord(p.Position, *p.Coord)
		default:
			p.Role = RoleFromTag(p.Position)
			if p.Role == model.RoleUnknown {
				p.Role = model.RoleMidfielder
			}
		}
		out[i] = p
	}

	// Claim slots already occupied by explicit coordinates first so that
	// coordinate-less players do not stack on top of them.
	for _, p := range out {
		if p.Coord == nil {
			continue
		}
		if idx := nearestFreeSlot(used, p.Role, *p.Coord); idx >= 0 {
			used[idx] = true
		}
	}
	for i := range out {
		if out[i].Coord != nil {
			c := out[i].Coord.Clamp()
			out[i].Coord = &c
			continue
		}
		c := lineCentre[out[i].Role]
		for idx, s := range defaultSlots {
			if !used[idx] && s.Role == out[i].Role {
				used[idx] = true
				c = s.Coord
				break
			}
		}
		out[i].Coord = &c
	}
	return out
}

func nearestFreeSlot(used []bool, role model.Role, c model.Point) int {
	best, bestDist := -1, math.MaxFloat64
	for idx, s := range defaultSlots {
		if used[idx] || s.Role != role {
			continue
		}
		if d := s.Coord.Distance(c); d < bestDist {
			best, bestDist = idx, d
		}
	}
	return best
}

// fieldDefault lays players out on the default formation. Each slot category
// is filled greedily with the best remaining player whose tag matches; the
// leftovers are paired in slot order until slots or players run out.
func fieldDefault(players []model.Player) []model.Player {
	assigned := make([]bool, len(players))
	filled := make([]int, len(defaultSlots))
	for i := range filled {
		filled[i] = -1
	}

	for idx, s := range defaultSlots {
		for pi, p := range players {
			if !assigned[pi] && RoleFromTag(p.Position) == s.Role {
				filled[idx] = pi
				assigned[pi] = true
				break
			}
		}
	}

	next := 0
	for idx := range defaultSlots {
		if filled[idx] >= 0 {
			continue
		}
		for next < len(players) && assigned[next] {
			next++
		}
		if next >= len(players) {
			break
		}
		filled[idx] = next
		assigned[next] = true
	}

	out := make([]model.Player, 0, len(players))
	for idx, pi := range filled {
		if pi < 0 {
			continue
		}
		p := players[pi]
		c := defaultSlots[idx].Coord
		p.Role = defaultSlots[idx].Role
		p.Coord = &c
		out = append(out, p)
	}
	return out
}

// aggregate fills the team's rating fields. Empty positional groups fall
// back to the squad average.
func aggregate(t *model.Team) {
	var total float64
	sums := map[model.Role]float64{}
	counts := map[model.Role]int{}
	for _, p := range t.Squad {
		total += p.Rating
		sums[p.Role] += p.Rating
		counts[p.Role]++
	}
	t.Rating = total / float64(len(t.Squad))

	mean := func(roles ...model.Role) float64 {
		var s float64
		var n int
		for _, r := range roles {
			s += sums[r]
			n += counts[r]
		}
		if n == 0 {
			return t.Rating
		}
		return s / float64(n)
	}
	t.Attack = mean(model.RoleForward)
	t.Midfield = mean(model.RoleMidfielder)
	t.Defense = mean(model.RoleDefender, model.RoleGoalkeeper)
}
