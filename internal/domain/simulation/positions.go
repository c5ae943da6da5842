package simulation

import (
	"math"

	"github.com/okian/dreamxi/internal/domain/model"
)

// Position synthesis tuning, in unit-square distances.
const (
	attractionRadius   = 0.35
	attractionStrength = 0.6
	playerJitter       = 0.02
	ballJitterX        = 0.08
	ballJitterY        = 0.05
	keeperBandY        = 0.15
	goalMouthY         = 0.97
	goalMouthSpreadX   = 0.06
)

// zoneDepth is the ball's depth inside each zone, measured from the acting
// side's own goal line.
var zoneDepth = map[zone]float64{
	zoneDefense:  0.2,
	zoneMidfield: 0.5,
	zoneAttack:   0.8,
}

// orient maps a side-relative coordinate, where the side attacks towards
// Y=1, onto the absolute pitch. The away side attacks towards Y=0, so its
// coordinates are mirrored vertically. The transform is its own inverse.
func orient(side model.Side, p model.Point) model.Point {
	if side == model.SideAway {
		return model.Point{X: p.X, Y: 1 - p.Y}
	}
	return p
}

// pitch tracks the base formation of both sides and the current ball.
type pitch struct {
	rng  Rand
	base map[model.Side][]model.PlayerPosition
	ball model.Point
}

func newPitch(home, away *model.Team, rng Rand) *pitch {
	p := &pitch{
		rng:  rng,
		base: make(map[model.Side][]model.PlayerPosition, 2),
		ball: model.Point{X: 0.5, Y: 0.5},
	}
	for side, t := range map[model.Side]*model.Team{model.SideHome: home, model.SideAway: away} {
		row := make([]model.PlayerPosition, len(t.Squad))
		for i, pl := range t.Squad {
			c := model.Point{X: 0.5, Y: 0.5}
			if pl.Coord != nil {
				c = *pl.Coord
			}
			row[i] = model.PlayerPosition{PlayerID: pl.ID, Role: pl.Role, Point: orient(side, c).Clamp()}
		}
		p.base[side] = row
	}
	return p
}

func (p *pitch) jitter(spread float64) float64 {
	return (p.rng.Float64()*2 - 1) * spread
}

// ballFor places the ball in z for side near the acting player's channel.
func (p *pitch) ballFor(side model.Side, actor model.Player, z zone) model.Point {
	x := 0.5
	if actor.Coord != nil {
		x = actor.Coord.X
	}
	rel := model.Point{
		X: x + p.jitter(ballJitterX),
		Y: zoneDepth[z] + p.jitter(ballJitterY),
	}
	return orient(side, rel.Clamp())
}

// goalMouth places the ball in the opponent's goal for side.
func (p *pitch) goalMouth(side model.Side) model.Point {
	rel := model.Point{X: 0.5 + p.jitter(goalMouthSpreadX), Y: goalMouthY}
	return orient(side, rel.Clamp())
}

// snapshot fills the coordinates of both sides around the event's ball.
func (p *pitch) snapshot(ev *model.MatchEvent) {
	p.ball = ev.Ball
	ev.Home = p.arrange(model.SideHome, ev.Ball)
	ev.Away = p.arrange(model.SideAway, ev.Ball)
}

func (p *pitch) arrange(side model.Side, ball model.Point) []model.PlayerPosition {
	base := p.base[side]
	out := make([]model.PlayerPosition, len(base))
	for i, b := range base {
		pos := b
		if b.Role == model.RoleGoalkeeper {
			pos.Point = p.keeper(side, b.Point)
			out[i] = pos
			continue
		}
		target := b.Point
		if d := b.Point.Distance(ball); d < attractionRadius {
			pull := (1 - d/attractionRadius) * attractionStrength
			target.X += (ball.X - target.X) * pull
			target.Y += (ball.Y - target.Y) * pull
		}
		target.X += p.jitter(playerJitter)
		target.Y += p.jitter(playerJitter)
		pos.Point = target.Clamp()
		out[i] = pos
	}
	return out
}

// keeper jitters around the base spot and keeps the keeper inside its own
// goal band.
func (p *pitch) keeper(side model.Side, base model.Point) model.Point {
	rel := orient(side, base)
	rel.X += p.jitter(playerJitter)
	rel.Y = math.Min(keeperBandY, rel.Y+p.jitter(playerJitter))
	return orient(side, rel.Clamp())
}
