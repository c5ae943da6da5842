package simulation

import (
	"math"

	"github.com/okian/dreamxi/internal/domain/model"
)

// zone is the ball's third of the pitch relative to the possessing side.
type zone int

const (
	zoneDefense zone = iota
	zoneMidfield
	zoneAttack
)

// Duel tuning. Variance is the half-width of the uniform jitter added to
// each side's rating.
const (
	passProbability      = 0.55
	passVariance         = 10.0
	dribbleVariance      = 15.0
	shotVariance         = 12.0
	buildUpVariance      = 10.0
	buildUpPressure      = 0.8
	baseGoalThreshold    = 0.30
	offTargetBand        = 0.30
	minGoalThreshold     = 0.05
	maxGoalThreshold     = 0.90
	shotMarginNormalizer = 100.0
)

// match is the transient state of one simulation run.
type match struct {
	sim        *Simulator
	rng        Rand
	teams      map[model.Side]*model.Team
	possession model.Side
	zone       zone
	pitch      *pitch
}

func newMatch(s *Simulator, home, away *model.Team, rng Rand) *match {
	m := &match{
		sim:   s,
		rng:   rng,
		teams: map[model.Side]*model.Team{model.SideHome: home, model.SideAway: away},
		zone:  zoneMidfield,
	}
	m.possession = model.SideHome
	if rng.Float64() >= 0.5 {
		m.possession = model.SideAway
	}
	m.pitch = newPitch(home, away, rng)
	return m
}

func (m *match) play() []model.MatchEvent {
	events := make([]model.MatchEvent, 0, m.sim.steps)
	for i := 0; i < m.sim.steps; i++ {
		var ev model.MatchEvent
		if m.rng.Float64() < m.sim.cardProbability {
			ev = m.caution()
		} else {
			ev = m.step()
		}
		ev.Minute = minuteAt(i, m.sim.steps)
		m.pitch.snapshot(&ev)
		events = append(events, ev)
	}
	return events
}

// duel reports whether the attacker's jittered rating beats the defender's.
func (m *match) duel(att, def, variance float64) bool {
	a := att + (m.rng.Float64()*2-1)*variance
	d := def + (m.rng.Float64()*2-1)*variance
	return a > d
}

func (m *match) turnover() {
	m.possession = m.possession.Opponent()
}

func (m *match) step() model.MatchEvent {
	switch m.zone {
	case zoneAttack:
		return m.attack()
	case zoneDefense:
		return m.buildUp()
	default:
		return m.midfield()
	}
}

func (m *match) midfield() model.MatchEvent {
	side := m.possession
	own, opp := m.teams[side], m.teams[side.Opponent()]

	if m.rng.Float64() < passProbability {
		passer := pickPlayer(m.rng, own, model.RoleMidfielder)
		ok := m.duel(own.Midfield, opp.Midfield, passVariance)
		ball := m.pitch.ballFor(side, passer, zoneMidfield)
		if ok {
			m.zone = zoneAttack
			return m.event(side, model.EventPassCompleted, passer, ball,
				narrate(phrasePassForward, passer.Name, own.Label, "", describe(ball, side)))
		}
		m.turnover()
		m.zone = zoneMidfield
		return m.event(side, model.EventPassIntercepted, passer, ball,
			narrate(phrasePassIntercepted, passer.Name, own.Label, opp.Label, describe(ball, side)))
	}

	dribbler := pickPlayer(m.rng, own, model.RoleForward)
	ok := m.duel(own.Attack, opp.Defense, dribbleVariance)
	ball := m.pitch.ballFor(side, dribbler, zoneMidfield)
	if ok {
		m.zone = zoneAttack
		return m.event(side, model.EventDribble, dribbler, ball,
			narrate(phraseDribble, dribbler.Name, own.Label, "", describe(ball, side)))
	}
	tackler := pickPlayer(m.rng, opp, model.RoleDefender)
	m.turnover()
	m.zone = zoneMidfield
	return m.event(side.Opponent(), model.EventTackle, tackler, ball,
		narrate(phraseTackle, tackler.Name, opp.Label, dribbler.Name, describe(ball, side)))
}

func (m *match) attack() model.MatchEvent {
	side := m.possession
	own, opp := m.teams[side], m.teams[side.Opponent()]
	shooter := pickPlayer(m.rng, own, model.RoleForward)

	a := own.Attack + (m.rng.Float64()*2-1)*shotVariance
	d := opp.Defense + (m.rng.Float64()*2-1)*shotVariance
	goalThreshold := math.Max(minGoalThreshold, math.Min(maxGoalThreshold, baseGoalThreshold+(a-d)/shotMarginNormalizer))
	roll := m.rng.Float64()

	switch {
	case roll < goalThreshold:
		ball := m.pitch.goalMouth(side)
		m.turnover()
		m.zone = zoneMidfield
		return m.event(side, model.EventGoal, shooter, ball,
			narrate(phraseGoal, shooter.Name, own.Label, "", describe(ball, side)))
	case roll < goalThreshold+offTargetBand:
		ball := m.pitch.ballFor(side, shooter, zoneAttack)
		m.turnover()
		m.zone = zoneDefense
		return m.event(side, model.EventShotOffTarget, shooter, ball,
			narrate(phraseShotSaved, shooter.Name, own.Label, "", describe(ball, side)))
	default:
		blocker := pickPlayer(m.rng, opp, model.RoleDefender)
		ball := m.pitch.ballFor(side, shooter, zoneAttack)
		m.turnover()
		m.zone = zoneMidfield
		return m.event(side.Opponent(), model.EventTackle, blocker, ball,
			narrate(phraseBlocked, blocker.Name, opp.Label, shooter.Name, describe(ball, side)))
	}
}

func (m *match) buildUp() model.MatchEvent {
	side := m.possession
	own, opp := m.teams[side], m.teams[side.Opponent()]
	passer := pickPlayer(m.rng, own, model.RoleDefender)
	ok := m.duel(own.Midfield, opp.Midfield*buildUpPressure, buildUpVariance)
	ball := m.pitch.ballFor(side, passer, zoneDefense)
	if ok {
		m.zone = zoneMidfield
		return m.event(side, model.EventPassCompleted, passer, ball,
			narrate(phraseBuildUp, passer.Name, own.Label, "", describe(ball, side)))
	}
	m.turnover()
	m.zone = zoneAttack
	return m.event(side, model.EventPassIntercepted, passer, ball,
		narrate(phraseBuildUpLost, passer.Name, own.Label, opp.Label, describe(ball, side)))
}

// caution books a random player of a random side. It leaves possession and
// zone untouched.
func (m *match) caution() model.MatchEvent {
	side := model.SideHome
	if m.rng.Float64() >= 0.5 {
		side = model.SideAway
	}
	team := m.teams[side]
	p := team.Squad[m.rng.Intn(len(team.Squad))]
	ball := m.pitch.ball
	return m.event(side, model.EventYellowCard, p, ball,
		narrate(phraseCard, p.Name, team.Label, "", describe(ball, side)))
}

func (m *match) event(side model.Side, kind model.EventKind, p model.Player, ball model.Point, text string) model.MatchEvent {
	return model.MatchEvent{
		Side:       side,
		Kind:       kind,
		Commentary: text,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Ball:       ball,
	}
}

// pickPlayer returns a random player of role, falling back to any outfield
// player and then to anyone.
func pickPlayer(rng Rand, t *model.Team, role model.Role) model.Player {
	var pool []model.Player
	for _, p := range t.Squad {
		if p.Role == role {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		for _, p := range t.Squad {
			if p.Role != model.RoleGoalkeeper {
				pool = append(pool, p)
			}
		}
	}
	if len(pool) == 0 {
		pool = t.Squad
	}
	return pool[rng.Intn(len(pool))]
}

// capGoals returns a copy of events in which goals beyond limit are turned
// into off-target shots. Order and length are preserved.
func capGoals(events []model.MatchEvent, limit int) ([]model.MatchEvent, int) {
	out := make([]model.MatchEvent, len(events))
	copy(out, events)
	goals, capped := 0, 0
	for i := range out {
		if out[i].Kind != model.EventGoal {
			continue
		}
		goals++
		if goals <= limit {
			continue
		}
		out[i].Kind = model.EventShotOffTarget
		out[i].Commentary = wideShot(out[i].PlayerName)
		capped++
	}
	return out, capped
}
