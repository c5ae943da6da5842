package simulation

import "github.com/okian/dreamxi/internal/domain/model"

// evenPossession is reported when no control events exist yet.
const evenPossession = 50.0

// ComputeStats summarizes side's events. Possession is the side's share of
// control events (passes, dribbles, shots, goals) in percent.
func ComputeStats(events []model.MatchEvent, side model.Side) model.TeamStats {
	var st model.TeamStats
	control, own := 0, 0
	for i := range events {
		ev := &events[i]
		if ev.Kind.IsControl() {
			control++
			if ev.Side == side {
				own++
			}
		}
		if ev.Side != side {
			continue
		}
		switch ev.Kind {
		case model.EventGoal:
			st.Goals++
		case model.EventShotOffTarget:
			st.ShotsOff++
		case model.EventPassCompleted:
			st.Passes++
			st.CompletedPasses++
		case model.EventPassIntercepted:
			st.Passes++
		case model.EventDribble:
			st.Dribbles++
		case model.EventTackle:
			st.Tackles++
		case model.EventYellowCard:
			st.Cards++
		}
	}
	st.Possession = evenPossession
	if control > 0 {
		st.Possession = float64(own) / float64(control) * 100
	}
	return st
}
