package model

// EventKind tags what happened in a match event.
type EventKind string

// Event kinds emitted by the simulator.
const (
	EventGoal            EventKind = "goal"
	EventShotOffTarget   EventKind = "shot_off_target"
	EventPassCompleted   EventKind = "pass_completed"
	EventPassIntercepted EventKind = "pass_intercepted"
	EventDribble         EventKind = "dribble_success"
	EventTackle          EventKind = "tackle"
	EventYellowCard      EventKind = "yellow_card"
)

// IsControl reports whether the kind counts towards possession share.
func (k EventKind) IsControl() bool {
	switch k {
	case EventGoal, EventShotOffTarget, EventPassCompleted, EventPassIntercepted, EventDribble:
		return true
	default:
		return false
	}
}

// PlayerPosition is one player's coordinate within an event snapshot.
type PlayerPosition struct {
	PlayerID string `json:"player_id"`
	Role     Role   `json:"role"`
	Point
}

// MatchEvent is an immutable record of one simulated step.
type MatchEvent struct {
	Minute     int              `json:"minute"`
	Side       Side             `json:"side"`
	Kind       EventKind        `json:"kind"`
	Commentary string           `json:"commentary"`
	PlayerID   string           `json:"player_id"`
	PlayerName string           `json:"player_name"`
	Ball       Point            `json:"ball"`
	Home       []PlayerPosition `json:"home"`
	Away       []PlayerPosition `json:"away"`
}
