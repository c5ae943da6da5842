package simulation

import (
	"math/rand"
	"testing"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/squad"
	"github.com/smartystreets/goconvey/convey"
)

func TestCapGoals(t *testing.T) {
	convey.Convey("Given a stream with more goals than the cap", t, func() {
		kinds := []model.EventKind{
			model.EventGoal, model.EventPassCompleted, model.EventGoal,
			model.EventTackle, model.EventGoal, model.EventGoal,
		}
		events := make([]model.MatchEvent, len(kinds))
		for i, k := range kinds {
			events[i] = model.MatchEvent{Minute: i * 10, Kind: k, PlayerName: "Striker", Commentary: "original"}
		}

		out, capped := capGoals(events, 2)

		convey.Convey("Then only the later goals should be rewritten", func() {
			convey.So(capped, convey.ShouldEqual, 2)
			convey.So(out[0].Kind, convey.ShouldEqual, model.EventGoal)
			convey.So(out[2].Kind, convey.ShouldEqual, model.EventGoal)
			convey.So(out[4].Kind, convey.ShouldEqual, model.EventShotOffTarget)
			convey.So(out[5].Kind, convey.ShouldEqual, model.EventShotOffTarget)
			convey.So(out[5].Commentary, convey.ShouldEqual, "Striker drags the shot just wide.")
		})

		convey.Convey("And order, length and the input should be preserved", func() {
			convey.So(len(out), convey.ShouldEqual, len(events))
			for i := range out {
				convey.So(out[i].Minute, convey.ShouldEqual, i*10)
			}
			convey.So(events[4].Kind, convey.ShouldEqual, model.EventGoal)
			convey.So(events[5].Commentary, convey.ShouldEqual, "original")
		})
	})

	convey.Convey("Given a cap of zero", t, func() {
		out, capped := capGoals([]model.MatchEvent{{Kind: model.EventGoal}}, 0)

		convey.Convey("Then every goal should be rewritten", func() {
			convey.So(capped, convey.ShouldEqual, 1)
			convey.So(out[0].Kind, convey.ShouldEqual, model.EventShotOffTarget)
		})
	})
}

func TestMinuteAt(t *testing.T) {
	convey.Convey("Given thirty steps", t, func() {
		convey.Convey("Then minutes should run from 0 to 90", func() {
			convey.So(minuteAt(0, 30), convey.ShouldEqual, 0)
			convey.So(minuteAt(29, 30), convey.ShouldEqual, 90)
			convey.So(minuteAt(1, 30), convey.ShouldEqual, 3)
			convey.So(minuteAt(15, 30), convey.ShouldEqual, 47)
		})
	})

	convey.Convey("Given a single step", t, func() {
		convey.So(minuteAt(0, 1), convey.ShouldEqual, 0)
	})
}

func TestCautions(t *testing.T) {
	convey.Convey("Given a simulator that books a player every step", t, func() {
		sim := New(WithCardProbability(1), WithSeed(3))
		res := sim.Simulate(squad.FallbackTeam(), squad.FallbackTeam())

		convey.Convey("Then every event should be a card and the count should hold", func() {
			convey.So(len(res.Events), convey.ShouldEqual, defaultSteps)
			for _, ev := range res.Events {
				convey.So(ev.Kind, convey.ShouldEqual, model.EventYellowCard)
			}
		})
	})

	convey.Convey("Given a caution in the middle of a match", t, func() {
		home, away := squad.FallbackTeam(), squad.FallbackTeam()
		m := newMatch(New(), home, away, rand.New(rand.NewSource(1)))
		m.zone = zoneAttack
		before := m.possession

		m.caution()

		convey.Convey("Then possession and zone should be untouched", func() {
			convey.So(m.possession, convey.ShouldEqual, before)
			convey.So(m.zone, convey.ShouldEqual, zoneAttack)
		})
	})
}

func TestOrientAndDescribe(t *testing.T) {
	convey.Convey("Given a point on the pitch", t, func() {
		p := model.Point{X: 0.2, Y: 0.9}

		convey.Convey("Then orienting twice should return the point", func() {
			convey.So(orient(model.SideAway, orient(model.SideAway, p)), convey.ShouldResemble, p)
			convey.So(orient(model.SideHome, p), convey.ShouldResemble, p)
		})

		convey.Convey("And the area should read from each side's point of view", func() {
			convey.So(DescribeArea(p, model.SideHome), convey.ShouldEqual, "in the opposition box on the left")
			convey.So(DescribeArea(p, model.SideAway), convey.ShouldEqual, "near their own box on the left")
			convey.So(DescribeArea(model.Point{X: 0.5, Y: 0.5}, model.SideHome), convey.ShouldEqual, "in midfield")
		})
	})
}

func TestPickPlayer(t *testing.T) {
	convey.Convey("Given a team without the requested role", t, func() {
		team := &model.Team{Squad: []model.Player{
			{ID: "gk", Role: model.RoleGoalkeeper},
			{ID: "mid", Role: model.RoleMidfielder},
		}}
		rng := rand.New(rand.NewSource(4))

		convey.Convey("Then an outfield player should be chosen", func() {
			for i := 0; i < 20; i++ {
				convey.So(pickPlayer(rng, team, model.RoleForward).ID, convey.ShouldEqual, "mid")
			}
		})
	})

	convey.Convey("Given a keeper-only team", t, func() {
		team := &model.Team{Squad: []model.Player{{ID: "gk", Role: model.RoleGoalkeeper}}}

		convey.Convey("Then the keeper should be chosen", func() {
			convey.So(pickPlayer(rand.New(rand.NewSource(1)), team, model.RoleForward).ID, convey.ShouldEqual, "gk")
		})
	})
}
