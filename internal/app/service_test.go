package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/dreamxi/internal/adapters/repository"
	service "github.com/okian/dreamxi/internal/app"
	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/playback"
	"github.com/okian/dreamxi/internal/domain/squad"
	"github.com/okian/dreamxi/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func players(prefix string, n int, rating float64) []model.Player {
	tags := []string{"GK", "DEF", "DEF", "DEF", "DEF", "MID", "MID", "MID", "FWD", "FWD", "FWD", "MID", "DEF"}
	out := make([]model.Player, n)
	for i := range out {
		out[i] = model.Player{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Name:     fmt.Sprintf("%s player %d", prefix, i),
			Position: tags[i%len(tags)],
			Rating:   rating,
		}
	}
	return out
}

func request(requestID string) service.MatchRequest {
	return service.MatchRequest{
		RequestID: requestID,
		Home:      service.SquadInput{Label: "Dreamers", Players: players("h", 13, 80)},
		Away:      &service.SquadInput{Label: "Rivals", Players: players("a", 11, 78)},
	}
}

func startedService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{service.WithWorkerCount(2), service.WithQueueSize(64)}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func waitCompleted(svc *service.Service, id string) *model.Match {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m, err := svc.Match(context.Background(), id)
		if err == nil && m.Status != model.MatchPending {
			return m
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))

		Convey("When it has not been started", func() {
			_, err := svc.SubmitMatch(context.Background(), request(""))

			Convey("Then submissions should be refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When the start context is cancelled before stopping", func() {
			store := repository.NewMemoryStore()
			detached := service.New(service.WithWorkerCount(1), service.WithQueueSize(32), service.WithStore(store))
			ctx, cancel := context.WithCancel(context.Background())
			So(detached.Start(ctx), ShouldBeNil)
			cancel()

			var ids []string
			for i := 0; i < 10; i++ {
				sub, err := detached.SubmitMatch(context.Background(), request(""))
				So(err, ShouldBeNil)
				ids = append(ids, sub.MatchID)
			}
			detached.Stop()

			Convey("Then queued matches should still be simulated", func() {
				for _, id := range ids {
					m, err := store.Get(context.Background(), id)
					So(err, ShouldBeNil)
					So(m.Status, ShouldEqual, model.MatchCompleted)
				}
			})
		})

		Convey("When starting and stopping the service", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats()
			svc.Stop()

			Convey("Then stats should reflect both states", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
				So(stats["matchesStored"], ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_PreviewSquad(t *testing.T) {
	Convey("Given raw squads", t, func() {
		svc := service.New()

		Convey("When previewing a full roster", func() {
			team, err := svc.PreviewSquad(players("p", 15, 75), "")

			Convey("Then the starting eleven should be returned", func() {
				So(err, ShouldBeNil)
				So(team.Squad, ShouldHaveLength, 11)
				So(team.Label, ShouldEqual, "Home")
			})
		})

		Convey("When previewing an empty roster", func() {
			team, err := svc.PreviewSquad(nil, "Nobody")

			Convey("Then it should report no squad", func() {
				So(team, ShouldBeNil)
				So(errors.Is(err, service.ErrNoSquad), ShouldBeTrue)
			})
		})
	})
}

func TestService_SubmitMatch(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When the home squad is empty", func() {
			_, err := svc.SubmitMatch(ctx, service.MatchRequest{Home: service.SquadInput{Label: "Empty"}})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, service.ErrNoSquad), ShouldBeTrue)
			})
		})

		Convey("When a match is submitted", func() {
			sub, err := svc.SubmitMatch(ctx, request(""))
			So(err, ShouldBeNil)
			m := waitCompleted(svc, sub.MatchID)

			Convey("Then it should be simulated and stored", func() {
				So(sub.Status, ShouldEqual, model.MatchPending)
				So(sub.Duplicate, ShouldBeFalse)
				So(m, ShouldNotBeNil)
				So(m.Status, ShouldEqual, model.MatchCompleted)
				So(m.Events, ShouldHaveLength, 30)
				So(m.Home.Label, ShouldEqual, "Dreamers")
				So(m.Away.Label, ShouldEqual, "Rivals")
				So(m.Home.Squad, ShouldHaveLength, 11)
			})
		})

		Convey("When no away squad is given", func() {
			req := request("")
			req.Away = nil
			sub, err := svc.SubmitMatch(ctx, req)
			So(err, ShouldBeNil)
			m := waitCompleted(svc, sub.MatchID)

			Convey("Then the built-in opponent should play", func() {
				So(m, ShouldNotBeNil)
				So(m.Away.Label, ShouldEqual, squad.FallbackLabel)
			})
		})

		Convey("When the same request id is submitted twice", func() {
			first, err := svc.SubmitMatch(ctx, request("req-1"))
			So(err, ShouldBeNil)
			second, err := svc.SubmitMatch(ctx, request("req-1"))

			Convey("Then the second call should return the first match", func() {
				So(err, ShouldBeNil)
				So(second.MatchID, ShouldEqual, first.MatchID)
				So(second.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When two seeded matches share a seed", func() {
			seed := int64(99)
			a := request("")
			a.Seed = &seed
			b := request("")
			b.Seed = &seed

			subA, errA := svc.SubmitMatch(ctx, a)
			subB, errB := svc.SubmitMatch(ctx, b)
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)

			Convey("Then they should replay the same events", func() {
				ma, mb := waitCompleted(svc, subA.MatchID), waitCompleted(svc, subB.MatchID)
				So(ma, ShouldNotBeNil)
				So(mb, ShouldNotBeNil)
				So(subA.MatchID, ShouldNotEqual, subB.MatchID)
				So(ma.Events, ShouldResemble, mb.Events)
			})
		})
	})
}

func TestService_RematchAndTimeline(t *testing.T) {
	Convey("Given a completed match", t, func() {
		clock := playback.Clock{Duration: 90 * time.Second, Tick: time.Second}
		svc := startedService(service.WithPlaybackClock(clock))
		defer svc.Stop()
		ctx := context.Background()

		sub, err := svc.SubmitMatch(ctx, request(""))
		So(err, ShouldBeNil)
		original := waitCompleted(svc, sub.MatchID)
		So(original, ShouldNotBeNil)

		Convey("When requesting a rematch", func() {
			re, err := svc.Rematch(ctx, sub.MatchID)
			So(err, ShouldBeNil)
			m := waitCompleted(svc, re.MatchID)

			Convey("Then a new match between the same squads should be played", func() {
				So(re.MatchID, ShouldNotEqual, sub.MatchID)
				So(m, ShouldNotBeNil)
				So(m.Home.Label, ShouldEqual, original.Home.Label)
				So(m.Away.Label, ShouldEqual, original.Away.Label)
			})
		})

		Convey("When requesting a rematch of an unknown match", func() {
			_, err := svc.Rematch(ctx, "missing")

			Convey("Then it should report not found", func() {
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When reading the timeline at kick-off and at the end", func() {
			start, err := svc.Timeline(ctx, sub.MatchID, 0)
			So(err, ShouldBeNil)
			end, err := svc.Timeline(ctx, sub.MatchID, clock.Duration)
			So(err, ShouldBeNil)

			Convey("Then only minute-zero events are visible at first and all at the end", func() {
				So(start.Minute, ShouldEqual, 0)
				for _, e := range start.Events {
					So(e.Minute, ShouldEqual, 0)
				}
				So(end.Minute, ShouldEqual, 90)
				So(end.Finished, ShouldBeTrue)
				So(end.Events, ShouldHaveLength, len(original.Events))
				home, away := original.Score()
				So(end.HomeGoals, ShouldEqual, home)
				So(end.AwayGoals, ShouldEqual, away)
			})
		})

		Convey("When preparing live playback", func() {
			p, m, err := svc.NewPlayback(ctx, sub.MatchID)

			Convey("Then a player for the match should be returned", func() {
				So(err, ShouldBeNil)
				So(p, ShouldNotBeNil)
				So(m.ID, ShouldEqual, sub.MatchID)
				So(p.Clock(), ShouldResemble, clock)
			})
		})
	})
}
