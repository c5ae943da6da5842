package playback_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/internal/domain/playback"
	"github.com/okian/dreamxi/internal/domain/simulation"
	"github.com/okian/dreamxi/internal/domain/squad"
	. "github.com/smartystreets/goconvey/convey"
)

func stream(minutes ...int) []model.MatchEvent {
	events := make([]model.MatchEvent, len(minutes))
	for i, m := range minutes {
		events[i] = model.MatchEvent{Minute: m, Kind: model.EventPassCompleted, Side: model.SideHome}
	}
	return events
}

func TestClock(t *testing.T) {
	Convey("Given the default clock", t, func() {
		c := playback.DefaultClock()

		Convey("Then minutes should follow elapsed time", func() {
			So(c.MinuteAt(0), ShouldEqual, 0)
			So(c.MinuteAt(-time.Second), ShouldEqual, 0)
			So(c.MinuteAt(60*time.Second), ShouldEqual, 45)
			So(c.MinuteAt(4*time.Second), ShouldEqual, 3)
			So(c.MinuteAt(120*time.Second), ShouldEqual, 90)
			So(c.MinuteAt(10*time.Minute), ShouldEqual, 90)
		})

		Convey("And the match should take sixty ticks", func() {
			So(c.Ticks(), ShouldEqual, 60)
			So(c.Finished(119*time.Second), ShouldBeFalse)
			So(c.Finished(120*time.Second), ShouldBeTrue)
		})
	})

	Convey("Given a zero clock", t, func() {
		var c playback.Clock

		Convey("Then defaults should apply", func() {
			So(c.MinuteAt(60*time.Second), ShouldEqual, 45)
			So(c.Ticks(), ShouldEqual, 60)
		})
	})

	Convey("Given a minute-ordered stream", t, func() {
		c := playback.DefaultClock()
		events := stream(0, 3, 6, 45, 46, 90)

		Convey("Then visibility should be a prefix by minute threshold", func() {
			So(c.Visible(events, 0), ShouldHaveLength, 1)
			So(c.Visible(events, 8*time.Second), ShouldHaveLength, 3)
			So(c.Visible(events, 60*time.Second), ShouldHaveLength, 4)
			So(c.Visible(events, 120*time.Second), ShouldHaveLength, 6)
		})

		Convey("And an empty stream should stay empty", func() {
			So(c.Visible(nil, time.Minute), ShouldBeEmpty)
		})
	})
}

func TestPlayerAdvance(t *testing.T) {
	Convey("Given a simulated match and a ten-tick clock", t, func() {
		res := simulation.New(simulation.WithSeed(17)).Simulate(squad.FallbackTeam(), squad.FallbackTeam())
		clock := playback.Clock{Duration: 10 * time.Second, Tick: time.Second}
		var goals atomic.Int32
		p := playback.NewPlayer(res.Events, playback.WithClock(clock), playback.WithOnGoal(func(ev model.MatchEvent) {
			So(ev.Kind, ShouldEqual, model.EventGoal)
			goals.Add(1)
		}))

		Convey("When advancing to the end", func() {
			var frames []playback.Frame
			for i := 0; i < 15; i++ {
				frames = append(frames, p.Advance())
			}

			Convey("Then every event should be revealed exactly once", func() {
				total := 0
				for _, f := range frames {
					total += len(f.Revealed)
				}
				So(total, ShouldEqual, len(res.Events))
			})

			Convey("And the tenth frame should finish at minute 90", func() {
				So(frames[8].Finished, ShouldBeFalse)
				So(frames[9].Finished, ShouldBeTrue)
				So(frames[9].Minute, ShouldEqual, 90)
				So(p.Elapsed(), ShouldEqual, 10*time.Second)
			})

			Convey("And the running score should match the stream", func() {
				h, a := playback.Score(res.Events)
				last := frames[len(frames)-1]
				So(last.HomeGoals, ShouldEqual, h)
				So(last.AwayGoals, ShouldEqual, a)
				So(int(goals.Load()), ShouldEqual, h+a)
			})
		})
	})
}

func TestPlayerRun(t *testing.T) {
	Convey("Given a fast clock", t, func() {
		events := stream(0, 10, 20, 30, 40, 50, 60, 70, 80, 90)
		clock := playback.Clock{Duration: 20 * time.Millisecond, Tick: 2 * time.Millisecond}
		p := playback.NewPlayer(events, playback.WithClock(clock))

		Convey("When started", func() {
			So(p.Start(context.Background()), ShouldBeNil)

			Convey("Then frames should flow until the match ends", func() {
				revealed := 0
				var last playback.Frame
				for f := range p.Frames() {
					revealed += len(f.Revealed)
					last = f
				}
				So(revealed, ShouldEqual, len(events))
				So(last.Finished, ShouldBeTrue)
				<-p.Done()
			})

			Convey("And a second Start should be refused", func() {
				So(p.Start(context.Background()), ShouldEqual, playback.ErrRunning)
				p.Stop()
			})
		})

		Convey("When stopped early", func() {
			slow := playback.NewPlayer(events, playback.WithClock(playback.Clock{Duration: time.Hour, Tick: time.Millisecond}))
			So(slow.Start(context.Background()), ShouldBeNil)
			<-slow.Frames()
			slow.Stop()

			Convey("Then the run should end and keep its progress", func() {
				<-slow.Done()
				So(slow.Elapsed(), ShouldBeGreaterThan, 0)
				So(slow.Elapsed(), ShouldBeLessThan, time.Hour)
			})
		})

		Convey("When played out and restarted", func() {
			So(p.Start(context.Background()), ShouldBeNil)
			for range p.Frames() {
			}
			<-p.Done()
			So(p.Start(context.Background()), ShouldEqual, playback.ErrFinished)

			So(p.Restart(context.Background(), stream(0, 90)), ShouldBeNil)

			Convey("Then playback should begin again from kick-off", func() {
				first := <-p.Frames()
				So(first.Elapsed, ShouldEqual, 2*time.Millisecond)
				p.Stop()
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			slow := playback.NewPlayer(events, playback.WithClock(playback.Clock{Duration: time.Hour, Tick: time.Millisecond}))
			So(slow.Start(ctx), ShouldBeNil)
			cancel()

			Convey("Then the run should end", func() {
				select {
				case <-slow.Done():
				case <-time.After(time.Second):
					So("playback did not stop", ShouldBeEmpty)
				}
			})
		})
	})
}
