package playback

import (
	"context"
	"sync"
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/pkg/metrics"
)

const defaultFrameBuffer = 8

// Frame is one tick of playback.
type Frame struct {
	Elapsed   time.Duration      `json:"elapsed"`
	Minute    int                `json:"minute"`
	Revealed  []model.MatchEvent `json:"revealed"`
	HomeGoals int                `json:"home_goals"`
	AwayGoals int                `json:"away_goals"`
	Finished  bool               `json:"finished"`
}

// Option applies a configuration option to the Player.
type Option func(*Player)

// WithClock sets the playback timing.
func WithClock(c Clock) Option {
	return func(p *Player) {
		p.clock = c.normalized()
	}
}

// WithOnGoal registers a hook invoked once for every revealed goal.
func WithOnGoal(f func(model.MatchEvent)) Option {
	return func(p *Player) {
		p.onGoal = f
	}
}

// WithFrameBuffer sets the capacity of the frames channel.
func WithFrameBuffer(n int) Option {
	return func(p *Player) {
		if n >= 0 {
			p.buffer = n
		}
	}
}

// Player reveals an event stream tick by tick. Frames are delivered on the
// channel returned by Frames, which is closed when a run ends.
type Player struct {
	clock  Clock
	onGoal func(model.MatchEvent)
	buffer int

	mu        sync.Mutex
	events    []model.MatchEvent
	elapsed   time.Duration
	revealed  int
	homeGoals int
	awayGoals int
	running   bool
	cancel    context.CancelFunc
	frames    chan Frame
	drained   bool
	done      chan struct{}
}

// NewPlayer creates a player for events.
func NewPlayer(events []model.MatchEvent, opts ...Option) *Player {
	p := &Player{
		clock:  DefaultClock(),
		buffer: defaultFrameBuffer,
		events: events,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.frames = make(chan Frame, p.buffer)
	p.done = make(chan struct{})
	close(p.done)
	return p
}

// Clock returns the player's timing.
func (p *Player) Clock() Clock { return p.clock }

// Start begins ticking in the background. It returns ErrRunning when a run is
// already in progress and ErrFinished when the stream has been played out.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrRunning
	}
	if p.clock.Finished(p.elapsed) {
		return ErrFinished
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	if p.drained {
		p.frames = make(chan Frame, p.buffer)
		p.drained = false
	}
	p.done = make(chan struct{})
	metrics.PlaybackStarted()

	go p.run(runCtx, cancel, p.frames, p.done)
	return nil
}

func (p *Player) run(ctx context.Context, cancel context.CancelFunc, frames chan<- Frame, done chan<- struct{}) {
	defer func() {
		cancel()
		p.mu.Lock()
		p.running = false
		p.drained = true
		p.mu.Unlock()
		metrics.PlaybackStopped()
		close(frames)
		close(done)
	}()

	ticker := time.NewTicker(p.clock.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f := p.Advance()
			select {
			case frames <- f:
			case <-ctx.Done():
				return
			}
			if f.Finished {
				return
			}
		}
	}
}

// Advance moves playback forward by one tick and returns the resulting
// frame. It is exported so callers can drive playback without a ticker.
func (p *Player) Advance() Frame {
	p.mu.Lock()
	if !p.clock.Finished(p.elapsed) {
		p.elapsed += p.clock.Tick
		if p.elapsed > p.clock.Duration {
			p.elapsed = p.clock.Duration
		}
	}
	minute := p.clock.MinuteAt(p.elapsed)
	upTo := revealedCount(p.events, minute)
	fresh := append([]model.MatchEvent(nil), p.events[p.revealed:upTo]...)
	p.revealed = upTo

	var goals []model.MatchEvent
	for _, ev := range fresh {
		if ev.Kind != model.EventGoal {
			continue
		}
		goals = append(goals, ev)
		if ev.Side == model.SideHome {
			p.homeGoals++
		} else {
			p.awayGoals++
		}
	}
	f := Frame{
		Elapsed:   p.elapsed,
		Minute:    minute,
		Revealed:  fresh,
		HomeGoals: p.homeGoals,
		AwayGoals: p.awayGoals,
		Finished:  p.clock.Finished(p.elapsed),
	}
	hook := p.onGoal
	p.mu.Unlock()

	if hook != nil {
		for _, g := range goals {
			hook(g)
		}
	}
	return f
}

// Stop ends the current run and waits for it to wind down. Progress is kept.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	<-done
}

// Restart stops any run, replaces the stream and rewinds to kick-off.
func (p *Player) Restart(ctx context.Context, events []model.MatchEvent) error {
	p.Stop()
	p.mu.Lock()
	p.events = events
	p.elapsed = 0
	p.revealed = 0
	p.homeGoals, p.awayGoals = 0, 0
	p.mu.Unlock()
	return p.Start(ctx)
}

// Elapsed returns the playback time reached so far.
func (p *Player) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}

// Frames returns the channel of the current or most recent run. Start makes a
// fresh channel once the previous run has closed its own.
func (p *Player) Frames() <-chan Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Done returns a channel closed when the current run ends. Before the first
// Start it is already closed.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
