package signal

import (
	"context"

	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/config"
	"github.com/iburimskiy/sensor-visualization/internal/logging"
)

// Shape names an on-screen shape driven by the schedule.
type Shape string

const (
	Square Shape = "square"
	Circle Shape = "circle"
)

// Visibility is one scheduled visibility state for a shape.
type Visibility struct {
	Shape   Shape
	Visible bool
	Tick    int64
}

// Rule hides Shape on every tick where tick % 20 == Offset.
type Rule struct {
	Shape  Shape
	Offset int64
}

// DefaultRules hides the square at offset 9 and the circle at offset 19.
func DefaultRules() []Rule {
	return []Rule{
		{Shape: Square, Offset: config.SquareHiddenOffset},
		{Shape: Circle, Offset: config.CircleHiddenOffset},
	}
}

// Visible reports whether a shape with the given offset is shown at tick.
func Visible(tick, offset int64) bool {
	return tick%config.VisibilityModulus != offset
}

// Scheduler maps base ticks to per-shape visibility.
type Scheduler struct {
	rules    []Rule
	distinct bool
	last     map[Shape]bool
	relay    *Relay[Visibility]
	log      *zap.Logger
}

// NewScheduler creates a scheduler. With distinct set, only changes are
// emitted; the first tick always emits every shape.
func NewScheduler(rules []Rule, distinct bool, log *zap.Logger) *Scheduler {
	log = logging.OrNop(log)
	return &Scheduler{
		rules:    rules,
		distinct: distinct,
		last:     make(map[Shape]bool, len(rules)),
		relay:    NewRelay[Visibility](),
		log:      log,
	}
}

// Changes subscribes to emitted visibility values.
func (s *Scheduler) Changes(buffer int) (<-chan Visibility, func()) {
	return s.relay.Subscribe(buffer)
}

// Advance computes the visibility values emitted for tick.
func (s *Scheduler) Advance(tick int64) []Visibility {
	out := make([]Visibility, 0, len(s.rules))
	for _, r := range s.rules {
		v := Visible(tick, r.Offset)
		if prev, seen := s.last[r.Shape]; s.distinct && seen && prev == v {
			continue
		}
		s.last[r.Shape] = v
		out = append(out, Visibility{Shape: r.Shape, Visible: v, Tick: tick})
	}
	return out
}

// Run consumes ticks until the channel closes or ctx is done, publishing and
// logging every emitted value.
func (s *Scheduler) Run(ctx context.Context, ticks <-chan int64) {
	defer s.relay.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			for _, v := range s.Advance(tick) {
				s.log.Info("shape visibility",
					zap.String("shape", string(v.Shape)),
					zap.Bool("hidden", !v.Visible),
					zap.Int64("tick", v.Tick))
				s.relay.Publish(v)
			}
		}
	}
}
