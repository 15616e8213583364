package motion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/logging"
	"github.com/iburimskiy/sensor-visualization/internal/signal"
)

// Sampler polls an Accelerometer at a fixed interval and publishes samples.
type Sampler struct {
	mu       sync.Mutex
	source   Accelerometer
	interval time.Duration
	relay    *signal.Relay[Sample]
	log      *zap.Logger
	now      func() time.Time

	dropped int
}

// NewSampler creates a sampler over source.
func NewSampler(source Accelerometer, interval time.Duration, log *zap.Logger) *Sampler {
	log = logging.OrNop(log)
	return &Sampler{
		source:   source,
		interval: interval,
		relay:    signal.NewBehaviorRelay[Sample](),
		log:      log,
		now:      time.Now,
	}
}

// Samples subscribes to published samples.
func (s *Sampler) Samples(buffer int) (<-chan Sample, func()) {
	return s.relay.Subscribe(buffer)
}

// SetSource swaps the accelerometer being polled.
func (s *Sampler) SetSource(src Accelerometer) {
	s.mu.Lock()
	s.source = src
	s.mu.Unlock()
}

// Rewind restarts the current source from its beginning if it is a
// recording. It reports whether anything was rewound.
func (s *Sampler) Rewind() bool {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	r, ok := src.(interface{ Restart() })
	if !ok {
		return false
	}
	r.Restart()
	return true
}

// Poll reads the source once. Missing data and read errors yield false.
func (s *Sampler) Poll(start time.Time) (Sample, bool) {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	acc, err := src.Read()
	if err != nil || acc == nil {
		s.dropped++
		return Sample{}, false
	}
	return Sample{Acceleration: *acc, Elapsed: s.now().Sub(start)}, true
}

// Run polls until ctx is done. Elapsed times are measured from start.
func (s *Sampler) Run(ctx context.Context, start time.Time) {
	tk := time.NewTicker(s.interval)
	defer tk.Stop()
	defer s.relay.Close()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("accelerometer sampling stopped", zap.Int("dropped", s.dropped))
			return
		case <-tk.C:
			sample, ok := s.Poll(start)
			if !ok {
				continue
			}
			s.log.Debug("accelerometer update",
				zap.Float64("x", sample.X),
				zap.Float64("y", sample.Y),
				zap.Float64("z", sample.Z),
				zap.Float64("magnitude", sample.Magnitude()))
			s.relay.Publish(sample)
		}
	}
}
