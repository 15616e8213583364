package motion

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Simulated produces a resting device reading (about 1 g on Z) with a slow
// wobble, seeded noise, and an occasional shake.
type Simulated struct {
	mu    sync.Mutex
	rng   *rand.Rand
	start time.Time
	now   func() time.Time
}

// NewSimulated returns a deterministic simulated accelerometer for seed.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		rng:   rand.New(rand.NewSource(seed)),
		start: time.Now(),
		now:   time.Now,
	}
}

func (s *Simulated) Read() (*Acceleration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().Sub(s.start).Seconds()
	noise := func() float64 { return (s.rng.Float64() - 0.5) * 0.04 }

	a := &Acceleration{
		X: 0.05*math.Sin(t*0.7) + noise(),
		Y: 0.05*math.Cos(t*0.5) + noise(),
		Z: -1 + noise(),
	}

	// shake for half a second every 7 seconds
	if math.Mod(t, 7) < 0.5 {
		a.X += 0.8 * math.Sin(t*40)
		a.Y += 0.5 * math.Cos(t*33)
	}
	return a, nil
}
