package face

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Simulated is a tracking session with one swaying head in front of a table
// plane. The face drops out for one second in every ten.
type Simulated struct {
	period time.Duration
	faceID uuid.UUID
	plane  *PlaneAnchor

	mu    sync.RWMutex
	frame *Frame
}

// NewSimulated creates a session that refreshes its frame every period.
func NewSimulated(period time.Duration) *Simulated {
	return &Simulated{
		period: period,
		faceID: uuid.New(),
		plane:  &PlaneAnchor{ID: uuid.New(), Center: Vec3{Y: -0.4, Z: -0.6}},
	}
}

// FrameAt builds the frame seen t into the session.
func (s *Simulated) FrameAt(t time.Duration, at time.Time) *Frame {
	f := &Frame{Timestamp: at, Anchors: []Anchor{s.plane}}

	sec := t.Seconds()
	if math.Mod(sec, 10) >= 9 {
		return f
	}

	yaw := 0.35 * math.Sin(sec*0.8)
	pos := Vec3{
		X: float32(0.05 * math.Sin(sec*0.8)),
		Y: float32(0.02 * math.Sin(sec*1.3)),
		Z: -0.45,
	}
	f.Anchors = append(f.Anchors, &FaceAnchor{
		ID:          s.faceID,
		Transform:   Translation(pos).Mul(RotationY(yaw)),
		LookAtPoint: Vec3{X: float32(math.Sin(yaw)), Z: float32(math.Cos(yaw))},
	})
	return f
}

// Run refreshes the current frame until ctx is done.
func (s *Simulated) Run(ctx context.Context) error {
	start := time.Now()
	tk := time.NewTicker(s.period)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tk.C:
			f := s.FrameAt(now.Sub(start), now)
			s.mu.Lock()
			s.frame = f
			s.mu.Unlock()
		}
	}
}

func (s *Simulated) CurrentFrame() *Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *Simulated) Close() error { return nil }

// None is a session that never sees anything.
type None struct{}

func (None) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (None) CurrentFrame() *Frame { return nil }

func (None) Close() error { return nil }
