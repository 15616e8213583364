package face

import (
	"context"

	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/logging"
	"github.com/iburimskiy/sensor-visualization/internal/signal"
)

// Sample is the face pose seen at a base tick.
type Sample struct {
	AnchorID  string
	Transform Transform
	LookAt    Vec3
	Tick      int64
}

// Adapter polls a Session once per tick for a face anchor.
type Adapter struct {
	session Session
	relay   *signal.Relay[Sample]
	log     *zap.Logger
}

// NewAdapter wraps session.
func NewAdapter(session Session, log *zap.Logger) *Adapter {
	log = logging.OrNop(log)
	return &Adapter{
		session: session,
		relay:   signal.NewBehaviorRelay[Sample](),
		log:     log,
	}
}

// Samples subscribes to detected face poses.
func (a *Adapter) Samples(buffer int) (<-chan Sample, func()) {
	return a.relay.Subscribe(buffer)
}

// Poll scans the current frame for the first face anchor.
func (a *Adapter) Poll(tick int64) (Sample, bool) {
	frame := a.session.CurrentFrame()
	if frame == nil {
		return Sample{}, false
	}
	for _, anchor := range frame.Anchors {
		if fa, ok := anchor.(*FaceAnchor); ok {
			return Sample{
				AnchorID:  fa.ID.String(),
				Transform: fa.Transform,
				LookAt:    fa.LookAtPoint,
				Tick:      tick,
			}, true
		}
	}
	return Sample{}, false
}

// Run polls on every tick until ticks closes or ctx is done.
func (a *Adapter) Run(ctx context.Context, ticks <-chan int64) {
	defer a.relay.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			s, found := a.Poll(tick)
			if !found {
				continue
			}
			a.log.Info("face detected",
				zap.Int64("tick", tick),
				zap.Stringer("transform", s.Transform))
			a.relay.Publish(s)
		}
	}
}
