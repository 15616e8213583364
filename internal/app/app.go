// Package app wires the signal sources to the presentation surface and owns
// their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/config"
	"github.com/iburimskiy/sensor-visualization/internal/cue"
	"github.com/iburimskiy/sensor-visualization/internal/face"
	"github.com/iburimskiy/sensor-visualization/internal/game"
	"github.com/iburimskiy/sensor-visualization/internal/logging"
	"github.com/iburimskiy/sensor-visualization/internal/motion"
	"github.com/iburimskiy/sensor-visualization/internal/signal"
)

// ErrUnsupportedSource is returned for a source kind this build cannot open.
var ErrUnsupportedSource = errors.New("unsupported source")

// channel sizes between the sources and the render loop; a frame is ~16ms so
// these hold several frames of backlog
const (
	visibilityBuffer = 16
	sampleBuffer     = 64
	faceBuffer       = 8
)

// The scheduler must see every tick or it can miss a hide; its backlog holds
// several full visibility cycles. Face polling only needs recent ticks.
const (
	schedTickBuffer = 4 * config.VisibilityModulus
	faceTickBuffer  = 4
)

// CameraOpener opens the webcam face tracking session.
type CameraOpener func(cfg config.FaceConfig, log *zap.Logger) (face.Session, error)

// Options holds the pieces that depend on hardware.
type Options struct {
	OpenCamera CameraOpener
	Log        *zap.Logger
}

// App owns the ticker, the scheduler, the motion sampler, the face adapter
// and the optional remote ingest server.
type App struct {
	cfg       *config.Config
	log       *zap.Logger
	sessionID uuid.UUID

	ticker    *signal.Ticker
	scheduler *signal.Scheduler
	sampler   *motion.Sampler
	remote    *motion.Remote
	tracker   face.Session
	adapter   *face.Adapter
	cues      cue.Player

	schedTicks  <-chan int64
	faceTicks   <-chan int64
	unsubscribe []func()

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New builds every source described by cfg. Nothing runs until Start.
func New(cfg *config.Config, opts Options) (*App, error) {
	sessionID := uuid.New()
	log := logging.OrNop(opts.Log).With(zap.Stringer("session", sessionID))

	a := &App{cfg: cfg, log: log, sessionID: sessionID, cues: cue.Mute{}}

	a.ticker = signal.NewTicker(cfg.Timing.TickPeriod)
	rules := []signal.Rule{
		{Shape: signal.Square, Offset: cfg.Timing.SquareOffset},
		{Shape: signal.Circle, Offset: cfg.Timing.CircleOffset},
	}
	a.scheduler = signal.NewScheduler(rules, cfg.Timing.DistinctOnly, log.Named("visibility"))

	src, err := a.motionSource()
	if err != nil {
		return nil, err
	}
	a.sampler = motion.NewSampler(src, cfg.Motion.Interval, log.Named("motion"))

	a.tracker, err = a.faceSession(opts.OpenCamera)
	if err != nil {
		return nil, err
	}
	a.adapter = face.NewAdapter(a.tracker, log.Named("face"))

	if cfg.Display.AudioCues {
		sp, err := cue.NewSpeaker(config.DefaultCueSampleRateHz, config.DefaultCueFrequencyHz, config.DefaultCueDuration,
			string(signal.Square), string(signal.Circle))
		if err != nil {
			log.Warn("audio cues disabled", zap.Error(err))
		} else {
			a.cues = sp
		}
	}

	var cancelSched, cancelFace func()
	a.schedTicks, cancelSched = a.ticker.Ticks(schedTickBuffer)
	a.faceTicks, cancelFace = a.ticker.Ticks(faceTickBuffer)
	a.unsubscribe = append(a.unsubscribe, cancelSched, cancelFace)

	return a, nil
}

func (a *App) motionSource() (motion.Accelerometer, error) {
	switch a.cfg.Motion.Source {
	case config.SourceSimulated:
		return motion.NewSimulated(a.cfg.Motion.Seed), nil
	case config.SourceReplay:
		rec, err := motion.LoadRecording(a.cfg.Motion.RecordingPath)
		if err != nil {
			return nil, err
		}
		return motion.NewReplay(rec), nil
	case config.SourceRemote:
		a.remote = motion.NewRemote(a.log.Named("remote"))
		return a.remote, nil
	default:
		return nil, fmt.Errorf("%w: motion %q", ErrUnsupportedSource, a.cfg.Motion.Source)
	}
}

func (a *App) faceSession(openCamera CameraOpener) (face.Session, error) {
	switch a.cfg.Face.Source {
	case config.SourceSimulated:
		return face.NewSimulated(a.cfg.Timing.TickPeriod / 4), nil
	case config.SourceNone:
		return face.None{}, nil
	case config.SourceCamera:
		if openCamera == nil {
			return nil, fmt.Errorf("%w: face %q", ErrUnsupportedSource, a.cfg.Face.Source)
		}
		s, err := openCamera(a.cfg.Face, a.log.Named("camera"))
		if err != nil {
			return nil, fmt.Errorf("open camera: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: face %q", ErrUnsupportedSource, a.cfg.Face.Source)
	}
}

// SessionID identifies this run in the logs.
func (a *App) SessionID() uuid.UUID { return a.sessionID }

// Cues returns the cue player for hidden shapes.
func (a *App) Cues() cue.Player { return a.cues }

// Inputs subscribes the presentation surface to every stream. Call it before
// Start so no early values are missed.
func (a *App) Inputs() game.Inputs {
	vis, c1 := a.scheduler.Changes(visibilityBuffer)
	samples, c2 := a.sampler.Samples(sampleBuffer)
	faces, c3 := a.adapter.Samples(faceBuffer)
	a.unsubscribe = append(a.unsubscribe, c1, c2, c3)
	return game.Inputs{Visibility: vis, Samples: samples, Faces: faces}
}

// OpenRecording switches the motion source to a replay of the CSV at path.
func (a *App) OpenRecording(path string) error {
	rec, err := motion.LoadRecording(path)
	if err != nil {
		return err
	}
	a.sampler.SetSource(motion.NewReplay(rec))
	a.log.Info("motion source switched to replay", zap.String("path", path), zap.Int("readings", len(rec)))
	return nil
}

// Rewind restarts the motion replay, if one is playing.
func (a *App) Rewind() {
	if a.sampler.Rewind() {
		a.log.Info("motion replay rewound")
	}
}

// Start launches every source on its own goroutine.
func (a *App) Start(ctx context.Context) {
	if a.started {
		return
	}
	a.started = true
	ctx, a.cancel = context.WithCancel(ctx)
	start := time.Now()

	a.log.Info("starting sensor pipeline",
		zap.String("motion", a.cfg.Motion.Source),
		zap.String("face", a.cfg.Face.Source),
		zap.Duration("tick", a.ticker.Period()),
		zap.Int("max_points", a.cfg.Graph.MaxPoints))

	a.goRun(func() { a.ticker.Run(ctx) })
	a.goRun(func() { a.scheduler.Run(ctx, a.schedTicks) })
	a.goRun(func() { a.adapter.Run(ctx, a.faceTicks) })
	a.goRun(func() { a.sampler.Run(ctx, start) })
	a.goRun(func() {
		if err := a.tracker.Run(ctx); err != nil {
			a.log.Error("face session stopped", zap.Error(err))
		}
	})
	if a.remote != nil {
		a.goRun(func() {
			if err := a.remote.Serve(ctx, a.cfg.Motion.Listen); err != nil {
				a.log.Error("motion ingest stopped", zap.Error(err))
			}
		})
	}
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Close stops every source, waits for them, and releases the face session.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	for _, fn := range a.unsubscribe {
		fn()
	}
	if sp, ok := a.cues.(*cue.Speaker); ok {
		sp.Close()
	}
	return a.tracker.Close()
}
