package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iburimskiy/sensor-visualization/internal/config"
	"github.com/iburimskiy/sensor-visualization/internal/face"
	"github.com/iburimskiy/sensor-visualization/internal/signal"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Timing.TickPeriod = 2 * time.Millisecond
	cfg.Motion.Interval = time.Millisecond
	return cfg
}

func TestApp_StreamsReachTheSurface(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, err := New(fastConfig(), Options{})
	require.NoError(t, err)
	in := a.Inputs()
	a.Start(context.Background())

	var squareHidden, circleHidden bool
	var samples, faces int
	deadline := time.After(5 * time.Second)
	for !(squareHidden && circleHidden && samples > 0 && faces > 0) {
		select {
		case v := <-in.Visibility:
			if !v.Visible && v.Shape == signal.Square {
				assert.EqualValues(t, 9, v.Tick%20)
				squareHidden = true
			}
			if !v.Visible && v.Shape == signal.Circle {
				assert.EqualValues(t, 19, v.Tick%20)
				circleHidden = true
			}
		case s := <-in.Samples:
			assert.InDelta(t, 1.0, s.Magnitude(), 1.5)
			samples++
		case <-in.Faces:
			faces++
		case <-deadline:
			t.Fatalf("timed out: square=%v circle=%v samples=%d faces=%d", squareHidden, circleHidden, samples, faces)
		}
	}

	require.NoError(t, a.Close())
}

func TestApp_StalledSchedulerStillHides(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := fastConfig()
	a, err := New(cfg, Options{})
	require.NoError(t, err)
	defer a.Close()

	// ticks pile up while nothing consumes them
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.ticker.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return len(a.schedTicks) >= 2*config.VisibilityModulus }, 5*time.Second, time.Millisecond)
	cancel()
	<-done

	changes, stop := a.scheduler.Changes(64)
	defer stop()
	a.scheduler.Run(context.Background(), a.schedTicks)

	var hidden []signal.Shape
	for v := range changes {
		if !v.Visible {
			hidden = append(hidden, v.Shape)
		}
	}
	require.GreaterOrEqual(t, len(hidden), 2)
	assert.Equal(t, []signal.Shape{signal.Square, signal.Circle}, hidden[:2])
}

func TestApp_FaceNoneNeverEmits(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := fastConfig()
	cfg.Face.Source = config.SourceNone
	a, err := New(cfg, Options{})
	require.NoError(t, err)
	in := a.Inputs()
	a.Start(context.Background())

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.Close())

	got := 0
	for range in.Faces {
		got++
	}
	assert.Zero(t, got)
}

func TestApp_CameraRequiresOpener(t *testing.T) {
	cfg := fastConfig()
	cfg.Face.Source = config.SourceCamera

	_, err := New(cfg, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	boom := errors.New("no device")
	_, err = New(cfg, Options{OpenCamera: func(config.FaceConfig, *zap.Logger) (face.Session, error) {
		return nil, boom
	}})
	assert.ErrorIs(t, err, boom)

	a, err := New(cfg, Options{OpenCamera: func(config.FaceConfig, *zap.Logger) (face.Session, error) {
		return face.None{}, nil
	}})
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestApp_ReplaySource(t *testing.T) {
	cfg := fastConfig()
	cfg.Motion.Source = config.SourceReplay
	cfg.Motion.RecordingPath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := New(cfg, Options{})
	assert.ErrorContains(t, err, "open recording")

	require.NoError(t, os.WriteFile(cfg.Motion.RecordingPath, []byte("0,0,0,-1\n"), 0644))
	a, err := New(cfg, Options{})
	require.NoError(t, err)
	assert.Nil(t, a.remote)
	assert.NoError(t, a.Close())
}

func TestApp_OpenRecordingSwitchesSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "shake.csv")
	require.NoError(t, os.WriteFile(path, []byte("elapsed_ms,x,y,z\n0,3,4,0\n"), 0644))

	a, err := New(fastConfig(), Options{})
	require.NoError(t, err)
	in := a.Inputs()

	assert.Error(t, a.OpenRecording(filepath.Join(t.TempDir(), "nope.csv")))
	require.NoError(t, a.OpenRecording(path))

	a.Start(context.Background())
	select {
	case s := <-in.Samples:
		assert.InDelta(t, 5.0, s.Magnitude(), 1e-9)
	case <-time.After(5 * time.Second):
		t.Fatal("no sample from the replay")
	}
	require.NoError(t, a.Close())
}

func TestApp_RewindOnlyAffectsReplays(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a, err := New(fastConfig(), Options{Log: zap.New(core)})
	require.NoError(t, err)
	defer a.Close()

	a.Rewind()
	assert.Zero(t, logs.FilterMessage("motion replay rewound").Len(), "simulated source has nothing to rewind")

	path := filepath.Join(t.TempDir(), "walk.csv")
	require.NoError(t, os.WriteFile(path, []byte("0,0,0,1\n500,0,0,2\n"), 0644))
	require.NoError(t, a.OpenRecording(path))

	a.Rewind()
	assert.Equal(t, 1, logs.FilterMessage("motion replay rewound").Len())
}

func TestApp_RemoteSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := fastConfig()
	cfg.Motion.Source = config.SourceRemote
	cfg.Motion.Listen = "127.0.0.1:0"

	a, err := New(cfg, Options{})
	require.NoError(t, err)
	require.NotNil(t, a.remote)

	a.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, a.Close())
}

func TestApp_CloseWithoutStart(t *testing.T) {
	a, err := New(fastConfig(), Options{})
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID().String(), "")
	assert.NoError(t, a.Close())
}
