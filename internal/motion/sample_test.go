package motion

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestAcceleration_Magnitude(t *testing.T) {
	tests := []struct {
		name string
		acc  Acceleration
		want float64
	}{
		{"unit x", Acceleration{X: 1}, 1},
		{"unit y", Acceleration{Y: 1}, 1},
		{"unit z", Acceleration{Z: 1}, 1},
		{"zero", Acceleration{}, 0},
		{"3-4-0", Acceleration{X: 3, Y: 4}, 5},
		{"negative axes", Acceleration{X: -2, Y: -3, Z: -6}, 7},
		{"resting device", Acceleration{X: 0.01, Y: -0.02, Z: -0.98}, math.Sqrt(0.0001 + 0.0004 + 0.9604)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.acc.Magnitude(), 1e-12)
		})
	}
}

func TestSampler_PollDropsMissingData(t *testing.T) {
	readings := []func() (*Acceleration, error){
		func() (*Acceleration, error) { return &Acceleration{X: 1}, nil },
		func() (*Acceleration, error) { return nil, nil },
		func() (*Acceleration, error) { return nil, errors.New("sensor busy") },
		func() (*Acceleration, error) { return &Acceleration{Z: 1}, nil },
	}
	i := 0
	src := AccelerometerFunc(func() (*Acceleration, error) {
		r := readings[i]
		i++
		return r()
	})

	start := time.Unix(100, 0)
	s := NewSampler(src, time.Millisecond, nil)
	s.now = func() time.Time { return start.Add(250 * time.Millisecond) }

	got, ok := s.Poll(start)
	require.True(t, ok)
	assert.Equal(t, 1.0, got.X)
	assert.Equal(t, 250*time.Millisecond, got.Elapsed)

	_, ok = s.Poll(start)
	assert.False(t, ok)
	_, ok = s.Poll(start)
	assert.False(t, ok)

	got, ok = s.Poll(start)
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Z)
	assert.Equal(t, 2, s.dropped)
}

func TestSampler_RunPublishesMagnitudes(t *testing.T) {
	defer goleak.VerifyNone(t)

	axes := []Acceleration{{X: 1}, {Y: 1}, {Z: 1}}
	i := 0
	src := AccelerometerFunc(func() (*Acceleration, error) {
		if i >= len(axes) {
			return nil, nil
		}
		a := axes[i]
		i++
		return &a, nil
	})

	s := NewSampler(src, time.Millisecond, nil)
	samples, cancel := s.Samples(8)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Now())
		close(done)
	}()

	var mags []float64
	for len(mags) < 3 {
		select {
		case smp := <-samples:
			mags = append(mags, smp.Magnitude())
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for samples")
		}
	}
	stop()
	<-done

	assert.Equal(t, []float64{1, 1, 1}, mags)
}

func TestSampler_RewindRestartsRecordings(t *testing.T) {
	rec := Recording{{Acceleration: Acceleration{Z: 1}, Elapsed: time.Second}}
	r := NewReplay(rec)
	base := time.Unix(0, 0)
	r.start = base
	r.now = func() time.Time { return base.Add(time.Second) }

	s := NewSampler(r, time.Millisecond, nil)
	_, ok := s.Poll(base)
	require.True(t, ok, "reading due at one second")

	require.True(t, s.Rewind())
	_, ok = s.Poll(base)
	assert.False(t, ok, "rewound to before the first reading")

	s.SetSource(AccelerometerFunc(func() (*Acceleration, error) { return &Acceleration{Z: 1}, nil }))
	assert.False(t, s.Rewind(), "live sources cannot rewind")
}

func TestSimulated_RestsNearOneG(t *testing.T) {
	sim := NewSimulated(7)
	base := sim.start
	sim.now = func() time.Time { return base.Add(2 * time.Second) }

	a, err := sim.Read()
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.InDelta(t, 1.0, a.Magnitude(), 0.1)
}

func TestSimulated_SeedIsDeterministic(t *testing.T) {
	a, b := NewSimulated(3), NewSimulated(3)
	fixed := time.Unix(0, 0)
	a.start, b.start = fixed, fixed
	a.now = func() time.Time { return fixed.Add(3 * time.Second) }
	b.now = a.now

	ra, _ := a.Read()
	rb, _ := b.Read()
	assert.Equal(t, *ra, *rb)
}
