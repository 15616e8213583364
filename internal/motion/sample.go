// Package motion samples a 3-axis accelerometer and turns readings into
// timestamped magnitude samples.
package motion

import (
	"math"
	"time"
)

// Acceleration is one accelerometer reading in g.
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean norm of the reading.
func (a Acceleration) Magnitude() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Sample is a reading stamped with the time elapsed since sampling started.
type Sample struct {
	Acceleration
	Elapsed time.Duration
}

// Accelerometer is a polled acceleration source. A nil reading means no data
// is available yet.
type Accelerometer interface {
	Read() (*Acceleration, error)
}

// AccelerometerFunc adapts a function to Accelerometer.
type AccelerometerFunc func() (*Acceleration, error)

func (f AccelerometerFunc) Read() (*Acceleration, error) { return f() }
