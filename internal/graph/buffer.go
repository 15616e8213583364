// Package graph keeps the accelerometer magnitude history and draws it as a
// connected path.
package graph

import "time"

// Point is one graph sample.
type Point struct {
	Elapsed   time.Duration
	Magnitude float64
}

// Buffer holds points in arrival order. A capped buffer is a ring that
// overwrites its oldest point; an unbounded one grows without limit.
type Buffer struct {
	points    []Point
	nextIndex int
	full      bool
	capped    bool
}

// NewBuffer returns a buffer capped at max points, or unbounded when max is 0.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		return &Buffer{}
	}
	return &Buffer{points: make([]Point, max), capped: true}
}

// Cap is the maximum number of retained points, 0 when unbounded.
func (b *Buffer) Cap() int {
	if !b.capped {
		return 0
	}
	return len(b.points)
}

// Len is the number of retained points.
func (b *Buffer) Len() int {
	switch {
	case !b.capped:
		return len(b.points)
	case b.full:
		return len(b.points)
	default:
		return b.nextIndex
	}
}

// Append adds p, evicting the oldest point if the buffer is capped and full.
func (b *Buffer) Append(p Point) {
	if !b.capped {
		b.points = append(b.points, p)
		return
	}
	b.points[b.nextIndex] = p
	b.nextIndex++
	if b.nextIndex >= len(b.points) {
		b.nextIndex = 0
		b.full = true
	}
}

// Points returns the retained points, oldest first.
func (b *Buffer) Points() []Point {
	if !b.capped {
		out := make([]Point, len(b.points))
		copy(out, b.points)
		return out
	}
	if !b.full {
		out := make([]Point, b.nextIndex)
		copy(out, b.points[:b.nextIndex])
		return out
	}
	out := make([]Point, 0, len(b.points))
	out = append(out, b.points[b.nextIndex:]...)
	out = append(out, b.points[:b.nextIndex]...)
	return out
}

// Reset drops every point.
func (b *Buffer) Reset() {
	if !b.capped {
		b.points = nil
		return
	}
	b.nextIndex = 0
	b.full = false
}
