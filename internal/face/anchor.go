// Package face polls a tracking session for a face anchor and forwards its
// pose. The pose is only logged downstream.
package face

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vec3 is a point or direction in session space (metres).
type Vec3 struct {
	X, Y, Z float32
}

// Transform is a 4x4 column-major pose matrix.
type Transform [16]float32

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a transform moving points by v.
func Translation(v Vec3) Transform {
	t := Identity()
	t[12], t[13], t[14] = v.X, v.Y, v.Z
	return t
}

// RotationY returns a rotation of yaw radians about the Y axis.
func RotationY(yaw float64) Transform {
	s, c := float32(math.Sin(yaw)), float32(math.Cos(yaw))
	t := Identity()
	t[0], t[2] = c, -s
	t[8], t[10] = s, c
	return t
}

// Mul returns t * o.
func (t Transform) Mul(o Transform) Transform {
	var r Transform
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += t[k*4+row] * o[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// Position is the translation part of the transform.
func (t Transform) Position() Vec3 {
	return Vec3{X: t[12], Y: t[13], Z: t[14]}
}

// String prints the matrix row by row.
func (t Transform) String() string {
	var b strings.Builder
	b.WriteString("[")
	for row := 0; row < 4; row++ {
		if row > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%.3f %.3f %.3f %.3f", t[row], t[4+row], t[8+row], t[12+row])
	}
	b.WriteString("]")
	return b.String()
}

// Anchor is a tracked real-world feature reported in a frame.
type Anchor interface {
	AnchorID() uuid.UUID
}

// FaceAnchor is a tracked face.
type FaceAnchor struct {
	ID          uuid.UUID
	Transform   Transform
	LookAtPoint Vec3 // gaze target in face space
}

func (a *FaceAnchor) AnchorID() uuid.UUID { return a.ID }

// PlaneAnchor is a detected surface. Sessions may report it next to faces.
type PlaneAnchor struct {
	ID     uuid.UUID
	Center Vec3
}

func (a *PlaneAnchor) AnchorID() uuid.UUID { return a.ID }

// Frame is one snapshot of the tracking session.
type Frame struct {
	Timestamp time.Time
	Anchors   []Anchor
}

// Session is a running tracking session. CurrentFrame returns nil until the
// first frame is available.
type Session interface {
	Run(ctx context.Context) error
	CurrentFrame() *Frame
	Close() error
}
