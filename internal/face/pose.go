package face

import "math"

// Box is a face detection in normalised image coordinates (0-1), with the
// eye and nose landmarks used to estimate head yaw.
type Box struct {
	X, Y, W, H float64 // top-left corner and size
	LeftEye    [2]float64
	RightEye   [2]float64
	Nose       [2]float64
	Confidence float64
}

// Center returns the centre of the box.
func (b Box) Center() (x, y float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Camera describes the pinhole camera the box was seen through.
type Camera struct {
	HorizontalFOV float64 // radians
	Aspect        float64 // width / height
	FaceWidth     float64 // assumed real face width in metres
}

// DefaultCamera matches a typical laptop webcam.
func DefaultCamera() Camera {
	return Camera{HorizontalFOV: 60 * math.Pi / 180, Aspect: 16.0 / 9.0, FaceWidth: 0.15}
}

// Pose turns a detection into a face transform and look-at point. The camera
// looks down -Z; distance comes from the apparent face width and yaw from the
// nose offset between the eyes.
func (c Camera) Pose(b Box) (Transform, Vec3) {
	halfW := math.Tan(c.HorizontalFOV / 2)
	halfH := halfW / c.Aspect

	w := math.Max(b.W, 1e-3)
	dist := c.FaceWidth / (2 * halfW * w)

	cx, cy := b.Center()
	pos := Vec3{
		X: float32((cx*2 - 1) * halfW * dist),
		Y: float32((1 - cy*2) * halfH * dist),
		Z: float32(-dist),
	}

	yaw := 0.0
	eyeDist := b.LeftEye[0] - b.RightEye[0]
	if math.Abs(eyeDist) > 1e-6 {
		mid := (b.LeftEye[0] + b.RightEye[0]) / 2
		ratio := math.Max(-1, math.Min(1, 2*(b.Nose[0]-mid)/eyeDist))
		yaw = math.Asin(ratio)
	}

	look := Vec3{X: float32(math.Sin(yaw)), Z: float32(math.Cos(yaw))}
	return Translation(pos).Mul(RotationY(yaw)), look
}
