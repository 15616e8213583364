package graph

import "time"

// Region is the overlay rectangle the graph is painted into.
type Region struct {
	X, Y, W, H float32
}

// Scale maps time and magnitude onto a Region.
type Scale struct {
	Span         time.Duration // time shown across the region width
	MaxMagnitude float64       // magnitude at the top edge
}

// Vertex is a point in screen coordinates.
type Vertex struct {
	X, Y float32
}

// Normalize shifts every point so the first one is at zero elapsed time.
func Normalize(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	origin := points[0].Elapsed
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Elapsed: p.Elapsed - origin, Magnitude: p.Magnitude}
	}
	return out
}

// Layout places normalised points in region. Every point is drawn: the x axis
// covers the scale's span, or the whole retained history once it is longer.
func Layout(points []Point, region Region, scale Scale) []Vertex {
	norm := Normalize(points)
	if len(norm) == 0 || scale.Span <= 0 || scale.MaxMagnitude <= 0 {
		return nil
	}

	width := scale.Span
	if last := norm[len(norm)-1].Elapsed; last > width {
		width = last
	}

	out := make([]Vertex, 0, len(norm))
	for _, p := range norm {
		fx := float64(p.Elapsed) / float64(width)
		fy := clamp01(p.Magnitude / scale.MaxMagnitude)
		out = append(out, Vertex{
			X: region.X + float32(fx)*region.W,
			Y: region.Y + region.H - float32(fy)*region.H,
		})
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
