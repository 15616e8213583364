package graph

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	backgroundColor = color.RGBA{R: 20, G: 25, B: 35, A: 200}
	borderColor     = color.RGBA{R: 60, G: 70, B: 90, A: 255}
	gridColor       = color.RGBA{R: 100, G: 110, B: 130, A: 100}
	lineColor       = color.RGBA{R: 90, G: 220, B: 140, A: 255}
)

// Renderer strokes the magnitude history inside a fixed region.
type Renderer struct {
	Region    Region
	Scale     Scale
	LineWidth float32

	whiteImage *ebiten.Image
	vertices   []ebiten.Vertex
	indices    []uint16
}

// NewRenderer creates a renderer for region.
func NewRenderer(region Region, scale Scale) *Renderer {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Renderer{
		Region:     region,
		Scale:      scale,
		LineWidth:  2,
		whiteImage: white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

// Path builds one connected path through vs.
func Path(vs []Vertex) *vector.Path {
	var p vector.Path
	for i, v := range vs {
		if i == 0 {
			p.MoveTo(v.X, v.Y)
			continue
		}
		p.LineTo(v.X, v.Y)
	}
	return &p
}

// Draw paints the frame, the 1 g reference line, and the path through points.
func (r *Renderer) Draw(dst *ebiten.Image, points []Point) {
	reg := r.Region
	vector.DrawFilledRect(dst, reg.X, reg.Y, reg.W, reg.H, backgroundColor, false)
	vector.StrokeRect(dst, reg.X, reg.Y, reg.W, reg.H, 2, borderColor, false)

	oneG := reg.Y + reg.H - float32(clamp01(1/r.Scale.MaxMagnitude))*reg.H
	vector.StrokeLine(dst, reg.X, oneG, reg.X+reg.W, oneG, 1, gridColor, false)

	ebitenutil.DebugPrintAt(dst, fmt.Sprintf("%.0fg", r.Scale.MaxMagnitude), int(reg.X)+4, int(reg.Y)+2)
	ebitenutil.DebugPrintAt(dst, "1g", int(reg.X)+4, int(oneG)-16)

	vs := Layout(points, reg, r.Scale)
	if len(vs) < 2 {
		return
	}

	path := Path(vs)
	r.vertices, r.indices = path.AppendVerticesAndIndicesForStroke(r.vertices[:0], r.indices[:0], &vector.StrokeOptions{
		Width:    r.LineWidth,
		LineJoin: vector.LineJoinRound,
	})
	cr, cg, cb, ca := lineColor.RGBA()
	for i := range r.vertices {
		r.vertices[i].SrcX = 1
		r.vertices[i].SrcY = 1
		r.vertices[i].ColorR = float32(cr) / 0xffff
		r.vertices[i].ColorG = float32(cg) / 0xffff
		r.vertices[i].ColorB = float32(cb) / 0xffff
		r.vertices[i].ColorA = float32(ca) / 0xffff
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	dst.DrawTriangles(r.vertices, r.indices, r.whiteImage, op)
}
