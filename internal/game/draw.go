package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/sensor-visualization/internal/config"
	"github.com/iburimskiy/sensor-visualization/internal/graph"
)

var (
	backgroundColor = color.RGBA{R: 12, G: 14, B: 22, A: 255}
	squareColor     = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	circleColor     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	g.drawShapes(screen)

	if g.openRecording != nil {
		g.drawButton(screen)
	}

	if g.renderer == nil {
		g.renderer = graph.NewRenderer(graph.Region{
			X: config.GraphX,
			Y: config.GraphY,
			W: config.GraphWidth,
			H: config.GraphHeight,
		}, g.scale)
	}
	g.renderer.Draw(screen, g.buffer.Points())
	ebitenutil.DebugPrintAt(screen, g.GraphHeader(), config.GraphX+40, config.GraphY+2)

	if g.labels {
		for i, l := range g.Labels() {
			ebitenutil.DebugPrintAt(screen, l, config.LabelX, config.LabelY+i*config.LabelSpacing)
		}
	}

	status := "Space: pause graph, R: reset graph, Esc/Q: quit"
	if g.paused {
		status = "Graph paused - Space to resume"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

// drawShapes paints the square and the circle, both centred.
func (g *Game) drawShapes(screen *ebiten.Image) {
	cx := float32(config.WindowWidth) / 2
	cy := float32(config.WindowHeight) / 2

	if g.squareVisible {
		half := float32(config.ShapeSize) / 2
		vector.DrawFilledRect(screen, cx-half, cy-half, config.ShapeSize, config.ShapeSize, squareColor, false)
	}
	if g.circleVisible {
		vector.DrawFilledCircle(screen, cx, cy, config.CircleRadius, circleColor, true)
	}
}

// Labels returns the overlay text: both shape states, the latest magnitude
// and the face tracking status.
func (g *Game) Labels() []string {
	shown := func(v bool) string {
		if v {
			return "shown"
		}
		return "hidden"
	}

	accel := "accel: waiting"
	if g.sampled {
		accel = fmt.Sprintf("accel: %.3fg @ %s", g.latest.Magnitude(), formatDuration(g.latest.Elapsed))
	}

	faceLabel := "face: none"
	if g.FaceTracked() {
		p := g.lastFace.Transform.Position()
		faceLabel = fmt.Sprintf("face: %.2fm away", -p.Z)
	}

	return []string{
		fmt.Sprintf("square: %s", shown(g.squareVisible)),
		fmt.Sprintf("circle: %s (tick %d)", shown(g.circleVisible), g.lastTick),
		accel,
		faceLabel,
	}
}

// GraphHeader describes the history policy and how much of it is filled.
func (g *Game) GraphHeader() string {
	if limit := g.buffer.Cap(); limit > 0 {
		return fmt.Sprintf("last %d/%d samples", g.buffer.Len(), limit)
	}
	return fmt.Sprintf("all %d samples", g.buffer.Len())
}

func (g *Game) drawButton(screen *ebiten.Image) {
	var bgColor color.Color
	if g.buttonPressed {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	} else if g.buttonHovered {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255} // Normal
	}

	vector.DrawFilledRect(screen, config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight, bgColor, false)

	borderColor := color.RGBA{R: 150, G: 170, B: 200, A: 255}
	vector.StrokeRect(screen, config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight, 2, borderColor, false)

	text := "Load Recording"
	textWidth := len(text) * 6 // debug font glyph width
	textX := config.ButtonX + (config.ButtonWidth-textWidth)/2
	textY := config.ButtonY + (config.ButtonHeight-16)/2
	ebitenutil.DebugPrintAt(screen, text, textX, textY)
}
