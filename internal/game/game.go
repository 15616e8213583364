package game

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/config"
	"github.com/iburimskiy/sensor-visualization/internal/cue"
	"github.com/iburimskiy/sensor-visualization/internal/face"
	"github.com/iburimskiy/sensor-visualization/internal/graph"
	"github.com/iburimskiy/sensor-visualization/internal/logging"
	"github.com/iburimskiy/sensor-visualization/internal/motion"
	"github.com/iburimskiy/sensor-visualization/internal/signal"
)

// faceTimeout is how long a face stays "tracked" after its last sample.
const faceTimeout = time.Second

// Inputs are the streams the presentation surface reacts to. Any of them may
// be nil.
type Inputs struct {
	Visibility <-chan signal.Visibility
	Samples    <-chan motion.Sample
	Faces      <-chan face.Sample
}

// RecordingOpener is called with the path picked in the Load Recording dialog.
type RecordingOpener func(path string) error

// Game is the ebiten presentation surface: two shapes, a label overlay and
// the magnitude graph.
type Game struct {
	in     Inputs
	log    *zap.Logger
	cues   cue.Player
	labels bool
	now    func() time.Time

	// shapes
	squareVisible bool
	circleVisible bool
	lastTick      int64

	// graph
	buffer   *graph.Buffer
	scale    graph.Scale
	renderer *graph.Renderer
	latest   motion.Sample
	sampled  bool

	// face
	lastFace   face.Sample
	lastFaceAt time.Time

	// load recording button
	openRecording RecordingOpener
	rewind        func()
	pickFile      func() (string, error)
	buttonHovered bool
	buttonPressed bool

	// input edge detection
	prevKey map[ebiten.Key]bool

	paused  bool
	lastErr error
}

// Options configure a Game.
type Options struct {
	Graph         config.GraphConfig
	Labels        bool
	Cues          cue.Player
	OpenRecording RecordingOpener
	Rewind        func()
	Log           *zap.Logger
}

// New creates the presentation surface. Shapes start visible.
func New(in Inputs, opts Options) *Game {
	if opts.Cues == nil {
		opts.Cues = cue.Mute{}
	}
	return &Game{
		in:            in,
		log:           logging.OrNop(opts.Log),
		cues:          opts.Cues,
		labels:        opts.Labels,
		now:           time.Now,
		squareVisible: true,
		circleVisible: true,
		buffer:        graph.NewBuffer(opts.Graph.MaxPoints),
		scale:         graph.Scale{Span: opts.Graph.Span, MaxMagnitude: opts.Graph.MaxMagnitude},
		openRecording: opts.OpenRecording,
		rewind:        opts.Rewind,
		pickFile:      selectRecording,
		prevKey:       map[ebiten.Key]bool{},
	}
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	mouseX, mouseY := ebiten.CursorPosition()
	g.buttonHovered = mouseX >= config.ButtonX && mouseX <= config.ButtonX+config.ButtonWidth &&
		mouseY >= config.ButtonY && mouseY <= config.ButtonY+config.ButtonHeight

	if g.openRecording != nil {
		if g.buttonHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.buttonPressed = true
		}
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			if g.buttonPressed && g.buttonHovered {
				g.lastErr = g.loadRecording()
			}
			g.buttonPressed = false
		}
	}

	if justPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if justPressed(ebiten.KeyR) {
		g.Reset()
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.Step()
	return nil
}

// Reset clears the graph and rewinds a replayed recording to its start.
func (g *Game) Reset() {
	g.buffer.Reset()
	if g.rewind != nil {
		g.rewind()
	}
}

// Step drains every input without blocking and applies it to view state.
func (g *Game) Step() {
	if g.in.Visibility != nil {
		if !signal.Drain(g.in.Visibility, g.applyVisibility) {
			g.in.Visibility = nil
		}
	}
	if g.in.Samples != nil {
		if !signal.Drain(g.in.Samples, g.applySample) {
			g.in.Samples = nil
		}
	}
	if g.in.Faces != nil {
		if !signal.Drain(g.in.Faces, g.applyFace) {
			g.in.Faces = nil
		}
	}
}

func (g *Game) applyVisibility(v signal.Visibility) {
	g.lastTick = v.Tick
	switch v.Shape {
	case signal.Square:
		g.squareVisible = v.Visible
	case signal.Circle:
		g.circleVisible = v.Visible
	default:
		return
	}
	if !v.Visible {
		g.cues.Play(string(v.Shape))
	}
}

func (g *Game) applySample(s motion.Sample) {
	g.latest = s
	g.sampled = true
	if g.paused {
		return
	}
	g.buffer.Append(graph.Point{Elapsed: s.Elapsed, Magnitude: s.Magnitude()})
}

func (g *Game) applyFace(s face.Sample) {
	g.lastFace = s
	g.lastFaceAt = g.now()
}

// FaceTracked reports whether a face sample arrived recently.
func (g *Game) FaceTracked() bool {
	return !g.lastFaceAt.IsZero() && g.now().Sub(g.lastFaceAt) < faceTimeout
}

// SquareVisible reports whether the square is shown.
func (g *Game) SquareVisible() bool { return g.squareVisible }

// CircleVisible reports whether the circle is shown.
func (g *Game) CircleVisible() bool { return g.circleVisible }

// Points returns the graph history, oldest first.
func (g *Game) Points() []graph.Point { return g.buffer.Points() }

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}
