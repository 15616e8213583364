package config

import "time"

const (
	WindowWidth  = 1024
	WindowHeight = 512

	// Shapes
	ShapeSize    = 50
	CircleRadius = ShapeSize / 2

	// Button dimensions
	ButtonWidth  = 150
	ButtonHeight = 40
	ButtonX      = 20
	ButtonY      = 50

	// Graph overlay region
	GraphX      = 20
	GraphY      = WindowHeight - 140
	GraphWidth  = WindowWidth - 40
	GraphHeight = 120

	// Labels
	LabelX       = WindowWidth - 260
	LabelY       = 12
	LabelSpacing = 16
)

// Signal timing and visibility schedule.
const (
	BaseTickPeriod         = 200 * time.Millisecond
	AccelerometerInterval  = 50 * time.Millisecond
	VisibilityModulus      = 20
	SquareHiddenOffset     = 9
	CircleHiddenOffset     = 19
	DefaultMaxGraphPoints  = 200
	DefaultGraphSpan       = 10 * time.Second
	DefaultGraphMagnitude  = 3.0
	DefaultRemoteListen    = ":8765"
	DefaultYuNetModelPath  = "models/face_detection_yunet.onnx"
	TimestampLayout        = "2006-01-02 15:04:05.000"
	DefaultCueFrequencyHz  = 660.0
	DefaultCueDuration     = 80 * time.Millisecond
	DefaultCueSampleRateHz = 44100
)
