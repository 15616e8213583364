// Package yunet runs a webcam face tracking session on OpenCV's YuNet
// detector.
package yunet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/iburimskiy/sensor-visualization/internal/face"
	"github.com/iburimskiy/sensor-visualization/internal/logging"
)

// ErrNoCamera is returned when the capture device cannot be opened.
var ErrNoCamera = errors.New("camera not available")

// Config holds detector and capture settings.
type Config struct {
	DeviceID         int
	ModelPath        string  // path to the YuNet ONNX model
	ConfidenceThresh float64 // minimum face score
	InputWidth       int
	InputHeight      int
	Camera           face.Camera
}

// DefaultConfig returns defaults for a laptop webcam.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
		Camera:           face.DefaultCamera(),
	}
}

// Session captures webcam frames and reports at most one face anchor.
type Session struct {
	cfg      Config
	capture  *gocv.VideoCapture
	detector gocv.FaceDetectorYN
	faceID   uuid.UUID
	log      *zap.Logger

	mu     sync.RWMutex
	frame  *face.Frame
	closed bool
}

// Open loads the model and opens the capture device.
func Open(cfg Config, log *zap.Logger) (*Session, error) {
	log = logging.OrNop(log)
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("yunet model: %w", err)
	}

	capture, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrNoCamera, cfg.DeviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %d", ErrNoCamera, cfg.DeviceID)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &Session{
		cfg:      cfg,
		capture:  capture,
		detector: detector,
		faceID:   uuid.New(),
		log:      log,
	}, nil
}

// Run reads frames until ctx is done. Unreadable frames are skipped.
func (s *Session) Run(ctx context.Context) error {
	img := gocv.NewMat()
	defer img.Close()
	faces := gocv.NewMat()
	defer faces.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if ok := s.capture.Read(&img); !ok || img.Empty() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		boxes := s.detect(img, &faces)
		frame := &face.Frame{Timestamp: time.Now()}
		if best := bestBox(boxes); best != nil {
			tr, look := s.cfg.Camera.Pose(*best)
			frame.Anchors = append(frame.Anchors, &face.FaceAnchor{
				ID:          s.faceID,
				Transform:   tr,
				LookAtPoint: look,
			})
		}

		s.mu.Lock()
		s.frame = frame
		s.mu.Unlock()
	}
}

func (s *Session) detect(img gocv.Mat, faces *gocv.Mat) []face.Box {
	w, h := float64(img.Cols()), float64(img.Rows())
	s.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))
	s.detector.Detect(img, faces)

	// YuNet rows: x, y, w, h, right eye, left eye, nose, mouth right, mouth left, score
	boxes := make([]face.Box, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		at := func(c int) float64 { return float64(faces.GetFloatAt(r, c)) }
		boxes = append(boxes, face.Box{
			X:          at(0) / w,
			Y:          at(1) / h,
			W:          at(2) / w,
			H:          at(3) / h,
			RightEye:   [2]float64{at(4) / w, at(5) / h},
			LeftEye:    [2]float64{at(6) / w, at(7) / h},
			Nose:       [2]float64{at(8) / w, at(9) / h},
			Confidence: at(14),
		})
	}
	if len(boxes) > 0 {
		s.log.Debug("yunet detections", zap.Int("faces", len(boxes)))
	}
	return boxes
}

// bestBox keeps one face: highest confidence, weighted towards larger boxes.
func bestBox(boxes []face.Box) *face.Box {
	if len(boxes) == 0 {
		return nil
	}
	maxArea := 0.0
	for _, b := range boxes {
		if a := b.W * b.H; a > maxArea {
			maxArea = a
		}
	}
	best, bestScore := 0, -1.0
	for i, b := range boxes {
		score := b.Confidence*0.7 + (b.W*b.H/maxArea)*0.3
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return &boxes[best]
}

func (s *Session) CurrentFrame() *face.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Close releases the detector and the capture device.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.detector.Close()
	return s.capture.Close()
}
