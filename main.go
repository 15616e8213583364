package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/app"
	"github.com/iburimskiy/sensor-visualization/internal/config"
	"github.com/iburimskiy/sensor-visualization/internal/face"
	"github.com/iburimskiy/sensor-visualization/internal/face/yunet"
	"github.com/iburimskiy/sensor-visualization/internal/game"
	"github.com/iburimskiy/sensor-visualization/internal/logging"
)

var (
	configPath   string
	motionSource string
	faceSource   string
	recording    string
	listenAddr   string
	logLevel     string
	maxPoints    int
	audioCues    bool
	noLabels     bool
)

var rootCmd = &cobra.Command{
	Use:   "sensorviz",
	Short: "Blinking shapes over a live accelerometer graph",
	Long: `sensorviz shows a square and a circle that hide on a fixed 200ms tick
schedule, plots accelerometer magnitude as a scrolling graph, and logs face
tracking poses.

Motion sources: sim, replay (CSV recording), remote (websocket ingest).
Face sources: sim, camera (YuNet on the default webcam), none.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "sensorviz.yaml", "YAML config file")
	f.StringVar(&motionSource, "motion-source", "", "accelerometer source: sim, replay, remote")
	f.StringVar(&faceSource, "face-source", "", "face tracking source: sim, camera, none")
	f.StringVar(&recording, "recording", "", "CSV recording to replay (implies --motion-source=replay)")
	f.StringVar(&listenAddr, "listen", "", "address for the remote motion ingest server")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn, error")
	f.IntVar(&maxPoints, "max-points", -1, "graph history cap, 0 keeps every sample")
	f.BoolVar(&audioCues, "audio-cues", false, "beep when a shape hides")
	f.BoolVar(&noLabels, "no-labels", false, "hide the text overlay")
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("motion-source") {
		cfg.Motion.Source = motionSource
	}
	if flags.Changed("face-source") {
		cfg.Face.Source = faceSource
	}
	if flags.Changed("recording") {
		cfg.Motion.RecordingPath = recording
		cfg.Motion.Source = config.SourceReplay
	}
	if flags.Changed("listen") {
		cfg.Motion.Listen = listenAddr
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("max-points") {
		cfg.Graph.MaxPoints = maxPoints
	}
	if flags.Changed("audio-cues") {
		cfg.Display.AudioCues = audioCues
	}
	if flags.Changed("no-labels") {
		cfg.Display.Labels = !noLabels
	}
	return cfg.Validate()
}

func openCamera(fc config.FaceConfig, log *zap.Logger) (face.Session, error) {
	cfg := yunet.DefaultConfig()
	cfg.DeviceID = fc.DeviceID
	cfg.ModelPath = fc.ModelPath
	cfg.ConfidenceThresh = fc.Confidence
	return yunet.Open(cfg, log)
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, app.Options{OpenCamera: openCamera, Log: logger})
	if err != nil {
		return err
	}
	defer a.Close()

	g := game.New(a.Inputs(), game.Options{
		Graph:         cfg.Graph,
		Labels:        cfg.Display.Labels,
		Cues:          a.Cues(),
		OpenRecording: a.OpenRecording,
		Rewind:        a.Rewind,
		Log:           logger.Named("game").With(zap.Stringer("session", a.SessionID())),
	})

	a.Start(context.Background())

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Sensor Visualizer - Load Recording to replay, Space: pause graph, Esc/Q: Quit")

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
