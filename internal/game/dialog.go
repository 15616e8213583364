package game

import (
	"errors"

	"github.com/ncruces/zenity"
	"go.uber.org/zap"
)

// errCanceled means the user closed the dialog without picking a file.
var errCanceled = errors.New("dialog canceled")

func selectRecording() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Accelerometer Recording"),
		zenity.FileFilters{{
			Name:     "Recordings",
			Patterns: []string{"*.csv"},
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", errCanceled
	}
	return filename, err
}

// loadRecording asks for a recording and hands it to the opener. The graph is
// cleared so the new source starts from an empty history.
func (g *Game) loadRecording() error {
	path, err := g.pickFile()
	if errors.Is(err, errCanceled) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := g.openRecording(path); err != nil {
		g.log.Warn("load recording failed", zap.String("path", path), zap.Error(err))
		return err
	}
	g.log.Info("recording loaded", zap.String("path", path))
	g.buffer.Reset()
	return nil
}
