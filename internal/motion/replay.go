package motion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrEmptyRecording is returned when a recording holds no readings.
var ErrEmptyRecording = errors.New("recording has no readings")

// Recording is an ordered list of timestamped readings.
type Recording []Sample

// Duration is the elapsed time of the last reading.
func (r Recording) Duration() time.Duration {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1].Elapsed
}

// ParseRecording reads CSV rows of elapsed_ms,x,y,z. A header row is skipped.
// Rows must be in non-decreasing time order.
func ParseRecording(r io.Reader) (Recording, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var rec Recording
	for first := true; ; first = false {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read recording: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(row[0]), "elapsed_ms") {
			continue
		}

		var vals [4]float64
		for i, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("recording line %d column %d: %w", line, i+1, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("recording line %d column %d: %q is not a finite number", line, i+1, field)
			}
			vals[i] = v
		}

		s := Sample{
			Acceleration: Acceleration{X: vals[1], Y: vals[2], Z: vals[3]},
			Elapsed:      time.Duration(vals[0] * float64(time.Millisecond)),
		}
		if n := len(rec); n > 0 && s.Elapsed < rec[n-1].Elapsed {
			return nil, fmt.Errorf("recording line %d: time goes backwards", line)
		}
		rec = append(rec, s)
	}

	if len(rec) == 0 {
		return nil, ErrEmptyRecording
	}
	return rec, nil
}

// LoadRecording parses the recording at path.
func LoadRecording(path string) (Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	return ParseRecording(f)
}

// Replay plays a recording back in real time, looping at the end.
type Replay struct {
	mu    sync.Mutex
	rec   Recording
	start time.Time
	now   func() time.Time
}

// NewReplay starts playback of rec now.
func NewReplay(rec Recording) *Replay {
	return &Replay{rec: rec, start: time.Now(), now: time.Now}
}

// Read returns the latest reading at or before the current playback position.
func (r *Replay) Read() (*Acceleration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rec) == 0 {
		return nil, nil
	}
	pos := r.now().Sub(r.start)
	if total := r.rec.Duration(); total > 0 {
		pos %= total + time.Nanosecond
	}

	i := sort.Search(len(r.rec), func(i int) bool { return r.rec[i].Elapsed > pos }) - 1
	if i < 0 {
		return nil, nil
	}
	a := r.rec[i].Acceleration
	return &a, nil
}

// Restart rewinds playback to the beginning.
func (r *Replay) Restart() {
	r.mu.Lock()
	r.start = r.now()
	r.mu.Unlock()
}
