package signal

import (
	"context"
	"time"
)

// Ticker emits a monotonically increasing tick counter, starting at 0, once
// per period.
type Ticker struct {
	period time.Duration
	relay  *Relay[int64]
}

// NewTicker creates a base timer. It does nothing until Run is called.
func NewTicker(period time.Duration) *Ticker {
	return &Ticker{period: period, relay: NewRelay[int64]()}
}

// Ticks subscribes to the tick stream.
func (t *Ticker) Ticks(buffer int) (<-chan int64, func()) {
	return t.relay.Subscribe(buffer)
}

// Period returns the tick period.
func (t *Ticker) Period() time.Duration { return t.period }

// Run publishes ticks until ctx is done, then closes all subscriptions. The
// first tick fires one period after Run starts.
func (t *Ticker) Run(ctx context.Context) {
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	defer t.relay.Close()

	var n int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.relay.Publish(n)
			n++
		}
	}
}
