package motion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iburimskiy/sensor-visualization/internal/logging"
)

// RemoteStats reports ingest counters.
type RemoteStats struct {
	Clients  int   `json:"clients"`
	Received int64 `json:"received"`
	Rejected int64 `json:"rejected"`
	Polled   int64 `json:"polled"`
}

// Remote accepts accelerometer readings streamed over a websocket, e.g. from
// a phone, and hands the latest unread one to the sampler.
type Remote struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.Mutex
	latest  *Acceleration
	clients map[uuid.UUID]*websocket.Conn
	stats   RemoteStats
}

// NewRemote creates a websocket ingest endpoint.
func NewRemote(log *zap.Logger) *Remote {
	log = logging.OrNop(log)
	return &Remote{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[uuid.UUID]*websocket.Conn),
	}
}

// Read returns the newest reading received since the previous Read, or nil.
func (r *Remote) Read() (*Acceleration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.latest
	r.latest = nil
	if a != nil {
		r.stats.Polled++
	}
	return a, nil
}

// Stats returns a copy of the ingest counters.
func (r *Remote) Stats() RemoteStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Clients = len(r.clients)
	return s
}

// Router exposes /health, /stats and the /ws ingest endpoint.
func (r *Remote) Router() *mux.Router {
	m := mux.NewRouter()
	m.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	m.HandleFunc("/stats", r.handleStats).Methods(http.MethodGet)
	m.HandleFunc("/ws", r.handleWS)
	return m
}

func (r *Remote) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r.Stats()); err != nil {
		r.log.Warn("encode stats", zap.Error(err))
	}
}

func (r *Remote) handleWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.New()
	r.mu.Lock()
	r.clients[id] = conn
	r.mu.Unlock()
	r.log.Info("motion client connected", zap.Stringer("client", id), zap.String("addr", req.RemoteAddr))

	defer func() {
		r.mu.Lock()
		delete(r.clients, id)
		r.mu.Unlock()
		conn.Close()
		r.log.Info("motion client disconnected", zap.Stringer("client", id))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var a Acceleration
		if err := json.Unmarshal(data, &a); err != nil {
			r.mu.Lock()
			r.stats.Rejected++
			r.mu.Unlock()
			continue
		}
		r.mu.Lock()
		r.latest = &a
		r.stats.Received++
		r.mu.Unlock()
	}
}

// Serve listens on addr until ctx is done.
func (r *Remote) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return r.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then closes open clients.
func (r *Remote) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	r.log.Info("motion ingest listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("motion ingest: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	// hijacked websocket connections are not closed by Shutdown
	r.mu.Lock()
	for _, c := range r.clients {
		c.Close()
	}
	r.mu.Unlock()

	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}
