package motion

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRemote(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestRemote_ReadReturnsLatestUnread(t *testing.T) {
	r := NewRemote(nil)
	srv := httptest.NewServer(r.Router())
	defer srv.Close()

	conn := dialRemote(t, srv)
	defer conn.Close()

	a, err := r.Read()
	require.NoError(t, err)
	assert.Nil(t, a, "no data before the first message")

	require.NoError(t, conn.WriteJSON(Acceleration{X: 0.1, Y: 0.2, Z: -1}))
	require.NoError(t, conn.WriteJSON(Acceleration{X: 0.3, Y: 0.2, Z: -1}))

	require.Eventually(t, func() bool { return r.Stats().Received == 2 }, time.Second, 5*time.Millisecond)

	a, err = r.Read()
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 0.3, a.X)

	a, _ = r.Read()
	assert.Nil(t, a, "a reading is handed out once")
}

func TestRemote_RejectsMalformedMessages(t *testing.T) {
	r := NewRemote(nil)
	srv := httptest.NewServer(r.Router())
	defer srv.Close()

	conn := dialRemote(t, srv)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.Eventually(t, func() bool { return r.Stats().Rejected == 1 }, time.Second, 5*time.Millisecond)

	a, _ := r.Read()
	assert.Nil(t, a)
}

func TestRemote_HealthAndStats(t *testing.T) {
	r := NewRemote(nil)
	srv := httptest.NewServer(r.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK\n", string(body))

	conn := dialRemote(t, srv)
	require.Eventually(t, func() bool { return r.Stats().Clients == 1 }, time.Second, 5*time.Millisecond)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	var stats RemoteStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1, stats.Clients)

	conn.Close()
	require.Eventually(t, func() bool { return r.Stats().Clients == 0 }, time.Second, 5*time.Millisecond)
}

func TestRemote_ServeListenerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	r := NewRemote(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.ServeListener(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	defer conn.Close()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	// the server closed the client side
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
