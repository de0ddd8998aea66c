// internal/server/handlers/websocket_test.go

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// dialStatusClient upgrades one server-side connection and hands it back
// wrapped in a StatusClient
func dialStatusClient(t *testing.T) *StatusClient {
	t.Helper()

	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	return &StatusClient{
		conn:    <-accepted,
		send:    make(chan []byte, 1),
		queryID: "q1",
	}
}

func TestCloseConnectionSafeFromBothPumps(t *testing.T) {
	client := dialStatusClient(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.closeConnection()
		}()
	}
	wg.Wait()

	// The connection is down after teardown; a second sequential call is
	// still a no-op
	client.closeConnection()
	require.Error(t, client.conn.WriteMessage(websocket.TextMessage, []byte("x")))
}
