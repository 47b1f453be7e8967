package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// A gateway whose event stream keeps dropping must not leave the bridge
// without a subscription; it retries on the poll tick.
func TestRunRestoresEventStream(t *testing.T) {
	var upgrades int64
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&upgrades, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	})
	mux.HandleFunc("/api/v1/jobs/pending", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"jobs": []Job{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := &Config{
		Node:    NodeConfig{Address: "0xbridge"},
		Gateway: GatewayConfig{URL: srv.URL},
		Poll:    PollConfig{IntervalSeconds: 1, BatchSize: 10},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err := New(cfg).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Initial subscription plus at least one retry after the drop
	assert.GreaterOrEqual(t, atomic.LoadInt64(&upgrades), int64(2))
}
