package gateway

import (
	"path/filepath"
	"sync"
	"testing"

	"tengen/gateway/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdmin     = "0xadmin"
	testNode      = "0xbridge"
	testRequester = "0xuser1"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gateway_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

// recordingEmitter captures emitted events for assertions
type recordingEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	eventType string
	payload   interface{}
}

func (r *recordingEmitter) Emit(eventType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emittedEvent{eventType: eventType, payload: payload})
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.eventType
	}
	return types
}

// newTestGateway returns a gateway with one authorized node and a 100 unit
// minimum fee
func newTestGateway(t *testing.T) (*Gateway, *recordingEmitter) {
	t.Helper()

	db := newTestDB(t)
	emitter := &recordingEmitter{}
	g := New(db, testAdmin, emitter)

	require.NoError(t, g.UpdateMinFee(testAdmin, 100))
	require.NoError(t, g.AuthorizeComputeNode(testAdmin, testNode))
	return g, emitter
}
