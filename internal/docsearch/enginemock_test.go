package docsearch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mcpcontext/docsearch/internal/indexing"
)

// mockEngine is a simple in-memory mock of the Engine interface for testing
type mockEngine struct {
	id          int
	docCount    uint64
	searchError   error
	docCountError error
	closeError    error
	closed      atomic.Bool
	searches    atomic.Int64

	// block, when set, holds Search until it is closed
	block chan struct{}
}

// newMockEngine creates a new mock engine with the given ID
func newMockEngine(id int) *mockEngine {
	return &mockEngine{
		id:       id,
		docCount: 100, // Default doc count
	}
}

func (m *mockEngine) Search(ctx context.Context, q indexing.Query) ([]indexing.Hit, error) {
	m.searches.Add(1)
	if m.block != nil {
		<-m.block
	}
	if m.closed.Load() {
		return nil, fmt.Errorf("engine %d closed", m.id)
	}
	if m.searchError != nil {
		return nil, m.searchError
	}
	doc := indexing.NewDocument(fmt.Sprintf("engine-%d.md", m.id), q.Text)
	return []indexing.Hit{{Document: doc, Score: 1}}, nil
}

func (m *mockEngine) DocCount() (uint64, error) {
	if m.closed.Load() {
		return 0, fmt.Errorf("engine closed")
	}
	if m.docCountError != nil {
		return 0, m.docCountError
	}
	return m.docCount, nil
}

func (m *mockEngine) Close() error {
	if m.closed.Load() {
		return fmt.Errorf("already closed")
	}
	m.closed.Store(true)
	return m.closeError
}

// IsClosed returns true if the engine has been closed
func (m *mockEngine) IsClosed() bool {
	return m.closed.Load()
}
