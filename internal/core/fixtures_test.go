package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JonMunkholm/runplan/internal/grid"
	"github.com/JonMunkholm/runplan/internal/persist"
)

// planText returns a standard-layout plan with three weeks and a filler row.
func planText() string {
	g := grid.Grid{}
	for i := 0; i < grid.HeaderRow; i++ {
		g = append(g, []string{"Preamble", "", ""})
	}
	g = append(g, []string{"", "", "", "Weeks", "Fraction", "Q1", "Q1 Notes", "Q2", "Q2 Notes", "Easy", "Actual", "Diff", "Notes"})
	g = append(g,
		[]string{"", "", "", "3", "0.70", "3 x 2k", "", "10 Ez", "", "30", "", "", ""},
		[]string{"", "", "", "2", "0.85", "400m + 3k", "", "8 Mp", "", "35", "", "", ""},
		[]string{"", "", "", "1", "1.00", "Race 42.2k", "", "", "", "0", "", "", ""},
		[]string{"", "", "", "0", "", "", "", "", "", "", "", "", ""},
	)
	return grid.Serialize(g)
}

// memStore is an in-memory persist.Store.
type memStore struct {
	mu      sync.Mutex
	text    string
	saves   []string
	loadErr error
	saveErr error
	block   chan struct{} // when set, Save waits for it to be closed
	onLoad  func()        // when set, runs after Load has read the text
}

func newMemStore(text string) *memStore {
	return &memStore{text: text}
}

func (m *memStore) Name() string { return "memory" }

func (m *memStore) Load(ctx context.Context) (persist.Content, error) {
	m.mu.Lock()
	text, loadErr, onLoad := m.text, m.loadErr, m.onLoad
	m.mu.Unlock()
	if loadErr != nil {
		return persist.Content{}, loadErr
	}
	if onLoad != nil {
		onLoad()
	}
	return persist.Content{Text: text, Revision: persist.Revision(text)}, nil
}

func (m *memStore) Save(ctx context.Context, text string) error {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.text = text
	m.saves = append(m.saves, text)
	return nil
}

func (m *memStore) setText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *memStore) lastSave() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return ""
	}
	return m.saves[len(m.saves)-1]
}

// revStore rejects saves made against a stale revision the way the GitHub
// store does. Only Load refreshes the revision it saves against.
type revStore struct {
	*memStore
	known string
}

func (r *revStore) Load(ctx context.Context) (persist.Content, error) {
	c, err := r.memStore.Load(ctx)
	if err == nil {
		r.known = c.Revision
	}
	return c, err
}

func (r *revStore) Save(ctx context.Context, text string) error {
	r.mu.Lock()
	current := persist.Revision(r.text)
	r.mu.Unlock()
	if current != r.known {
		return fmt.Errorf("%w: is at %s but expected %s", persist.ErrConflict, current, r.known)
	}
	if err := r.memStore.Save(ctx, text); err != nil {
		return err
	}
	r.known = persist.Revision(text)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

// replaceCell returns text with the first occurrence of old replaced.
func replaceCell(text, from, to string) string {
	return strings.Replace(text, from, to, 1)
}
