// Package dedupe keeps merged game histories free of duplicate games.
package dedupe

import (
	"context"
	"sync"

	"github.com/okian/nbaelo/internal/domain/model"
)

// Deduper records seen game keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	hint int
}

// NewInMemoryDeduper creates a map-backed deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.hint)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Merge appends to stored every fetched game whose key (date, home, away)
// is not already present. Stored games always win; the order of both
// inputs is kept. It returns the merged slice and how many games were added.
func Merge(ctx context.Context, stored, fetched []*model.Game) ([]*model.Game, int) {
	d := NewInMemoryDeduper(WithCapacity(len(stored) + len(fetched)))
	merged := make([]*model.Game, 0, len(stored)+len(fetched))

	for _, g := range stored {
		d.SeenAndRecord(ctx, g.Key())
		merged = append(merged, g)
	}

	added := 0
	for _, g := range fetched {
		if d.SeenAndRecord(ctx, g.Key()) {
			continue
		}
		merged = append(merged, g)
		added++
	}
	return merged, added
}
