// Package memory is the long-term fact store. Facts are durable
// observations about a user (allergies, preferences, past requests)
// extracted from completed turns and merged union-only: merges add
// facts and reinforce existing ones, never delete. Two backends share
// the FactStore interface, an in-process map for tests and single-node
// runs, and an embedded Badger database for persistence.
package memory

import (
	"context"
	"fmt"

	"github.com/yooncheol/bapsang/internal/config"
)

// FactStore persists user facts. Merge must be safe under concurrent
// callers for the same user and must never drop an already stored
// fact.
type FactStore interface {
	// Merge folds facts into the user's record, deduplicating by
	// normalized key and unioning session lists.
	Merge(ctx context.Context, userID string, facts []Fact) error

	// Facts returns the user's stored facts. Unknown users get an
	// empty slice, not an error.
	Facts(ctx context.Context, userID string) ([]Fact, error)

	Close() error
}

// New builds the fact store selected by cfg.
func New(cfg config.MemoryConfig) (FactStore, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewInMemoryStore(), nil
	case "badger":
		return NewBadgerStore(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
