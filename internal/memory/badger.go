package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/yooncheol/bapsang/internal/logging"
)

// maxMergeRetries bounds transaction retries when concurrent merges
// for the same user conflict.
const maxMergeRetries = 5

// BadgerStore persists facts in an embedded Badger database, one
// record per user under facts/<userID>. Merges are read-merge-write
// inside a single transaction; Badger's conflict detection serializes
// concurrent writers and conflicted merges retry.
type BadgerStore struct {
	db     *badger.DB
	logger *logging.Logger
}

// NewBadgerStore opens the database at path. An empty path opens an
// in-memory database, which keeps tests off the disk.
func NewBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create memory store directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	return &BadgerStore{
		db:     db,
		logger: logging.GetLogger("memory.badger"),
	}, nil
}

func factKeyBytes(userID string) []byte {
	return []byte("facts/" + userID)
}

// Merge folds facts into the user's stored record.
func (s *BadgerStore) Merge(ctx context.Context, userID string, facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < maxMergeRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = s.db.Update(func(txn *badger.Txn) error {
			existing, err := readFacts(txn, userID)
			if err != nil {
				return err
			}
			merged := mergeFacts(existing, facts)
			buf, err := json.Marshal(merged)
			if err != nil {
				return fmt.Errorf("encode facts for %s: %w", userID, err)
			}
			return txn.Set(factKeyBytes(userID), buf)
		})
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, badger.ErrConflict) {
			return lastErr
		}
		s.logger.Debug("merge conflict for user %s, retrying (%d)", userID, attempt+1)
	}

	return fmt.Errorf("merge facts for %s: %w", userID, lastErr)
}

// Facts returns the user's stored facts.
func (s *BadgerStore) Facts(ctx context.Context, userID string) ([]Fact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var facts []Fact
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		facts, err = readFacts(txn, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if facts == nil {
		facts = []Fact{}
	}
	return facts, nil
}

func readFacts(txn *badger.Txn, userID string) ([]Fact, error) {
	item, err := txn.Get(factKeyBytes(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read facts for %s: %w", userID, err)
	}

	var facts []Fact
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &facts)
	}); err != nil {
		return nil, fmt.Errorf("decode facts for %s: %w", userID, err)
	}
	return facts, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
