package signing

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const nonceBucket = "nonces"

// NonceStore remembers recently seen request nonces so a captured signature
// cannot be replayed inside the timestamp skew window. Entries are persisted
// in BoltDB; RunSweeper deletes them as they age past the retention period.
type NonceStore struct {
	db        *bbolt.DB
	retention time.Duration
	now       func() time.Time
}

// OpenNonceStore opens a BoltDB-backed nonce store at the provided path.
// Retention should comfortably exceed the signature skew window.
func OpenNonceStore(path string, retention time.Duration) (*NonceStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("nonce store path is required")
	}
	if retention <= 0 {
		return nil, fmt.Errorf("nonce retention must be positive")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open nonce db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(nonceBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure nonce bucket: %w", err)
	}

	return &NonceStore{db: db, retention: retention, now: time.Now}, nil
}

// Close closes the underlying BoltDB database.
func (s *NonceStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Remember records a nonce and reports whether it was already seen within
// the retention period. The check and the write happen in one transaction
// so concurrent replays cannot both pass.
func (s *NonceStore) Remember(nonce string) (replayed bool, err error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("nonce store is not configured")
	}
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return false, fmt.Errorf("nonce is required")
	}

	now := s.now()
	cutoff := now.Add(-s.retention).UnixMilli()

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(nonceBucket))
		if seenAt, ok := decodeSeenAt(bucket.Get([]byte(nonce))); ok && seenAt >= cutoff {
			replayed = true
			return nil
		}

		var value [8]byte
		binary.BigEndian.PutUint64(value[:], uint64(now.UnixMilli()))
		return bucket.Put([]byte(nonce), value[:])
	})
	if err != nil {
		return false, fmt.Errorf("remember nonce: %w", err)
	}
	return replayed, nil
}

// Sweep removes nonces older than the retention period and returns how many
// entries were deleted. Intended to run periodically from the service loop.
func (s *NonceStore) Sweep() (removed int, err error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("nonce store is not configured")
	}
	cutoff := s.now().Add(-s.retention).UnixMilli()

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(nonceBucket))
		cursor := bucket.Cursor()
		var stale [][]byte
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			if seenAt, ok := decodeSeenAt(value); !ok || seenAt < cutoff {
				stale = append(stale, append([]byte(nil), key...))
			}
		}
		for _, key := range stale {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweep nonces: %w", err)
	}
	return removed, nil
}

// decodeSeenAt reads a stored timestamp. Short or truncated values are
// reported as invalid so they read as stale instead of panicking.
func decodeSeenAt(value []byte) (int64, bool) {
	if len(value) < 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(value)), true
}

// RunSweeper deletes expired nonces every interval until ctx ends. Run it in
// its own goroutine next to the server loop.
func (s *NonceStore) RunSweeper(ctx context.Context, interval time.Duration, logger *log.Logger) {
	if s == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep()
			if err != nil {
				logger.Printf("sweep nonces: %v", err)
				continue
			}
			if removed > 0 {
				logger.Printf("swept expired nonces removed=%d", removed)
			}
		}
	}
}
