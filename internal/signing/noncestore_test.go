package signing

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

func openTestNonceStore(t *testing.T, retention time.Duration) *NonceStore {
	t.Helper()
	store, err := OpenNonceStore(filepath.Join(t.TempDir(), "nonces.db"), retention)
	if err != nil {
		t.Fatalf("open nonce store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRememberDetectsReplay(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)

	replayed, err := store.Remember("nonce-1")
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if replayed {
		t.Fatal("first use must not be a replay")
	}

	replayed, err = store.Remember("nonce-1")
	if err != nil {
		t.Fatalf("remember again: %v", err)
	}
	if !replayed {
		t.Fatal("second use must be detected as replay")
	}

	replayed, err = store.Remember("nonce-2")
	if err != nil {
		t.Fatalf("remember other: %v", err)
	}
	if replayed {
		t.Fatal("different nonce must not be a replay")
	}
}

func TestRememberExpiredNonceIsReusable(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)

	if _, err := store.Remember("nonce-old"); err != nil {
		t.Fatalf("remember: %v", err)
	}

	// Advance the clock beyond retention.
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	replayed, err := store.Remember("nonce-old")
	if err != nil {
		t.Fatalf("remember after expiry: %v", err)
	}
	if replayed {
		t.Fatal("expired nonce should be accepted again")
	}
}

func TestSweepRemovesStaleEntries(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)
	for _, nonce := range []string{"a", "b", "c"} {
		if _, err := store.Remember(nonce); err != nil {
			t.Fatalf("remember %s: %v", nonce, err)
		}
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}

	removed, err = store.Sweep()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second sweep removed = %d, want 0", removed)
	}
}

func TestSweepTreatsTruncatedValuesAsStale(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)
	if _, err := store.Remember("good"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(nonceBucket)).Put([]byte("torn"), []byte{1, 2})
	}); err != nil {
		t.Fatalf("plant truncated value: %v", err)
	}

	removed, err := store.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	replayed, err := store.Remember("torn")
	if err != nil {
		t.Fatalf("remember after sweep: %v", err)
	}
	if replayed {
		t.Fatal("swept nonce should be accepted again")
	}
}

func TestRememberTreatsTruncatedValueAsStale(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)
	if err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(nonceBucket)).Put([]byte("torn"), []byte{1, 2})
	}); err != nil {
		t.Fatalf("plant truncated value: %v", err)
	}

	replayed, err := store.Remember("torn")
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if replayed {
		t.Fatal("truncated entry must not read as a replay")
	}

	replayed, err = store.Remember("torn")
	if err != nil {
		t.Fatalf("remember again: %v", err)
	}
	if !replayed {
		t.Fatal("rewritten entry must detect the replay")
	}
}

func TestRunSweeperDeletesExpiredNonces(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)
	for _, nonce := range []string{"a", "b"} {
		if _, err := store.Remember(nonce); err != nil {
			t.Fatalf("remember %s: %v", nonce, err)
		}
	}
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunSweeper(ctx, time.Millisecond, log.New(io.Discard, "", 0))
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		var count int
		if err := store.db.View(func(tx *bbolt.Tx) error {
			count = tx.Bucket([]byte(nonceBucket)).Stats().KeyN
			return nil
		}); err != nil {
			t.Fatalf("count nonces: %v", err)
		}
		if count == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweeper left %d nonces", count)
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRememberValidation(t *testing.T) {
	t.Parallel()

	store := openTestNonceStore(t, time.Hour)
	if _, err := store.Remember(""); err == nil {
		t.Fatal("expected error for empty nonce")
	}
	var nilStore *NonceStore
	if _, err := nilStore.Remember("x"); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestOpenNonceStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := OpenNonceStore("", time.Hour); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := OpenNonceStore(filepath.Join(t.TempDir(), "n.db"), 0); err == nil {
		t.Fatal("expected error for non-positive retention")
	}
}
