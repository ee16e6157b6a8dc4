package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestStore_Update_Times_Out_Instead_Of_Hanging(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	store := NewStore(db, 20*time.Millisecond)

	// Given a transaction stalled past the store timeout
	release := make(chan struct{})
	t.Cleanup(func() {
		// Unblock the stalled transaction before the database closes.
		close(release)
		time.Sleep(50 * time.Millisecond)
	})
	err = store.Update(context.Background(), func(txn *badger.Txn) error {
		<-release
		return nil
	})

	// Then the call returns a deadline error without waiting for the stall
	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestStore_View_Honors_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.View(ctx, func(txn *badger.Txn) error { return nil })
	req.ErrorIs(err, context.Canceled)
}

func TestStore_Update_Passes_Through_Normal_Writes(t *testing.T) {
	req := require.New(t)
	store := openTestStore(t)

	err := store.Update(context.Background(), func(txn *badger.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	})
	req.NoError(err)

	var value []byte
	err = store.View(context.Background(), func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("k"))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			value = append([]byte{}, v...)
			return nil
		})
	})
	req.NoError(err)
	req.Equal([]byte("v"), value)
}
