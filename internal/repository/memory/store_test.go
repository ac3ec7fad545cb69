package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore/recordstoretest"
)

func TestStoreContract(t *testing.T) {
	recordstoretest.Run(t, func(*testing.T) (recordstore.Store, recordstore.Store) {
		st := NewStore()
		return st, st
	})
}

func TestRunAtomic_DeletedReadConflicts(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	id, err := st.Insert(ctx, "stock", recordstore.Fields{"quantity": 1})
	require.NoError(t, err)

	err = st.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		if _, err := tx.Get(ctx, "stock", id); err != nil {
			return err
		}
		require.NoError(t, st.Delete(ctx, "stock", id))
		_, err := tx.Insert(ctx, "stock", recordstore.Fields{"quantity": 1})
		return err
	})
	require.ErrorIs(t, err, recordstore.ErrConflict)

	docs, err := st.Query(ctx, "stock")
	require.NoError(t, err)
	assert.Empty(t, docs, "a conflicting unit writes nothing")
}

func TestRunAtomic_AbsentReadConflictsWithConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	err := st.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		_, err := tx.Get(ctx, "claims", "key")
		require.ErrorIs(t, err, recordstore.ErrNotFound)

		require.NoError(t, st.RunAtomic(ctx, func(ctx context.Context, other recordstore.Tx) error {
			return other.Put(ctx, "claims", "key", recordstore.Fields{"recordId": "b"})
		}))
		return tx.Put(ctx, "claims", "key", recordstore.Fields{"recordId": "a"})
	})
	require.ErrorIs(t, err, recordstore.ErrConflict)

	doc, err := st.Get(ctx, "claims", "key")
	require.NoError(t, err)
	assert.Equal(t, "b", doc.Fields["recordId"])
}

func TestRunAtomic_ReadsOwnWrites(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	err := st.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		id, err := tx.Insert(ctx, "stock", recordstore.Fields{"quantity": 2})
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, "stock", id, recordstore.Fields{"quantity": 3}); err != nil {
			return err
		}
		doc, err := tx.Get(ctx, "stock", id)
		if err != nil {
			return err
		}
		assert.Equal(t, 3, doc.Fields["quantity"])

		_, err = st.Get(ctx, "stock", id)
		assert.ErrorIs(t, err, recordstore.ErrNotFound, "staged writes are invisible outside the unit")
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	fields := recordstore.Fields{"name": "Gloves"}
	id, err := st.Insert(ctx, "stock", fields)
	require.NoError(t, err)
	fields["name"] = "changed"

	doc, err := st.Get(ctx, "stock", id)
	require.NoError(t, err)
	assert.Equal(t, "Gloves", doc.Fields["name"])

	doc.Fields["name"] = "changed"
	again, err := st.Get(ctx, "stock", id)
	require.NoError(t, err)
	assert.Equal(t, "Gloves", again.Fields["name"])
}

func TestWithClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	st := NewStore(WithClock(func() time.Time { return at }))

	id, err := st.Insert(context.Background(), "stock", recordstore.Fields{})
	require.NoError(t, err)
	doc, err := st.Get(context.Background(), "stock", id)
	require.NoError(t, err)
	assert.Equal(t, at, doc.CreatedAt)
	assert.Equal(t, at, doc.UpdatedAt)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Query(ctx, "stock")
	assert.ErrorIs(t, err, context.Canceled)
}
