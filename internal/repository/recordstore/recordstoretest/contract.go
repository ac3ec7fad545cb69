// Package recordstoretest holds behaviour checks every recordstore.Store
// implementation must pass.
package recordstoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

const collection = "items"

// Factory opens a fresh, empty store. Outside is a second handle onto the same
// data used to write concurrently with an open transaction; it may be Store
// itself when the implementation allows that.
type Factory func(t *testing.T) (st, outside recordstore.Store)

// Run exercises newStore against the shared store contract. Each subtest gets
// a fresh store.
func Run(t *testing.T, newStore Factory) {
	open := func(t *testing.T) recordstore.Store {
		st, _ := newStore(t)
		return st
	}
	t.Run("crud", func(t *testing.T) { testCRUD(t, open(t)) })
	t.Run("query", func(t *testing.T) { testQuery(t, open(t)) })
	t.Run("atomic commit", func(t *testing.T) { testAtomicCommit(t, open(t)) })
	t.Run("atomic rollback", func(t *testing.T) { testAtomicRollback(t, open(t)) })
	t.Run("stale read conflicts", func(t *testing.T) {
		st, outside := newStore(t)
		testStaleRead(t, st, outside)
	})
	t.Run("put upserts", func(t *testing.T) { testPut(t, open(t)) })
}

func testCRUD(t *testing.T, st recordstore.Store) {
	ctx := context.Background()

	id, err := st.Insert(ctx, collection, recordstore.Fields{"name": "Gloves", "quantity": 3})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := st.Get(ctx, collection, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Gloves", doc.Fields["name"])
	assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 3))
	assert.False(t, doc.CreatedAt.IsZero())

	require.NoError(t, st.Update(ctx, collection, id, recordstore.Fields{"quantity": 9}))
	doc, err = st.Get(ctx, collection, id)
	require.NoError(t, err)
	assert.Equal(t, "Gloves", doc.Fields["name"], "update keeps untouched fields")
	assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 9))
	assert.False(t, doc.UpdatedAt.Before(doc.CreatedAt))

	require.NoError(t, st.Delete(ctx, collection, id))
	_, err = st.Get(ctx, collection, id)
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, collection, id), recordstore.ErrNotFound)
	assert.ErrorIs(t, st.Update(ctx, collection, id, recordstore.Fields{"quantity": 1}), recordstore.ErrNotFound)

	_, err = st.Get(ctx, "other", id)
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
}

type label string

func testQuery(t *testing.T, st recordstore.Store) {
	ctx := context.Background()

	first, err := st.Insert(ctx, collection, recordstore.Fields{"kind": "consumable", "name": "Gloves", "set": 1})
	require.NoError(t, err)
	_, err = st.Insert(ctx, collection, recordstore.Fields{"kind": "fixture", "name": "Tent", "set": 2})
	require.NoError(t, err)
	third, err := st.Insert(ctx, collection, recordstore.Fields{"kind": "consumable", "name": "Masks", "set": 3})
	require.NoError(t, err)
	_, err = st.Insert(ctx, "other", recordstore.Fields{"kind": "consumable"})
	require.NoError(t, err)

	docs, err := st.Query(ctx, collection)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	docs, err = st.Query(ctx, collection, recordstore.Eq("kind", label("consumable")))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].ID, "results keep insertion order")
	assert.Equal(t, third, docs[1].ID)

	docs, err = st.Query(ctx, collection, recordstore.Eq("kind", "consumable"), recordstore.Eq("set", 3))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Masks", docs[0].Fields["name"])

	docs, err = st.Query(ctx, collection, recordstore.Eq("name", "gloves"))
	require.NoError(t, err)
	assert.Empty(t, docs, "equality is case-sensitive")
}

func testAtomicCommit(t *testing.T, st recordstore.Store) {
	ctx := context.Background()

	src, err := st.Insert(ctx, collection, recordstore.Fields{"quantity": 10})
	require.NoError(t, err)

	var created string
	err = st.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		doc, err := tx.Get(ctx, collection, src)
		if err != nil {
			return err
		}
		assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 10))
		if err := tx.Update(ctx, collection, src, recordstore.Fields{"quantity": 6}); err != nil {
			return err
		}
		created, err = tx.Insert(ctx, collection, recordstore.Fields{"quantity": 4})
		return err
	})
	require.NoError(t, err)

	doc, err := st.Get(ctx, collection, src)
	require.NoError(t, err)
	assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 6))
	doc, err = st.Get(ctx, collection, created)
	require.NoError(t, err)
	assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 4))
}

func testAtomicRollback(t *testing.T, st recordstore.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	src, err := st.Insert(ctx, collection, recordstore.Fields{"quantity": 10})
	require.NoError(t, err)

	var created string
	err = st.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		if err := tx.Update(ctx, collection, src, recordstore.Fields{"quantity": 0}); err != nil {
			return err
		}
		created, err = tx.Insert(ctx, collection, recordstore.Fields{"quantity": 10})
		if err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	doc, err := st.Get(ctx, collection, src)
	require.NoError(t, err)
	assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 10))
	_, err = st.Get(ctx, collection, created)
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
}

// testStaleRead changes a document between the transactional read and the
// write; the unit must not commit over it.
func testStaleRead(t *testing.T, st, outside recordstore.Store) {
	ctx := context.Background()

	id, err := st.Insert(ctx, collection, recordstore.Fields{"quantity": 5})
	require.NoError(t, err)

	err = st.RunAtomic(ctx, func(txCtx context.Context, tx recordstore.Tx) error {
		if _, err := tx.Get(txCtx, collection, id); err != nil {
			return err
		}
		// ctx, not txCtx: some stores bind the transaction to its context
		if err := outside.Update(ctx, collection, id, recordstore.Fields{"quantity": 6}); err != nil {
			return err
		}
		return tx.Update(txCtx, collection, id, recordstore.Fields{"quantity": 0})
	})
	require.ErrorIs(t, err, recordstore.ErrConflict)

	doc, err := st.Get(ctx, collection, id)
	require.NoError(t, err)
	assert.True(t, recordstore.ValuesEqual(doc.Fields["quantity"], 6))
}

func testPut(t *testing.T, st recordstore.Store) {
	ctx := context.Background()

	for _, qty := range []int{1, 2} {
		err := st.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
			return tx.Put(ctx, "claims", "fixed-key", recordstore.Fields{"recordId": "r1", "n": qty})
		})
		require.NoError(t, err)
	}

	doc, err := st.Get(ctx, "claims", "fixed-key")
	require.NoError(t, err)
	assert.Equal(t, "r1", doc.Fields["recordId"])
	assert.True(t, recordstore.ValuesEqual(doc.Fields["n"], 2))

	docs, err := st.Query(ctx, "claims")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
