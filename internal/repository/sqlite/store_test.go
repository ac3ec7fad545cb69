package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore/recordstoretest"
)

func openAt(t *testing.T, path string) *Store {
	t.Helper()
	st, err := NewStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestStoreContract(t *testing.T) {
	recordstoretest.Run(t, func(t *testing.T) (recordstore.Store, recordstore.Store) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		// the pool holds one connection, so outside writes need their own handle
		return openAt(t, path), openAt(t, path)
	})
}

func TestNewStore_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	st := openAt(t, path)

	_, err := st.Insert(context.Background(), "stock", recordstore.Fields{"name": "Gloves"})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	first, err := NewStore(ctx, path)
	require.NoError(t, err)
	id, err := first.Insert(ctx, "comms", recordstore.Fields{"setNumber": 4, "callSign": "Delta"})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second := openAt(t, path)
	docs, err := second.Query(ctx, "comms", recordstore.Eq("setNumber", 4))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, "Delta", docs[0].Fields["callSign"])
}

func TestQuery_RejectsUnsafeFieldNames(t *testing.T) {
	st := openAt(t, filepath.Join(t.TempDir(), "ledger.db"))

	_, err := st.Query(context.Background(), "stock", recordstore.Eq("name') OR 1=1 --", "x"))
	require.Error(t, err)
}

func TestBindValue(t *testing.T) {
	type kind string
	assert.Equal(t, "fixture", bindValue(kind("fixture")))
	assert.Equal(t, int64(3), bindValue(int32(3)))
	assert.Equal(t, 5, bindValue(5))
}
