package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore/recordstoretest"
)

// Transactions need a replica set, e.g. mongodb://localhost:27017/?replicaSet=rs0.
const uriEnv = "LEDGER_MONGODB_TEST_URI"

func TestRepositoryContract(t *testing.T) {
	uri := os.Getenv(uriEnv)
	if uri == "" {
		t.Skipf("%s not set", uriEnv)
	}

	recordstoretest.Run(t, func(t *testing.T) (recordstore.Store, recordstore.Store) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dbName := fmt.Sprintf("ledger_test_%s", primitive.NewObjectID().Hex())
		repo, err := NewMongoDBRepository(ctx, uri, dbName)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = repo.db.Drop(context.Background())
			_ = repo.Close(context.Background())
		})

		// collections cannot always be created inside a transaction
		for _, name := range []string{"items", "claims"} {
			require.NoError(t, repo.db.CreateCollection(ctx, name))
		}
		return repo, repo
	})
}

func TestIDValue(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid, idValue(oid.Hex()))
	assert.Equal(t, "set-4", idValue("set-4"))
}

func TestToDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	doc := toDocument(map[string]any{
		"_id":                      oid,
		recordstore.FieldCreatedAt: primitive.NewDateTimeFromTime(at),
		recordstore.FieldUpdatedAt: at,
		"name":                     "Gloves",
	})
	assert.Equal(t, oid.Hex(), doc.ID)
	assert.Equal(t, at, doc.CreatedAt)
	assert.Equal(t, at, doc.UpdatedAt)
	assert.Equal(t, recordstore.Fields{"name": "Gloves"}, doc.Fields)

	claim := toDocument(map[string]any{"_id": "set-4", "recordId": "abc"})
	assert.Equal(t, "set-4", claim.ID)
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate("op", context.Canceled), context.Canceled)
	assert.ErrorIs(t, translate("op", fmt.Errorf("socket closed")), recordstore.ErrUnavailable)

	transient := mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{labelTransient}}
	assert.ErrorIs(t, translate("op", transient), recordstore.ErrConflict)
	assert.ErrorIs(t, translate("op", fmt.Errorf("wrapped: %w", transient)), recordstore.ErrConflict)
}

func TestTranslate_UnknownCommitResultIsNotRetryable(t *testing.T) {
	unknown := mongo.CommandError{Code: 50, Name: "MaxTimeMSExpired", Labels: []string{labelCommitUnknown}}

	err := translate("commit transaction", unknown)
	assert.NotErrorIs(t, err, recordstore.ErrConflict)
	assert.ErrorIs(t, err, recordstore.ErrUnavailable)

	// both labels: the outcome is still unknown
	both := mongo.CommandError{Labels: []string{labelTransient, labelCommitUnknown}}
	assert.NotErrorIs(t, translate("commit transaction", both), recordstore.ErrConflict)
}

func TestHasLabel(t *testing.T) {
	unknown := mongo.CommandError{Labels: []string{labelCommitUnknown}}
	assert.True(t, hasLabel(unknown, labelCommitUnknown))
	assert.True(t, hasLabel(fmt.Errorf("commit: %w", unknown), labelCommitUnknown))
	assert.False(t, hasLabel(unknown, labelTransient))
	assert.False(t, hasLabel(fmt.Errorf("socket closed"), labelCommitUnknown))
}
