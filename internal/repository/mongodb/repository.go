package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

var _ recordstore.Store = (*MongoDBRepository)(nil)

// MongoDBRepository implements recordstore.Store on a MongoDB database.
// Transactions need a replica set or sharded cluster.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	nowFn  func() time.Time
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Get loads a document by id.
func (r *MongoDBRepository) Get(ctx context.Context, collection, id string) (recordstore.Document, error) {
	return findByID(ctx, r.db.Collection(collection), collection, id)
}

// Query returns documents whose fields equal every predicate, oldest first.
func (r *MongoDBRepository) Query(ctx context.Context, collection string, preds ...recordstore.Predicate) ([]recordstore.Document, error) {
	filter := bson.D{}
	for _, p := range preds {
		filter = append(filter, bson.E{Key: p.Field, Value: p.Value})
	}

	cursor, err := r.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(fmt.Sprintf("query %s", collection), err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var out []recordstore.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, toDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, translate(fmt.Sprintf("query %s", collection), err)
	}
	return out, nil
}

// Insert stores fields as a new document.
func (r *MongoDBRepository) Insert(ctx context.Context, collection string, fields recordstore.Fields) (string, error) {
	return insertOne(ctx, r.db.Collection(collection), collection, primitive.NewObjectID(), fields, r.nowFn())
}

// Update overwrites the given fields.
func (r *MongoDBRepository) Update(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	return updateOne(ctx, r.db.Collection(collection), collection, id, fields, r.nowFn())
}

// Delete removes a document.
func (r *MongoDBRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: idValue(id)}})
	if err != nil {
		return translate(fmt.Sprintf("delete %s/%s", collection, id), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	return nil
}

// RunAtomic runs fn inside a single multi-document transaction attempt.
// Transient transaction failures are reported as recordstore.ErrConflict.
func (r *MongoDBRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx recordstore.Tx) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return translate("start session", err)
	}
	defer sess.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(txnOpts); err != nil {
			return translate("start transaction", err)
		}
		tx := &transaction{db: r.db, now: r.nowFn()}
		if err := fn(sc, tx); err != nil {
			_ = sess.AbortTransaction(context.Background())
			return err
		}
		return commit(sc, sess)
	})
}

const (
	labelTransient     = "TransientTransactionError"
	labelCommitUnknown = "UnknownTransactionCommitResult"

	maxCommitAttempts = 5
)

// commit retries only the commit itself while its outcome is unknown. The
// transaction body must not run again: it may already have been applied.
func commit(sc mongo.SessionContext, sess mongo.Session) error {
	var err error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		err = sess.CommitTransaction(sc)
		if err == nil || !hasLabel(err, labelCommitUnknown) || sc.Err() != nil {
			break
		}
	}
	if err != nil {
		return translate("commit transaction", err)
	}
	return nil
}

func hasLabel(err error, label string) bool {
	var labeled mongo.LabeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// transaction issues every operation with the session context it receives,
// which binds it to the open transaction.
type transaction struct {
	db  *mongo.Database
	now time.Time
}

func (t *transaction) Get(ctx context.Context, collection, id string) (recordstore.Document, error) {
	return findByID(ctx, t.db.Collection(collection), collection, id)
}

func (t *transaction) Insert(ctx context.Context, collection string, fields recordstore.Fields) (string, error) {
	return insertOne(ctx, t.db.Collection(collection), collection, primitive.NewObjectID(), fields, t.now)
}

func (t *transaction) Put(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	set := bson.M{recordstore.FieldUpdatedAt: t.now}
	for k, v := range fields {
		set[k] = v
	}
	_, err := t.db.Collection(collection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: idValue(id)}},
		bson.M{"$set": set, "$setOnInsert": bson.M{recordstore.FieldCreatedAt: t.now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return translate(fmt.Sprintf("put %s/%s", collection, id), err)
	}
	return nil
}

func (t *transaction) Update(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	return updateOne(ctx, t.db.Collection(collection), collection, id, fields, t.now)
}

func findByID(ctx context.Context, coll *mongo.Collection, collection, id string) (recordstore.Document, error) {
	var raw bson.M
	err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: idValue(id)}}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return recordstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	if err != nil {
		return recordstore.Document{}, translate(fmt.Sprintf("get %s/%s", collection, id), err)
	}
	return toDocument(raw), nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, collection string, id primitive.ObjectID, fields recordstore.Fields, now time.Time) (string, error) {
	doc := bson.M{"_id": id, recordstore.FieldCreatedAt: now, recordstore.FieldUpdatedAt: now}
	for k, v := range fields {
		doc[k] = v
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return "", translate(fmt.Sprintf("insert %s", collection), err)
	}
	return id.Hex(), nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, collection, id string, fields recordstore.Fields, now time.Time) error {
	set := bson.M{recordstore.FieldUpdatedAt: now}
	for k, v := range fields {
		set[k] = v
	}
	res, err := coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: idValue(id)}}, bson.M{"$set": set})
	if err != nil {
		return translate(fmt.Sprintf("update %s/%s", collection, id), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	return nil
}

// idValue maps an opaque id onto the stored _id: generated ids are ObjectIDs,
// caller-chosen ids (Put) are kept as strings.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func toDocument(raw bson.M) recordstore.Document {
	doc := recordstore.Document{Fields: recordstore.Fields{}}
	for k, v := range raw {
		switch k {
		case "_id":
			switch id := v.(type) {
			case primitive.ObjectID:
				doc.ID = id.Hex()
			default:
				doc.ID = fmt.Sprint(id)
			}
		case recordstore.FieldCreatedAt:
			doc.CreatedAt = asTime(v)
		case recordstore.FieldUpdatedAt:
			doc.UpdatedAt = asTime(v)
		default:
			doc.Fields[k] = v
		}
	}
	return doc
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}

// translate maps driver errors onto the recordstore taxonomy.
func translate(op string, err error) error {
	// an unknown commit result may have been applied, so it is never a conflict
	if hasLabel(err, labelCommitUnknown) {
		return fmt.Errorf("%s: %w: %v", op, recordstore.ErrUnavailable, err)
	}
	if hasLabel(err, labelTransient) {
		return fmt.Errorf("%s: %w: %v", op, recordstore.ErrConflict, err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: %v", op, recordstore.ErrConflict, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, recordstore.ErrUnavailable, err)
}
