// Package memory provides an in-process record store. Transactions run
// optimistically: reads are versioned and validated at commit, so concurrent
// writers surface recordstore.ErrConflict the way a networked document store would.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// Compile-time contract assertion.
var _ recordstore.Store = (*Store)(nil)

type entry struct {
	doc     recordstore.Document
	version uint64
	seq     uint64
}

type docKey struct {
	collection string
	id         string
}

// Store keeps documents in memory, grouped by collection.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*entry
	seq         uint64
	nowFn       func() time.Time
	newID       func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.nowFn = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]*entry),
		nowFn:       func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the document.
func (s *Store) Get(ctx context.Context, collection, id string) (recordstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(collection, id)
	if !ok {
		return recordstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	return cloneDoc(e.doc), nil
}

// Query returns matching documents in insertion order.
func (s *Store) Query(ctx context.Context, collection string, preds ...recordstore.Predicate) ([]recordstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entry
	for _, e := range s.collections[collection] {
		if e.doc.Fields.Matches(preds) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	out := make([]recordstore.Document, 0, len(matched))
	for _, e := range matched {
		out = append(out, cloneDoc(e.doc))
	}
	return out, nil
}

// Insert stores a new document under a generated id.
func (s *Store) Insert(ctx context.Context, collection string, fields recordstore.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	now := s.nowFn()
	s.put(collection, id, &entry{
		doc:     recordstore.Document{ID: id, Fields: fields.Clone(), CreatedAt: now, UpdatedAt: now},
		version: 1,
	})
	return id, nil
}

// Update overwrites the given fields and bumps UpdatedAt.
func (s *Store) Update(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(collection, id)
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	for k, v := range fields {
		e.doc.Fields[k] = v
	}
	e.doc.UpdatedAt = s.nowFn()
	e.version++
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(collection, id); !ok {
		return fmt.Errorf("delete %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	delete(s.collections[collection], id)
	return nil
}

// RunAtomic executes fn against a transaction whose writes are staged until
// commit. Commit fails with ErrConflict when any document read (or blindly
// written) by fn changed in the meantime.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx recordstore.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &transaction{
		store:  s,
		reads:  make(map[docKey]uint64),
		staged: make(map[docKey]*recordstore.Document),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func (s *Store) commit(tx *transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range tx.reads {
		var current uint64
		if e, ok := s.lookup(key.collection, key.id); ok {
			current = e.version
		}
		if current != seen {
			return fmt.Errorf("commit %s/%s: %w", key.collection, key.id, recordstore.ErrConflict)
		}
	}

	now := s.nowFn()
	for _, key := range tx.order {
		doc := tx.staged[key]
		if e, ok := s.lookup(key.collection, key.id); ok {
			e.doc.Fields = doc.Fields.Clone()
			e.doc.UpdatedAt = now
			e.version++
			continue
		}
		s.put(key.collection, key.id, &entry{
			doc:     recordstore.Document{ID: key.id, Fields: doc.Fields.Clone(), CreatedAt: now, UpdatedAt: now},
			version: 1,
		})
	}
	return nil
}

func (s *Store) lookup(collection, id string) (*entry, bool) {
	e, ok := s.collections[collection][id]
	return e, ok
}

func (s *Store) put(collection, id string, e *entry) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]*entry)
		s.collections[collection] = coll
	}
	s.seq++
	e.seq = s.seq
	coll[id] = e
}

// version returns the committed version of a document, 0 when absent.
func (s *Store) version(key docKey) (uint64, *recordstore.Document) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lookup(key.collection, key.id)
	if !ok {
		return 0, nil
	}
	doc := cloneDoc(e.doc)
	return e.version, &doc
}

type transaction struct {
	store  *Store
	reads  map[docKey]uint64
	staged map[docKey]*recordstore.Document
	order  []docKey
}

func (tx *transaction) Get(ctx context.Context, collection, id string) (recordstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.Document{}, err
	}
	key := docKey{collection, id}
	if doc, ok := tx.staged[key]; ok {
		return cloneDoc(*doc), nil
	}
	version, doc := tx.store.version(key)
	tx.observe(key, version)
	if doc == nil {
		return recordstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	return *doc, nil
}

func (tx *transaction) Insert(ctx context.Context, collection string, fields recordstore.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := tx.store.newID()
	key := docKey{collection, id}
	tx.observe(key, 0)
	tx.stage(key, &recordstore.Document{ID: id, Fields: fields.Clone()})
	return id, nil
}

func (tx *transaction) Put(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := docKey{collection, id}
	if _, ok := tx.reads[key]; !ok {
		version, _ := tx.store.version(key)
		tx.observe(key, version)
	}
	tx.stage(key, &recordstore.Document{ID: id, Fields: fields.Clone()})
	return nil
}

func (tx *transaction) Update(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := docKey{collection, id}
	base, ok := tx.staged[key]
	if !ok {
		version, doc := tx.store.version(key)
		tx.observe(key, version)
		if doc == nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, recordstore.ErrNotFound)
		}
		base = doc
	}
	merged := cloneDoc(*base)
	for k, v := range fields {
		merged.Fields[k] = v
	}
	tx.stage(key, &merged)
	return nil
}

// observe records the first version seen for key.
func (tx *transaction) observe(key docKey, version uint64) {
	if _, ok := tx.reads[key]; !ok {
		tx.reads[key] = version
	}
}

func (tx *transaction) stage(key docKey, doc *recordstore.Document) {
	if _, ok := tx.staged[key]; !ok {
		tx.order = append(tx.order, key)
	}
	tx.staged[key] = doc
}

func cloneDoc(d recordstore.Document) recordstore.Document {
	d.Fields = d.Fields.Clone()
	return d
}
