// Package recordstore defines the document store contract consumed by the ledger.
// Implementations live in sibling packages (mongodb, sqlite, memory).
package recordstore

import (
	"context"
	"errors"
	"reflect"
	"time"
)

// Store errors. Implementations wrap driver failures with ErrUnavailable.
var (
	ErrNotFound    = errors.New("document not found")
	ErrConflict    = errors.New("conflicting concurrent write")
	ErrUnavailable = errors.New("record store unavailable")
)

// Fields are the user-visible document fields. Timestamps are managed by the store.
type Fields map[string]any

// Document is a stored record together with its store-assigned metadata.
type Document struct {
	ID        string
	Fields    Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Predicate is one equality condition of a conjunctive query.
type Predicate struct {
	Field string
	Value any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// Store is the minimal surface the ledger needs from a document store.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, preds ...Predicate) ([]Document, error)
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error

	// RunAtomic executes fn once as an isolated, all-or-nothing unit. Reads and
	// writes must go through tx. A conflicting concurrent write surfaces as
	// ErrConflict; retrying is the caller's decision.
	RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Close(ctx context.Context) error
}

// Tx is the transactional handle passed to RunAtomic callbacks.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
	// Put creates or replaces the document stored under id.
	Put(ctx context.Context, collection, id string, fields Fields) error
	Update(ctx context.Context, collection, id string, fields Fields) error
}

// Timestamp field names stored alongside user fields.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Matches reports whether every predicate holds for f. Numeric values compare by
// value regardless of their concrete Go type.
func (f Fields) Matches(preds []Predicate) bool {
	for _, p := range preds {
		if !ValuesEqual(f[p.Field], p.Value) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two field values, normalising numbers.
func ValuesEqual(a, b any) bool {
	if an, ok := toFloat(a); ok {
		bn, ok := toFloat(b)
		return ok && an == bn
	}
	if as, ok := toString(a); ok {
		bs, ok := toString(b)
		return ok && as == bs
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// toString accepts named string types (Kind, StockStatus, ...) as well as string.
func toString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}
