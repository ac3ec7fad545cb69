// Package sqlite stores ledger documents as JSON payload rows in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

var _ recordstore.Store = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	payload TEXT NOT NULL,
	version INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
)`

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a recordstore.Store on top of database/sql and the pure-Go SQLite driver.
// The pool holds a single connection, so transactions serialise in-process and the
// version checks guard against other processes sharing the file.
type Store struct {
	db    *sql.DB
	nowFn func() time.Time
}

// NewStore opens (creating if needed) the database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "ledger.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db, nowFn: func() time.Time { return time.Now().UTC() }}, nil
}

// Close releases the database handle.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// Get loads one document.
func (s *Store) Get(ctx context.Context, collection, id string) (recordstore.Document, error) {
	row, err := getRow(ctx, s.db, collection, id)
	if err != nil {
		return recordstore.Document{}, err
	}
	return row.doc, nil
}

// Query filters a collection with equality predicates on payload fields.
func (s *Store) Query(ctx context.Context, collection string, preds ...recordstore.Predicate) ([]recordstore.Document, error) {
	builder := sq.Select("id", "payload", "version", "created_at", "updated_at").
		From("documents").
		Where(sq.Eq{"collection": collection}).
		OrderBy("rowid")
	for _, p := range preds {
		if !fieldName.MatchString(p.Field) {
			return nil, fmt.Errorf("query %s: invalid field name %q", collection, p.Field)
		}
		builder = builder.Where(fmt.Sprintf("json_extract(payload, '$.%s') = ?", p.Field), bindValue(p.Value))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(fmt.Errorf("query %s", collection), err)
	}
	defer func() { _ = rows.Close() }()

	var out []recordstore.Document
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r.doc)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(fmt.Errorf("query %s", collection), err)
	}
	return out, nil
}

// Insert stores a new document under a generated id.
func (s *Store) Insert(ctx context.Context, collection string, fields recordstore.Fields) (string, error) {
	id := uuid.NewString()
	if err := insertRow(ctx, s.db, collection, id, fields, s.nowFn()); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into the stored payload.
func (s *Store) Update(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	return s.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		return tx.Update(ctx, collection, id, fields)
	})
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query, args, err := sq.Delete("documents").Where(sq.Eq{"collection": collection, "id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(fmt.Errorf("delete %s/%s", collection, id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	return nil
}

// RunAtomic runs fn inside one SQL transaction.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx recordstore.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate(errors.New("begin transaction"), err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = sqlTx.Rollback()
			panic(r)
		}
	}()

	tx := &transaction{tx: sqlTx, versions: make(map[string]int64), now: s.nowFn()}
	if err := fn(ctx, tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return translate(errors.New("commit transaction"), err)
	}
	return nil
}

type transaction struct {
	tx       *sql.Tx
	versions map[string]int64
	now      time.Time
}

func (t *transaction) Get(ctx context.Context, collection, id string) (recordstore.Document, error) {
	row, err := getRow(ctx, t.tx, collection, id)
	if err != nil {
		return recordstore.Document{}, err
	}
	t.versions[collection+"/"+id] = row.version
	return row.doc, nil
}

func (t *transaction) Insert(ctx context.Context, collection string, fields recordstore.Fields) (string, error) {
	id := uuid.NewString()
	if err := insertRow(ctx, t.tx, collection, id, fields, t.now); err != nil {
		return "", err
	}
	t.versions[collection+"/"+id] = 1
	return id, nil
}

func (t *transaction) Put(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	stamp := t.now.UnixNano()
	query, args, err := sq.Insert("documents").
		Columns("collection", "id", "payload", "version", "created_at", "updated_at").
		Values(collection, id, string(payload), 1, stamp, stamp).
		Suffix("ON CONFLICT(collection, id) DO UPDATE SET payload = excluded.payload, version = documents.version + 1, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build put: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return translate(fmt.Errorf("put %s/%s", collection, id), err)
	}
	return nil
}

func (t *transaction) Update(ctx context.Context, collection, id string, fields recordstore.Fields) error {
	key := collection + "/" + id
	current, err := getRow(ctx, t.tx, collection, id)
	if err != nil {
		return err
	}
	expected, seen := t.versions[key]
	if !seen {
		expected = current.version
	}

	merged := current.doc.Fields
	for k, v := range fields {
		merged[k] = v
	}
	payload, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	query, args, err := sq.Update("documents").
		Set("payload", string(payload)).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", t.now.UnixNano()).
		Where(sq.Eq{"collection": collection, "id": id, "version": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(fmt.Errorf("update %s/%s", collection, id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, recordstore.ErrConflict)
	}
	t.versions[key] = expected + 1
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

type storedRow struct {
	doc     recordstore.Document
	version int64
}

func getRow(ctx context.Context, q queryer, collection, id string) (storedRow, error) {
	query, args, err := sq.Select("id", "payload", "version", "created_at", "updated_at").
		From("documents").
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return storedRow{}, fmt.Errorf("build get: %w", err)
	}
	r, err := scanRow(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return storedRow{}, fmt.Errorf("get %s/%s: %w", collection, id, recordstore.ErrNotFound)
	}
	if err != nil {
		return storedRow{}, translate(fmt.Errorf("get %s/%s", collection, id), err)
	}
	return r, nil
}

func scanRow(s scanner) (storedRow, error) {
	var (
		r                storedRow
		payload          string
		created, updated int64
	)
	if err := s.Scan(&r.doc.ID, &payload, &r.version, &created, &updated); err != nil {
		return storedRow{}, err
	}
	if err := json.Unmarshal([]byte(payload), &r.doc.Fields); err != nil {
		return storedRow{}, fmt.Errorf("decode %s: %w", r.doc.ID, err)
	}
	if r.doc.Fields == nil {
		r.doc.Fields = recordstore.Fields{}
	}
	r.doc.CreatedAt = time.Unix(0, created).UTC()
	r.doc.UpdatedAt = time.Unix(0, updated).UTC()
	return r, nil
}

func insertRow(ctx context.Context, q queryer, collection, id string, fields recordstore.Fields, now time.Time) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	query, args, err := sq.Insert("documents").
		Columns("collection", "id", "payload", "version", "created_at", "updated_at").
		Values(collection, id, string(payload), 1, now.UnixNano(), now.UnixNano()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return translate(fmt.Errorf("insert %s", collection), err)
	}
	return nil
}

// bindValue converts named string types into plain strings for the driver.
func bindValue(v any) any {
	switch val := v.(type) {
	case string, int, int64, float64, bool, nil:
		return val
	case int32:
		return int64(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// translate maps driver errors onto the recordstore taxonomy.
func translate(op error, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%v: %w: %v", op, recordstore.ErrConflict, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", op, err)
	}
	return fmt.Errorf("%v: %w: %v", op, recordstore.ErrUnavailable, err)
}
