// Package store is the storage collaborator: generic gorm-backed collections
// with filter, search and range listing.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownColumn is returned for a column name that is not part of the table.
	ErrUnknownColumn = errors.New("unknown column")
)

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search is a case-insensitive substring match on one column.
type Search struct {
	Column string
	Term   string
}

// Range is an inclusive range filter on one column.
type Range struct {
	Column string
	From   any
	To     any
}

// Query describes one list request. The zero value lists everything.
type Query struct {
	Filters map[string]any
	Search  *Search
	Range   *Range
	// OrderBy is a column name, descending unless Asc. Empty means created_at.
	OrderBy string
	Asc     bool
}

// Table is a collection of T backed by one database table.
type Table[T any] struct {
	db *gorm.DB

	once     sync.Once
	schema   *schema.Schema
	parseErr error
}

// NewTable returns a Table for the model type T.
func NewTable[T any](db *gorm.DB) *Table[T] {
	return &Table[T]{db: db}
}

func (t *Table[T]) parse() (*schema.Schema, error) {
	t.once.Do(func() {
		stmt := &gorm.Statement{DB: t.db}
		if err := stmt.Parse(new(T)); err != nil {
			t.parseErr = fmt.Errorf("parse schema %T: %w", *new(T), err)
			return
		}
		t.schema = stmt.Schema
	})
	return t.schema, t.parseErr
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	s, err := t.parse()
	if err != nil {
		return ""
	}
	return s.Table
}

// column returns the quoted-safe db name for col, rejecting anything not in
// the model schema.
func (t *Table[T]) column(col string) (string, error) {
	s, err := t.parse()
	if err != nil {
		return "", err
	}
	if f, ok := s.FieldsByDBName[col]; ok {
		return f.DBName, nil
	}
	return "", fmt.Errorf("%w %q on %s", ErrUnknownColumn, col, s.Table)
}

// HasColumn reports whether col is a column of the table.
func (t *Table[T]) HasColumn(col string) bool {
	_, err := t.column(col)
	return err == nil
}

// List returns every row matching q.
func (t *Table[T]) List(ctx context.Context, q Query) ([]T, error) {
	tx := t.db.WithContext(ctx).Model(new(T))
	for col, v := range q.Filters {
		name, err := t.column(col)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(name+" = ?", v)
	}
	if q.Search != nil && strings.TrimSpace(q.Search.Term) != "" {
		name, err := t.column(q.Search.Column)
		if err != nil {
			return nil, err
		}
		tx = tx.Where("LOWER("+name+`) LIKE LOWER(?) ESCAPE '\'`, "%"+likeEscaper.Replace(q.Search.Term)+"%")
	}
	if q.Range != nil {
		name, err := t.column(q.Range.Column)
		if err != nil {
			return nil, err
		}
		if q.Range.From != nil {
			tx = tx.Where(name+" >= ?", q.Range.From)
		}
		if q.Range.To != nil {
			tx = tx.Where(name+" <= ?", q.Range.To)
		}
	}
	order := "created_at"
	if q.OrderBy != "" {
		name, err := t.column(q.OrderBy)
		if err != nil {
			return nil, err
		}
		order = name
	}
	dir := " DESC"
	if q.Asc {
		dir = " ASC"
	}
	tx = tx.Order(order + dir).Order("id")

	var out []T
	if err := tx.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Name(), err)
	}
	return out, nil
}

// Get returns the row with id.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	err := t.db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", t.Name(), id, err)
	}
	return &out, nil
}

// Insert creates row, filling its generated id and timestamps.
func (t *Table[T]) Insert(ctx context.Context, row *T) error {
	if err := t.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert %s: %w", t.Name(), err)
	}
	return nil
}

// Update applies patch to the row with id, touching only the patched columns.
func (t *Table[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	clean := make(map[string]any, len(patch))
	for col, v := range patch {
		name, err := t.column(col)
		if err != nil {
			return err
		}
		if name == "id" || name == "created_at" {
			continue
		}
		clean[name] = v
	}
	res := t.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(clean)
	if res.Error != nil {
		return fmt.Errorf("update %s %s: %w", t.Name(), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row with id.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s %s: %w", t.Name(), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of rows.
func (t *Table[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", t.Name(), err)
	}
	return n, nil
}
