// Package store provides generic persistence over the marketplace entities.
// Every repository in the system funnels through it, so filter semantics and
// conflict mapping live in exactly one place.
package store

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nearbuyhq/nearbuy-backend/pkg/db/models"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/pagination"
)

// Entity is the closed set of persisted kinds. Adding a kind means adding it
// here, which forces every call site through the compiler.
type Entity interface {
	models.User | models.Session | models.AuthEvent | models.Shop | models.Item | models.Inventory
}

// Filters maps column names to match values. A scalar matches with equality,
// a slice with IN, and nil with IS NULL.
type Filters map[string]any

// Changes maps column names to new values for an update.
type Changes map[string]any

var columnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Store runs CRUD operations for one entity kind.
type Store[E Entity] struct {
	db *gorm.DB
}

// New binds a GORM DB to an entity kind.
func New[E Entity](db *gorm.DB) *Store[E] {
	return &Store[E]{db: db}
}

// WithTx returns a store that runs its operations inside the given
// transaction.
func (s *Store[E]) WithTx(tx *gorm.DB) *Store[E] {
	return &Store[E]{db: tx}
}

// Insert persists a new row. Unique constraint violations surface as
// conflict errors so callers can map them to their own "already exists"
// message.
func (s *Store[E]) Insert(ctx context.Context, entity *E) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.IsUniqueViolation(err) {
			return errors.Wrap(errors.CodeConflict, err, "record already exists")
		}
		return errors.Wrap(errors.CodeInternal, err, "insert failed")
	}
	return nil
}

// GetOne loads the single row matching the filters. A miss returns a
// not-found error.
func (s *Store[E]) GetOne(ctx context.Context, filters Filters) (*E, error) {
	q, err := s.applyFilters(s.db.WithContext(ctx), filters)
	if err != nil {
		return nil, err
	}
	var entity E
	if err := q.First(&entity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "record not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "lookup failed")
	}
	return &entity, nil
}

// GetAll loads every row matching the filters. No match yields an empty
// slice, not an error.
func (s *Store[E]) GetAll(ctx context.Context, filters Filters) ([]E, error) {
	q, err := s.applyFilters(s.db.WithContext(ctx), filters)
	if err != nil {
		return nil, err
	}
	var entities []E
	if err := q.Find(&entities).Error; err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "lookup failed")
	}
	return entities, nil
}

// GetPage loads one page of matching rows plus the total match count, so
// callers can report page counts without a second query of their own.
func (s *Store[E]) GetPage(ctx context.Context, filters Filters, page pagination.Params) ([]E, int64, error) {
	page = page.Normalize()

	q, err := s.applyFilters(s.db.WithContext(ctx).Model(new(E)), filters)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "count failed")
	}

	var entities []E
	if err := q.Offset(page.Offset()).Limit(page.PageSize).Find(&entities).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "lookup failed")
	}
	return entities, total, nil
}

// UpdateByIdentifier applies the changes to the single row matching the
// filters. When every requested change already matches the stored value the
// write is skipped entirely and (false, nil) is returned; callers treat that
// as a deliberate no-op, not a failure.
func (s *Store[E]) UpdateByIdentifier(ctx context.Context, filters Filters, changes Changes) (bool, error) {
	if len(changes) == 0 {
		return false, nil
	}
	for col := range changes {
		if !columnPattern.MatchString(col) {
			return false, errors.New(errors.CodeValidation, fmt.Sprintf("invalid column %q", col))
		}
	}

	q, err := s.applyFilters(s.db.WithContext(ctx).Model(new(E)), filters)
	if err != nil {
		return false, err
	}

	current := map[string]any{}
	if err := q.Take(&current).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errors.New(errors.CodeNotFound, "record not found")
		}
		return false, errors.Wrap(errors.CodeInternal, err, "lookup failed")
	}

	dirty := false
	for col, want := range changes {
		if !sameValue(current[col], want) {
			dirty = true
			break
		}
	}
	if !dirty {
		return false, nil
	}

	update, err := s.applyFilters(s.db.WithContext(ctx).Model(new(E)), filters)
	if err != nil {
		return false, err
	}
	if err := update.Updates(map[string]any(changes)).Error; err != nil {
		if errors.IsUniqueViolation(err) {
			return false, errors.Wrap(errors.CodeConflict, err, "record already exists")
		}
		return false, errors.Wrap(errors.CodeInternal, err, "update failed")
	}
	return true, nil
}

// DeleteByIdentifier removes the rows matching the filters and reports
// whether anything was deleted.
func (s *Store[E]) DeleteByIdentifier(ctx context.Context, filters Filters) (bool, error) {
	q, err := s.applyFilters(s.db.WithContext(ctx), filters)
	if err != nil {
		return false, err
	}
	res := q.Delete(new(E))
	if res.Error != nil {
		return false, errors.Wrap(errors.CodeInternal, res.Error, "delete failed")
	}
	return res.RowsAffected > 0, nil
}

func (s *Store[E]) applyFilters(q *gorm.DB, filters Filters) (*gorm.DB, error) {
	for col, val := range filters {
		if !columnPattern.MatchString(col) {
			return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid column %q", col))
		}
		switch {
		case val == nil:
			q = q.Where(col + " IS NULL")
		case isSlice(val):
			q = q.Where(col+" IN ?", val)
		default:
			q = q.Where(col+" = ?", val)
		}
	}
	return q, nil
}

func isSlice(v any) bool {
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// sameValue compares a stored column value against a requested change. The
// driver hands back wider types than the models use (int64 for ints, strings
// for numerics on some drivers), so comparison happens on normalized forms.
func sameValue(stored, want any) bool {
	if stored == nil || want == nil {
		return stored == nil && want == nil
	}
	if st, ok := stored.(time.Time); ok {
		if wt, ok := want.(time.Time); ok {
			return st.Equal(wt)
		}
		if wp, ok := want.(*time.Time); ok {
			return wp != nil && st.Equal(*wp)
		}
	}
	if wd, ok := want.(decimal.Decimal); ok {
		sd, err := toDecimal(stored)
		return err == nil && sd.Equal(wd)
	}
	if reflect.DeepEqual(stored, want) {
		return true
	}
	return fmt.Sprintf("%v", deref(stored)) == fmt.Sprintf("%v", deref(want))
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case string:
		return decimal.NewFromString(t)
	case []byte:
		return decimal.NewFromString(string(t))
	case float64:
		return decimal.NewFromFloat(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	default:
		return decimal.Zero, fmt.Errorf("not a numeric value: %T", v)
	}
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}
