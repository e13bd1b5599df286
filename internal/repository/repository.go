// Package repository provides type-parameterized row access shared by every
// entity type: lookup, pagination, soft delete and restore. "Not found" is a
// nil or false result at this layer; raising typed errors is the service
// layer's job, which knows the entity name.
package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"gorm.io/gorm"
)

// SearchScope narrows a list query with entity-specific predicates. The base
// repository applies no predicate of its own.
type SearchScope func(tx *gorm.DB, req PageRequest) *gorm.DB

type Option[T any] func(*Repository[T])

// WithSearchScope installs the entity-specific search predicate used by
// FindPage.
func WithSearchScope[T any](scope SearchScope) Option[T] {
	return func(r *Repository[T]) {
		r.search = scope
	}
}

// WithBaseScope installs a filter applied to every query of this repository.
func WithBaseScope[T any](scope func(tx *gorm.DB) *gorm.DB) Option[T] {
	return func(r *Repository[T]) {
		r.base = scope
	}
}

// WithRelations preloads the named associations on read paths.
func WithRelations[T any](relations ...string) Option[T] {
	return func(r *Repository[T]) {
		r.relations = relations
	}
}

// Repository is generic row access for one entity type. Soft-delete handling
// switches on whether T carries both DeletedAt and IsDeleted fields; the two
// columns are always written and filtered together.
type Repository[T any] struct {
	gdb        *gorm.DB
	softDelete bool
	search     SearchScope
	base       func(tx *gorm.DB) *gorm.DB
	relations  []string
}

func New[T any](gdb *gorm.DB, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		gdb:        gdb,
		softDelete: supportsSoftDelete[T](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	if r == nil || tx == nil {
		return r
	}
	clone := *r
	clone.gdb = tx
	return &clone
}

// SoftDeletes reports whether T is soft-delete capable.
func (r *Repository[T]) SoftDeletes() bool {
	return r.softDelete
}

// FindByID returns the row or nil when it does not exist (or is soft-deleted).
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	err := r.preloaded(r.scoped(ctx)).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return &entity, nil
}

// FindAll returns every live row.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.preloaded(r.scoped(ctx)).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	return entities, nil
}

// FindPage runs the paginated list query: base filter, soft-delete filter,
// entity search scope, sorting, then offset/limit, plus one count over the
// same predicate set.
func (r *Repository[T]) FindPage(ctx context.Context, req PageRequest) ([]T, int64, error) {
	req = req.Normalize()

	query := r.scoped(ctx)
	if r.search != nil {
		query = r.search(query, req)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count page: %w", err)
	}

	order, err := resolveOrder(req)
	if err != nil {
		return nil, 0, err
	}
	if order != "" {
		query = query.Order(order)
	}

	var entities []T
	err = r.preloaded(query).
		Offset(req.Offset()).
		Limit(req.Limit).
		Find(&entities).Error
	if err != nil {
		return nil, 0, fmt.Errorf("find page: %w", err)
	}
	return entities, total, nil
}

// Create inserts the entity and backfills generated columns.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.gdb.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// Update applies the values to the identified live row and reports affected
// rows. Zero means the row is missing, soft-deleted, or was removed by a
// concurrent writer.
func (r *Repository[T]) Update(ctx context.Context, id int64, values any) (int64, error) {
	res := r.scoped(ctx).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("update: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the row: soft when T supports it, hard otherwise. Returns
// false when no live row matched.
func (r *Repository[T]) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.deleteWhere(ctx, "id = ?", id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteMany mirrors Delete for a batch of IDs and reports how many rows
// were affected.
func (r *Repository[T]) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteWhere(ctx, "id IN ?", ids)
}

// Restore clears the soft-delete marker. Returns false when no soft-deleted
// row matched.
func (r *Repository[T]) Restore(ctx context.Context, id int64) (bool, error) {
	if !r.softDelete {
		return false, fmt.Errorf("restore: entity type does not support soft delete")
	}
	res := r.unscoped(ctx).
		Where("id = ? AND is_deleted = ?", id, true).
		Updates(map[string]any{
			"is_deleted": false,
			"deleted_at": nil,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("restore: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of live rows.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.scoped(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// Exists reports whether a live row with the ID exists.
func (r *Repository[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var total int64
	if err := r.scoped(ctx).Where("id = ?", id).Count(&total).Error; err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return total > 0, nil
}

func (r *Repository[T]) deleteWhere(ctx context.Context, cond string, arg any) (int64, error) {
	if r.softDelete {
		now := time.Now().UTC()
		res := r.scoped(ctx).Where(cond, arg).Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		})
		if res.Error != nil {
			return 0, fmt.Errorf("soft delete: %w", res.Error)
		}
		return res.RowsAffected, nil
	}

	var entity T
	res := r.unscoped(ctx).Where(cond, arg).Delete(&entity)
	if res.Error != nil {
		return 0, fmt.Errorf("hard delete: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// scoped starts a query with the base filter and the soft-delete filter
// applied.
func (r *Repository[T]) scoped(ctx context.Context) *gorm.DB {
	query := r.unscoped(ctx)
	if r.softDelete {
		query = query.Where("is_deleted = ?", false)
	}
	return query
}

func (r *Repository[T]) unscoped(ctx context.Context) *gorm.DB {
	var entity T
	query := r.gdb.WithContext(ctx).Model(&entity)
	if r.base != nil {
		query = r.base(query)
	}
	return query
}

func (r *Repository[T]) preloaded(query *gorm.DB) *gorm.DB {
	for _, relation := range r.relations {
		query = query.Preload(relation)
	}
	return query
}

var sortColumnPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// resolveOrder builds the order clause: an explicit Order wins over
// SortBy/SortOrder. SortBy must be a bare column identifier.
func resolveOrder(req PageRequest) (string, error) {
	if req.Order != "" {
		return req.Order, nil
	}
	if req.SortBy == "" {
		return "", nil
	}
	if !sortColumnPattern.MatchString(req.SortBy) {
		return "", fmt.Errorf("invalid sort column %q", req.SortBy)
	}
	return req.SortBy + " " + req.SortOrder, nil
}

func supportsSoftDelete[T any]() bool {
	typ := reflect.TypeOf(*new(T))
	if typ == nil || typ.Kind() != reflect.Struct {
		return false
	}
	_, hasDeletedAt := typ.FieldByName("DeletedAt")
	_, hasIsDeleted := typ.FieldByName("IsDeleted")
	return hasDeletedAt && hasIsDeleted
}
