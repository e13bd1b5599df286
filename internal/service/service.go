// Package service orchestrates the generic repository and the translation
// store: writes externalize plain-string payload fields into translation
// rows behind integer reference IDs, reads batch-resolve those IDs back into
// the response shape.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"horse.fit/guia/internal/repository"
	"horse.fit/guia/internal/textref"
	"horse.fit/guia/internal/translations"
)

// Hooks are the entity-specific extension points of the generic pipelines.
// Every hook is optional. The post-write hooks run inside the write
// transaction, so an error from them rolls the whole write back. Enrich runs
// best-effort before a write and must never block it; its failures are the
// hook's own problem.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, payload map[string]any) error
	AfterCreate  func(ctx context.Context, entity *T) error
	BeforeUpdate func(ctx context.Context, id int64, payload map[string]any) error
	AfterUpdate  func(ctx context.Context, entity *T) error
	Enrich       func(ctx context.Context, payload map[string]any)
}

type Option[T any] func(*Service[T])

func WithHooks[T any](hooks Hooks[T]) Option[T] {
	return func(s *Service[T]) {
		s.hooks = hooks
	}
}

func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(s *Service[T]) {
		s.logger = logger
	}
}

// Service is the translation-aware persistence pipeline for one entity type.
type Service[T any] struct {
	gdb        *gorm.DB
	repo       *repository.Repository[T]
	store      *translations.Store
	entityName string
	hooks      Hooks[T]
	logger     zerolog.Logger
	allocRefID func() int64
}

func New[T any](
	gdb *gorm.DB,
	repo *repository.Repository[T],
	store *translations.Store,
	entityName string,
	opts ...Option[T],
) *Service[T] {
	s := &Service[T]{
		gdb:        gdb,
		repo:       repo,
		store:      store,
		entityName: entityName,
		logger:     zerolog.Nop(),
		allocRefID: textref.NewRefID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying row access for callers that need raw
// entities (search scopes, tests).
func (s *Service[T]) Repository() *repository.Repository[T] {
	return s.repo
}

type pendingText struct {
	refID int64
	text  string
}

// Create runs the write pipeline: validation hook, payload overlay, reference
// allocation for plain-string text fields, then the translation rows and the
// entity row inside one transaction. Returns the shaped entity resolved in
// the request language.
func (s *Service[T]) Create(ctx context.Context, payload map[string]any, lang string) (map[string]any, error) {
	if s.hooks.BeforeCreate != nil {
		if err := s.hooks.BeforeCreate(ctx, payload); err != nil {
			return nil, err
		}
	}
	if s.hooks.Enrich != nil {
		s.hooks.Enrich(ctx, payload)
	}

	var entity T
	if err := applyPayload(&entity, payload); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.entityName, err)
	}

	pending, err := s.bindTextRefs(&entity, payload)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.entityName, err)
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		for _, p := range pending {
			// Upsert keeps the slot-per-language invariant even when the
			// caller supplied the reference ID alongside new text.
			if err := store.Upsert(ctx, p.refID, lang, p.text); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).Create(ctx, &entity); err != nil {
			return err
		}
		if s.hooks.AfterCreate != nil {
			return s.hooks.AfterCreate(ctx, &entity)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.entityName, err)
	}

	s.logger.Debug().
		Str("entity", s.entityName).
		Int64("id", entityID(&entity)).
		Int("translated_fields", len(pending)).
		Str("lang", lang).
		Msg("entity created")

	return s.Get(ctx, entityID(&entity), lang)
}

// Update overlays the payload on the stored entity and writes it back. Text
// fields with an existing reference ID get their row for the request language
// upserted; rows for other languages are untouched. Fields without a
// reference ID yet are allocated one, exactly as Create does.
func (s *Service[T]) Update(ctx context.Context, id int64, payload map[string]any, lang string) (map[string]any, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entityName, err)
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: s.entityName, ID: id}
	}

	if s.hooks.BeforeUpdate != nil {
		if err := s.hooks.BeforeUpdate(ctx, id, payload); err != nil {
			return nil, err
		}
	}
	if s.hooks.Enrich != nil {
		s.hooks.Enrich(ctx, payload)
	}

	entity := *existing
	if err := applyPayload(&entity, payload); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entityName, err)
	}

	pending, err := s.bindTextRefs(&entity, payload)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entityName, err)
	}

	columns, err := entityToColumns(&entity)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entityName, err)
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)
		for _, p := range pending {
			if err := store.Upsert(ctx, p.refID, lang, p.text); err != nil {
				return err
			}
		}
		affected, err := s.repo.WithTx(tx).Update(ctx, id, columns)
		if err != nil {
			return err
		}
		if affected == 0 {
			return &PersistenceError{Entity: s.entityName, ID: id, Op: "update"}
		}
		if s.hooks.AfterUpdate != nil {
			return s.hooks.AfterUpdate(ctx, &entity)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entityName, err)
	}

	return s.Get(ctx, id, lang)
}

// Get returns the shaped entity with text resolved in one language. No
// fallback is applied; absent translations leave the DTO field unresolved.
func (s *Service[T]) Get(ctx context.Context, id int64, lang string) (map[string]any, error) {
	return s.get(ctx, id, lang, "")
}

// GetWithFallback resolves text in the primary language and fills gaps from
// the fallback language.
func (s *Service[T]) GetWithFallback(ctx context.Context, id int64, lang, fallbackLang string) (map[string]any, error) {
	return s.get(ctx, id, lang, fallbackLang)
}

func (s *Service[T]) get(ctx context.Context, id int64, lang, fallbackLang string) (map[string]any, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.entityName, err)
	}
	if entity == nil {
		return nil, &NotFoundError{Entity: s.entityName, ID: id}
	}
	shaped, err := s.resolve(ctx, []T{*entity}, lang, fallbackLang)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.entityName, err)
	}
	return shaped[0], nil
}

// List returns one page of shaped entities. All reference IDs on the page are
// resolved with a single batched lookup (two when a fallback language is
// involved).
func (s *Service[T]) List(ctx context.Context, req repository.PageRequest, lang string) (repository.PageResponse[map[string]any], error) {
	return s.list(ctx, req, lang, "")
}

func (s *Service[T]) ListWithFallback(ctx context.Context, req repository.PageRequest, lang, fallbackLang string) (repository.PageResponse[map[string]any], error) {
	return s.list(ctx, req, lang, fallbackLang)
}

func (s *Service[T]) list(ctx context.Context, req repository.PageRequest, lang, fallbackLang string) (repository.PageResponse[map[string]any], error) {
	var empty repository.PageResponse[map[string]any]

	entities, total, err := s.repo.FindPage(ctx, req)
	if err != nil {
		return empty, fmt.Errorf("list %s: %w", s.entityName, err)
	}
	shaped, err := s.resolve(ctx, entities, lang, fallbackLang)
	if err != nil {
		return empty, fmt.Errorf("list %s: %w", s.entityName, err)
	}
	return repository.NewPageResponse(shaped, total, req), nil
}

// Delete removes the entity (soft when supported). Translation rows are left
// in place; orphaned slots are never referenced again.
func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.entityName, err)
	}
	if !ok {
		return &NotFoundError{Entity: s.entityName, ID: id}
	}
	return nil
}

// DeleteMany mirrors Delete for a batch and returns how many rows were
// affected. Missing IDs are skipped, not an error.
func (s *Service[T]) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	affected, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete %s batch: %w", s.entityName, err)
	}
	return affected, nil
}

// Restore clears the soft-delete marker and returns the shaped entity.
func (s *Service[T]) Restore(ctx context.Context, id int64, lang string) (map[string]any, error) {
	ok, err := s.repo.Restore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.entityName, err)
	}
	if !ok {
		return nil, &NotFoundError{Entity: s.entityName, ID: id}
	}
	return s.Get(ctx, id, lang)
}

func (s *Service[T]) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service[T]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// bindTextRefs walks the entity type's tagged fields and binds each to a
// reference ID: a positive integer in the payload is adopted as-is, a plain
// string gets an allocated ID plus a pending translation write. Fields that
// already carry a reference ID keep it.
func (s *Service[T]) bindTextRefs(entity *T, payload map[string]any) ([]pendingText, error) {
	var pending []pendingText
	for _, fd := range textref.FieldsOf(entity) {
		value, present := payload[fd.DTOName]
		if !present {
			continue
		}
		if id, ok := positiveInt(value); ok {
			if err := textref.SetRefID(entity, fd, id); err != nil {
				return nil, err
			}
			continue
		}
		text, ok := stringValue(value)
		if !ok {
			continue
		}
		refID, bound := textref.RefID(entity, fd)
		if !bound {
			refID = s.allocRefID()
			if err := textref.SetRefID(entity, fd, refID); err != nil {
				return nil, err
			}
		}
		pending = append(pending, pendingText{refID: refID, text: text})
	}
	return pending, nil
}

// resolve shapes a batch of entities, folding translated text back under the
// DTO names while keeping the raw reference ID properties intact.
func (s *Service[T]) resolve(ctx context.Context, entities []T, lang, fallbackLang string) ([]map[string]any, error) {
	fields := textref.FieldsOf(new(T))

	seen := make(map[int64]struct{})
	refIDs := make([]int64, 0, len(entities)*len(fields))
	for i := range entities {
		for _, fd := range fields {
			if id, ok := textref.RefID(&entities[i], fd); ok {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					refIDs = append(refIDs, id)
				}
			}
		}
	}

	var resolved map[int64]string
	var err error
	if fallbackLang != "" {
		resolved, err = s.store.FindManyWithFallback(ctx, refIDs, lang, fallbackLang)
	} else {
		resolved, err = s.store.FindMany(ctx, refIDs, lang)
	}
	if err != nil {
		return nil, err
	}

	shaped := make([]map[string]any, 0, len(entities))
	for i := range entities {
		m, err := entityToMap(&entities[i])
		if err != nil {
			return nil, err
		}
		for _, fd := range fields {
			if id, ok := textref.RefID(&entities[i], fd); ok {
				if text, found := resolved[id]; found {
					m[fd.DTOName] = text
				}
			}
		}
		shaped = append(shaped, m)
	}
	return shaped, nil
}
