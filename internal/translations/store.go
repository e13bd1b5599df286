// Package translations persists the per-language text rows behind text
// reference fields. The store never deletes rows on behalf of owning
// entities; orphaned slots are tolerated.
package translations

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"horse.fit/guia/internal/db"
)

type Store struct {
	gdb *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{gdb: gdb}
}

// WithTx returns a store bound to the given transaction handle.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	if s == nil || tx == nil {
		return s
	}
	return &Store{gdb: tx}
}

// Create inserts one translation row for a reference slot and language.
func (s *Store) Create(ctx context.Context, referenceID int64, languageCode, textContent string) error {
	if referenceID <= 0 {
		return fmt.Errorf("reference ID must be positive, got %d", referenceID)
	}
	row := db.Translation{
		ReferenceID:  referenceID,
		LanguageCode: languageCode,
		TextContent:  textContent,
	}
	if err := s.gdb.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create translation row: %w", err)
	}
	return nil
}

// Update rewrites the text of one existing row. Returns false when the row
// does not exist.
func (s *Store) Update(ctx context.Context, rowID int64, textContent string) (bool, error) {
	res := s.gdb.WithContext(ctx).
		Model(&db.Translation{}).
		Where("id = ?", rowID).
		Update("text_content", textContent)
	if res.Error != nil {
		return false, fmt.Errorf("update translation row: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Upsert writes text for a (reference, language) slot, updating the existing
// row in place when one exists. Concurrent writers to the same slot race as
// last-write-wins.
func (s *Store) Upsert(ctx context.Context, referenceID int64, languageCode, textContent string) error {
	if referenceID <= 0 {
		return fmt.Errorf("reference ID must be positive, got %d", referenceID)
	}
	row := db.Translation{
		ReferenceID:  referenceID,
		LanguageCode: languageCode,
		TextContent:  textContent,
	}
	err := s.gdb.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference_id"}, {Name: "language_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"text_content"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert translation row: %w", err)
	}
	return nil
}

// FindRow fetches one row by slot and language. Returns nil when absent.
func (s *Store) FindRow(ctx context.Context, referenceID int64, languageCode string) (*db.Translation, error) {
	var row db.Translation
	err := s.gdb.WithContext(ctx).
		Where("reference_id = ? AND language_code = ?", referenceID, languageCode).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find translation row: %w", err)
	}
	return &row, nil
}

// FindMany resolves a batch of reference IDs in one query and returns a
// referenceID -> text map for the given language. IDs without a row in that
// language are absent from the map.
func (s *Store) FindMany(ctx context.Context, referenceIDs []int64, languageCode string) (map[int64]string, error) {
	resolved := make(map[int64]string, len(referenceIDs))
	if len(referenceIDs) == 0 {
		return resolved, nil
	}

	var rows []db.Translation
	err := s.gdb.WithContext(ctx).
		Where("reference_id IN ? AND language_code = ?", referenceIDs, languageCode).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find translation rows: %w", err)
	}

	for _, row := range rows {
		resolved[row.ReferenceID] = row.TextContent
	}
	return resolved, nil
}

// FindManyWithFallback resolves a batch in the primary language and fills the
// gaps from the fallback language, issuing at most two queries.
func (s *Store) FindManyWithFallback(ctx context.Context, referenceIDs []int64, primaryLang, fallbackLang string) (map[int64]string, error) {
	resolved, err := s.FindMany(ctx, referenceIDs, primaryLang)
	if err != nil {
		return nil, err
	}
	if fallbackLang == "" || fallbackLang == primaryLang || len(resolved) == len(referenceIDs) {
		return resolved, nil
	}

	missing := make([]int64, 0, len(referenceIDs)-len(resolved))
	for _, id := range referenceIDs {
		if _, ok := resolved[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	fallback, err := s.FindMany(ctx, missing, fallbackLang)
	if err != nil {
		return nil, err
	}
	for id, text := range fallback {
		resolved[id] = text
	}
	return resolved, nil
}
