package translations

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"horse.fit/guia/internal/db"
	"horse.fit/guia/internal/textref"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.Translation{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return NewStore(gdb)
}

func TestCreateAndFindRow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	refID := textref.NewRefID()
	if err := store.Create(ctx, refID, "pt", "Pelourinho"); err != nil {
		t.Fatalf("create: %v", err)
	}

	row, err := store.FindRow(ctx, refID, "pt")
	if err != nil {
		t.Fatalf("find row: %v", err)
	}
	if row == nil || row.TextContent != "Pelourinho" {
		t.Fatalf("unexpected row: %+v", row)
	}

	missing, err := store.FindRow(ctx, refID, "en")
	if err != nil {
		t.Fatalf("find missing row: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing language, got %+v", missing)
	}
}

func TestCreateRejectsNonPositiveReference(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Create(context.Background(), 0, "pt", "texto"); err == nil {
		t.Fatalf("expected error for non-positive reference ID")
	}
}

func TestUpsertKeepsSlotUnique(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	refID := textref.NewRefID()
	if err := store.Upsert(ctx, refID, "pt", "Salvador"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, refID, "pt", "Salvador da Bahia"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := store.gdb.Model(&db.Translation{}).Where("reference_id = ?", refID).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row per slot and language, got %d", count)
	}

	row, err := store.FindRow(ctx, refID, "pt")
	if err != nil {
		t.Fatalf("find row: %v", err)
	}
	if row.TextContent != "Salvador da Bahia" {
		t.Fatalf("expected last write to win, got %q", row.TextContent)
	}
}

func TestUpdateRow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	refID := textref.NewRefID()
	if err := store.Create(ctx, refID, "es", "playa"); err != nil {
		t.Fatalf("create: %v", err)
	}
	row, err := store.FindRow(ctx, refID, "es")
	if err != nil {
		t.Fatalf("find row: %v", err)
	}

	ok, err := store.Update(ctx, row.ID, "playa urbana")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatalf("expected update to affect the row")
	}

	ok, err = store.Update(ctx, row.ID+999, "nadie")
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if ok {
		t.Fatalf("did not expect an affected row for a missing ID")
	}
}

func TestFindManyMatchesNaiveLookup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	refIDs := make([]int64, 0, 8)
	for i := 0; i < 8; i++ {
		id := textref.NewRefID()
		refIDs = append(refIDs, id)
		// leave every third slot without a pt row
		if i%3 == 2 {
			continue
		}
		if err := store.Create(ctx, id, "pt", fmt.Sprintf("texto %d", i)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	batched, err := store.FindMany(ctx, refIDs, "pt")
	if err != nil {
		t.Fatalf("find many: %v", err)
	}

	for _, id := range refIDs {
		row, err := store.FindRow(ctx, id, "pt")
		if err != nil {
			t.Fatalf("find row: %v", err)
		}
		text, found := batched[id]
		if row == nil {
			if found {
				t.Fatalf("batched lookup returned text for missing slot %d", id)
			}
			continue
		}
		if !found || text != row.TextContent {
			t.Fatalf("batched lookup disagrees with naive lookup for slot %d", id)
		}
	}
}

func TestFindManyEmptyInput(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	resolved, err := store.FindMany(context.Background(), nil, "pt")
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("expected empty map, got %v", resolved)
	}
}

func TestFindManyWithFallback(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	both := textref.NewRefID()
	ptOnly := textref.NewRefID()
	neither := textref.NewRefID()

	if err := store.Create(ctx, both, "en", "Lighthouse"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, both, "pt", "Farol"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, ptOnly, "pt", "Elevador"); err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved, err := store.FindManyWithFallback(ctx, []int64{both, ptOnly, neither}, "en", "pt")
	if err != nil {
		t.Fatalf("find many with fallback: %v", err)
	}

	if resolved[both] != "Lighthouse" {
		t.Fatalf("expected primary language to win, got %q", resolved[both])
	}
	if resolved[ptOnly] != "Elevador" {
		t.Fatalf("expected fallback text, got %q", resolved[ptOnly])
	}
	if _, found := resolved[neither]; found {
		t.Fatalf("did not expect text for a slot with no rows")
	}
}
