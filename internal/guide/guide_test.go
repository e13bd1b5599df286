package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"horse.fit/guia/internal/db"
	"horse.fit/guia/internal/repository"
	"horse.fit/guia/internal/service"
)

func newTestGuide(t *testing.T, collab Collaborators) *Guide {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&db.Translation{}, &db.City{}, &db.Category{}, &db.Location{},
		&db.Route{}, &db.Event{}, &db.Story{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return New(gdb, zerolog.Nop(), collab)
}

func itemInt64(t *testing.T, value any) int64 {
	t.Helper()
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			t.Fatalf("value %v is not an integer: %v", value, err)
		}
		return n
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		t.Fatalf("value %v (%T) is not numeric", value, value)
		return 0
	}
}

func TestCreateRejectsMissingName(t *testing.T) {
	t.Parallel()

	g := newTestGuide(t, Collaborators{})
	_, err := g.Cities.Create(context.Background(), map[string]any{"state": "BA"}, "pt")
	if !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchCitiesByTranslatedName(t *testing.T) {
	t.Parallel()

	g := newTestGuide(t, Collaborators{})
	ctx := context.Background()

	for _, name := range []string{"Salvador", "Recife", "São Paulo"} {
		if _, err := g.Cities.Create(ctx, map[string]any{"name": name, "state": "XX"}, "pt"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	page, err := g.Cities.List(ctx, repository.PageRequest{Limit: 10, Search: "salv"}, "pt")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one match, got total=%d len=%d", page.Total, len(page.Items))
	}
	if page.Items[0]["name"] != "Salvador" {
		t.Fatalf("expected Salvador, got %v", page.Items[0]["name"])
	}

	// The search matches translations, not a column, so a language with no
	// rows finds nothing.
	page, err = g.Cities.List(ctx, repository.PageRequest{
		Limit:   10,
		Search:  "salv",
		Filters: map[string]any{"searchLang": "en"},
	}, "pt")
	if err != nil {
		t.Fatalf("search en: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no en matches, got %d", page.Total)
	}
}

func TestCityFilterScopes(t *testing.T) {
	t.Parallel()

	g := newTestGuide(t, Collaborators{})
	ctx := context.Background()

	seed := []map[string]any{
		{"name": "Salvador", "state": "BA", "isCapital": true},
		{"name": "Ilhéus", "state": "BA"},
		{"name": "Recife", "state": "PE", "isCapital": true},
	}
	for _, payload := range seed {
		if _, err := g.Cities.Create(ctx, payload, "pt"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := g.Cities.List(ctx, repository.PageRequest{
		Limit:   10,
		Filters: map[string]any{"state": "ba"},
	}, "pt")
	if err != nil {
		t.Fatalf("filter state: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 BA cities, got %d", page.Total)
	}

	page, err = g.Cities.List(ctx, repository.PageRequest{
		Limit:   10,
		Filters: map[string]any{"state": "BA", "isCapital": true},
	}, "pt")
	if err != nil {
		t.Fatalf("filter capital: %v", err)
	}
	if page.Total != 1 || page.Items[0]["name"] != "Salvador" {
		t.Fatalf("expected only the BA capital, got %v", page.Items)
	}
}

type stubProber struct {
	seconds int
	err     error
	calls   int
}

func (s *stubProber) Duration(ctx context.Context, audioURL string) (int, error) {
	s.calls++
	return s.seconds, s.err
}

func TestStoryEnrichment(t *testing.T) {
	t.Parallel()

	prober := &stubProber{seconds: 95}
	g := newTestGuide(t, Collaborators{AudioProber: prober})
	ctx := context.Background()

	created, err := g.Stories.Create(ctx, map[string]any{
		"title":    "O Pelourinho",
		"body":     "As ladeiras de pedra guardam quatro séculos de história da cidade.",
		"audioUrl": "https://cdn.example.com/audio/pelourinho.mp3",
	}, "pt")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created["detectedLanguage"] != "pt" {
		t.Fatalf("expected detected language pt, got %v", created["detectedLanguage"])
	}
	if got := itemInt64(t, created["audioDurationSeconds"]); got != 95 {
		t.Fatalf("expected probed duration 95, got %d", got)
	}
	if prober.calls != 1 {
		t.Fatalf("expected one probe, got %d", prober.calls)
	}
}

func TestStoryEnrichmentProbeFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	prober := &stubProber{err: errors.New("unreachable")}
	g := newTestGuide(t, Collaborators{AudioProber: prober})

	created, err := g.Stories.Create(context.Background(), map[string]any{
		"title":    "Story without duration",
		"audioUrl": "https://cdn.example.com/audio/x.mp3",
	}, "en")
	if err != nil {
		t.Fatalf("expected create to succeed despite probe failure: %v", err)
	}
	if _, ok := created["audioDurationSeconds"]; ok {
		t.Fatalf("did not expect a duration, got %v", created["audioDurationSeconds"])
	}
}

type stubDistance struct {
	km      float64
	minutes int
	calls   int
}

func (s *stubDistance) Measure(ctx context.Context, payload map[string]any) (float64, int, error) {
	s.calls++
	return s.km, s.minutes, nil
}

func TestRouteEnrichment(t *testing.T) {
	t.Parallel()

	calc := &stubDistance{km: 3.4, minutes: 50}
	g := newTestGuide(t, Collaborators{DistanceCalculator: calc})
	ctx := context.Background()

	city, err := g.Cities.Create(ctx, map[string]any{"name": "Salvador", "state": "BA"}, "pt")
	if err != nil {
		t.Fatalf("create city: %v", err)
	}
	cityID := itemInt64(t, city["id"])

	created, err := g.Routes.Create(ctx, map[string]any{
		"cityId": cityID,
		"name":   "Centro Histórico a pé",
	}, "pt")
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if got := created["distanceKm"]; itemFloat(t, got) != 3.4 {
		t.Fatalf("expected calculated distance, got %v", got)
	}
	if got := itemInt64(t, created["durationMinutes"]); got != 50 {
		t.Fatalf("expected calculated duration, got %d", got)
	}

	// A payload that already carries the distance skips the calculator.
	if _, err := g.Routes.Create(ctx, map[string]any{
		"cityId":          cityID,
		"name":            "Orla de Itapuã",
		"distanceKm":      7.2,
		"durationMinutes": 95,
	}, "pt"); err != nil {
		t.Fatalf("create second route: %v", err)
	}
	if calc.calls != 1 {
		t.Fatalf("expected the calculator to be skipped, got %d calls", calc.calls)
	}
}

func itemFloat(t *testing.T, value any) float64 {
	t.Helper()
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			t.Fatalf("value %v is not a number: %v", value, err)
		}
		return f
	case float64:
		return v
	default:
		t.Fatalf("value %v (%T) is not numeric", value, value)
		return 0
	}
}
