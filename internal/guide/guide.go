// Package guide wires the generic persistence core to the tourism guide's
// entity types: cities, categories, locations, routes, events and stories.
package guide

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"horse.fit/guia/internal/db"
	"horse.fit/guia/internal/langdetect"
	"horse.fit/guia/internal/repository"
	"horse.fit/guia/internal/service"
	"horse.fit/guia/internal/translations"
)

// Guide bundles one translation-aware service per entity type.
type Guide struct {
	Cities     *service.Service[db.City]
	Categories *service.Service[db.Category]
	Locations  *service.Service[db.Location]
	Routes     *service.Service[db.Route]
	Events     *service.Service[db.Event]
	Stories    *service.Service[db.Story]
}

func New(gdb *gorm.DB, logger zerolog.Logger, collab Collaborators) *Guide {
	store := translations.NewStore(gdb)

	return &Guide{
		Cities: service.New(
			gdb,
			repository.New(gdb, repository.WithSearchScope[db.City](citySearchScope)),
			store,
			"city",
			service.WithLogger[db.City](logger),
			service.WithHooks(standardHooks[db.City]("city", db.City{}, nil)),
		),
		Categories: service.New(
			gdb,
			repository.New(gdb, repository.WithSearchScope[db.Category](categorySearchScope)),
			store,
			"category",
			service.WithLogger[db.Category](logger),
			service.WithHooks(standardHooks[db.Category]("category", db.Category{}, nil)),
		),
		Locations: service.New(
			gdb,
			repository.New(gdb, repository.WithSearchScope[db.Location](locationSearchScope)),
			store,
			"location",
			service.WithLogger[db.Location](logger),
			service.WithHooks(standardHooks[db.Location]("location", db.Location{}, nil)),
		),
		Routes: service.New(
			gdb,
			repository.New(gdb, repository.WithSearchScope[db.Route](routeSearchScope)),
			store,
			"route",
			service.WithLogger[db.Route](logger),
			service.WithHooks(standardHooks[db.Route]("route", db.Route{}, routeEnricher(logger, collab))),
		),
		Events: service.New(
			gdb,
			repository.New(gdb, repository.WithSearchScope[db.Event](eventSearchScope)),
			store,
			"event",
			service.WithLogger[db.Event](logger),
			service.WithHooks(standardHooks[db.Event]("event", db.Event{}, nil)),
		),
		Stories: service.New(
			gdb,
			repository.New(gdb, repository.WithSearchScope[db.Story](storySearchScope)),
			store,
			"story",
			service.WithLogger[db.Story](logger),
			service.WithHooks(standardHooks[db.Story]("story", db.Story{}, storyEnricher(logger, collab))),
		),
	}
}

// standardHooks builds the standard hook set for one entity: schema validation on
// both writes, required text-reference presence on create, plus an optional
// enricher.
func standardHooks[T any](entityName string, model T, enrich func(ctx context.Context, payload map[string]any)) service.Hooks[T] {
	return service.Hooks[T]{
		BeforeCreate: func(ctx context.Context, payload map[string]any) error {
			if err := validatePayload(entityName, payload); err != nil {
				return err
			}
			return requireTextRefs(entityName, model, payload)
		},
		BeforeUpdate: func(ctx context.Context, id int64, payload map[string]any) error {
			return validatePayload(entityName, payload)
		},
		Enrich: enrich,
	}
}

// storyEnricher fills detectedLanguage from the story body and, when an
// audio prober is configured, audioDurationSeconds from the audio URL.
// Enrichment is best effort and never blocks the write.
func storyEnricher(logger zerolog.Logger, collab Collaborators) func(ctx context.Context, payload map[string]any) {
	return func(ctx context.Context, payload map[string]any) {
		sample, _ := payload["body"].(string)
		if sample == "" {
			sample, _ = payload["title"].(string)
		}
		if code := langdetect.DetectISO6391(sample); code != "" {
			payload["detectedLanguage"] = code
		}

		audioURL, _ := payload["audioUrl"].(string)
		if audioURL == "" || collab.AudioProber == nil {
			return
		}
		seconds, err := collab.AudioProber.Duration(ctx, audioURL)
		if err != nil {
			logger.Warn().Err(err).Str("audio_url", audioURL).Msg("audio duration probe failed, leaving field unset")
			return
		}
		payload["audioDurationSeconds"] = seconds
	}
}

// routeEnricher fills distanceKm/durationMinutes from the distance
// calculator unless the payload already carries them.
func routeEnricher(logger zerolog.Logger, collab Collaborators) func(ctx context.Context, payload map[string]any) {
	return func(ctx context.Context, payload map[string]any) {
		if collab.DistanceCalculator == nil {
			return
		}
		if _, ok := payload["distanceKm"]; ok {
			return
		}
		km, minutes, err := collab.DistanceCalculator.Measure(ctx, payload)
		if err != nil {
			logger.Warn().Err(err).Msg("route distance calculation failed, leaving fields unset")
			return
		}
		payload["distanceKm"] = km
		payload["durationMinutes"] = minutes
	}
}
