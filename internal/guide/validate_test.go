package guide

import (
	"strings"
	"testing"

	"horse.fit/guia/internal/db"
	"horse.fit/guia/internal/service"
)

func TestValidatePayloadAcceptsCity(t *testing.T) {
	t.Parallel()

	err := validatePayload("city", map[string]any{
		"name":      "Salvador",
		"state":     "BA",
		"isCapital": true,
		"latitude":  -12.97,
	})
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidatePayloadRejectsBadShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"state pattern", map[string]any{"name": "Salvador", "state": "Bahia"}},
		{"empty name", map[string]any{"name": "", "state": "BA"}},
		{"latitude range", map[string]any{"name": "Salvador", "state": "BA", "latitude": 123.0}},
		{"ref id type", map[string]any{"nameTextRefId": "not-a-number", "state": "BA"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validatePayload("city", tt.payload)
			if !service.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidatePayloadUnknownEntity(t *testing.T) {
	t.Parallel()

	err := validatePayload("spaceship", map[string]any{})
	if err == nil || service.IsValidation(err) {
		t.Fatalf("expected a plain error for an unknown entity, got %v", err)
	}
}

func TestRequireTextRefs(t *testing.T) {
	t.Parallel()

	// Missing required name entirely.
	err := requireTextRefs("city", db.City{}, map[string]any{"state": "BA"})
	if !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected the missing field in the message, got %q", err.Error())
	}

	// Either the plain string or the resolved reference ID satisfies it.
	if err := requireTextRefs("city", db.City{}, map[string]any{"name": "Salvador"}); err != nil {
		t.Fatalf("plain string: %v", err)
	}
	if err := requireTextRefs("city", db.City{}, map[string]any{"nameTextRefId": int64(42)}); err != nil {
		t.Fatalf("reference id: %v", err)
	}

	// Optional fields never gate the create.
	if err := requireTextRefs("story", db.Story{}, map[string]any{"title": "A praia"}); err != nil {
		t.Fatalf("optional fields should not be required: %v", err)
	}
}
