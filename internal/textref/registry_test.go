package textref

import "testing"

type museum struct {
	ID               int64  `json:"id"`
	NameTextRefID    int64  `json:"nameTextRefId"`
	SummaryTextRefID *int64 `json:"summaryTextRefId"`
	AudioURLRefID    *int64 `json:"audioUrlRefId"`
	Visitors         int    `json:"visitors"`
}

func TestRegisterAndFieldsOf(t *testing.T) {
	MustRegister(museum{}, "nameTextRefId", "summaryTextRefId", "audioUrlRefId")

	fields := FieldsOf(&museum{})
	if len(fields) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(fields))
	}

	name := fields[0]
	if name.PropertyName != "nameTextRefId" || name.DTOName != "name" {
		t.Fatalf("unexpected name descriptor: %+v", name)
	}
	if name.StorageName != "name_text_ref_id" {
		t.Fatalf("unexpected storage name: %q", name.StorageName)
	}
	if name.Optional {
		t.Fatalf("expected non-pointer field to be required")
	}

	summary := fields[1]
	if !summary.Optional {
		t.Fatalf("expected pointer field to be optional")
	}

	audio := fields[2]
	if audio.DTOName != "audioUrl" {
		t.Fatalf("expected short suffix to strip, got %q", audio.DTOName)
	}

	// Same list, same order, every call.
	again := FieldsOf(museum{})
	for i := range fields {
		if fields[i].PropertyName != again[i].PropertyName {
			t.Fatalf("descriptor order is not stable")
		}
	}
}

func TestRegisterUnknownProperty(t *testing.T) {
	t.Parallel()

	if err := Register(museum{}, "nopeTextRefId"); err == nil {
		t.Fatalf("expected error for unknown property")
	}
}

func TestRefIDAccess(t *testing.T) {
	t.Parallel()

	type venue struct {
		NameTextRefID    int64  `json:"nameTextRefId"`
		SummaryTextRefID *int64 `json:"summaryTextRefId"`
	}
	if err := Register(venue{}, "nameTextRefId", "summaryTextRefId"); err != nil {
		t.Fatalf("register: %v", err)
	}
	fields := FieldsOf(venue{})

	v := venue{}
	if _, ok := RefID(&v, fields[0]); ok {
		t.Fatalf("did not expect a reference ID on a zero value")
	}
	if _, ok := RefID(&v, fields[1]); ok {
		t.Fatalf("did not expect a reference ID on a nil pointer field")
	}

	if err := SetRefID(&v, fields[0], 42); err != nil {
		t.Fatalf("set required field: %v", err)
	}
	if err := SetRefID(&v, fields[1], 43); err != nil {
		t.Fatalf("set optional field: %v", err)
	}

	if id, ok := RefID(v, fields[0]); !ok || id != 42 {
		t.Fatalf("unexpected required ref ID: %d ok=%v", id, ok)
	}
	if id, ok := RefID(&v, fields[1]); !ok || id != 43 {
		t.Fatalf("unexpected optional ref ID: %d ok=%v", id, ok)
	}
}

func TestNamingRules(t *testing.T) {
	t.Parallel()

	if got := DTOFieldName("nameTextRefId"); got != "name" {
		t.Fatalf("unexpected DTO name: %q", got)
	}
	if got := DTOFieldName("audioUrlRefId"); got != "audioUrl" {
		t.Fatalf("unexpected DTO name: %q", got)
	}
	if got := DTOFieldName("plainField"); got != "plainField" {
		t.Fatalf("expected unsuffixed property to map to itself, got %q", got)
	}
	if got := RefFieldName("name"); got != "nameTextRefId" {
		t.Fatalf("unexpected reference field name: %q", got)
	}
	// The short suffix is not reconstructed: the round trip loses fidelity.
	if got := RefFieldName(DTOFieldName("audioUrlRefId")); got != "audioUrlTextRefId" {
		t.Fatalf("unexpected short-suffix round trip: %q", got)
	}
	if got := StorageName("audioUrlRefId"); got != "audio_url_ref_id" {
		t.Fatalf("unexpected storage name: %q", got)
	}
}

func TestNewRefID(t *testing.T) {
	t.Parallel()

	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewRefID()
		if id <= 0 {
			t.Fatalf("expected positive reference ID, got %d", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate reference ID in 1000 draws: %d", id)
		}
		seen[id] = struct{}{}
	}
}
