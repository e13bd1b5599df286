package guide

import "context"

// AudioDurationProber measures the duration of an audio asset by URL.
// Probing is optional enrichment: failures never block the owning write.
type AudioDurationProber interface {
	Duration(ctx context.Context, audioURL string) (seconds int, err error)
}

// RouteDistanceCalculator estimates walking distance and duration for a
// route payload. Same optional-enrichment policy as audio probing.
type RouteDistanceCalculator interface {
	Measure(ctx context.Context, payload map[string]any) (distanceKM float64, durationMinutes int, err error)
}

// Collaborators are the optional external dependencies of the guide
// services. Nil members disable the corresponding enrichment.
type Collaborators struct {
	AudioProber        AudioDurationProber
	DistanceCalculator RouteDistanceCalculator
}
