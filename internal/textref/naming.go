package textref

import "strings"

const (
	longSuffix  = "TextRefId"
	shortSuffix = "RefId"
)

// DTOFieldName maps an entity reference property to its payload/response name
// by stripping the reference suffix: "nameTextRefId" -> "name",
// "audioUrlRefId" -> "audioUrl". Properties without a known suffix map to
// themselves.
func DTOFieldName(property string) string {
	if trimmed, ok := strings.CutSuffix(property, longSuffix); ok && trimmed != "" {
		return trimmed
	}
	if trimmed, ok := strings.CutSuffix(property, shortSuffix); ok && trimmed != "" {
		return trimmed
	}
	return property
}

// RefFieldName maps a payload name back to an entity reference property.
// Only the long suffix is reconstructed, so a property that was declared with
// the short "RefId" suffix does not round-trip.
func RefFieldName(dtoName string) string {
	return dtoName + longSuffix
}

// StorageName converts a camelCase property to its snake_case column name.
func StorageName(property string) string {
	var b strings.Builder
	b.Grow(len(property) + 4)
	for i, r := range property {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
