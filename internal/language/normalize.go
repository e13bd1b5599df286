package language

import "strings"

// DefaultCode is the platform's fallback language.
const DefaultCode = "pt"

var supportedCodes = map[string]struct{}{
	"pt": {},
	"en": {},
	"es": {},
}

// NormalizeTag normalizes a language tag to lowercase and "-" separators.
// Returns an empty string when the value is blank or contains invalid characters.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := strings.Split(trimmed, "-")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isAlphaLower(part) {
			return ""
		}
		normalized = append(normalized, part)
	}

	if len(normalized) == 0 {
		return ""
	}
	return strings.Join(normalized, "-")
}

// NormalizeCode returns the primary language subtag (for example, "pt" from "pt-BR").
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

// IsSupported reports whether the normalized code belongs to the platform's
// language set. Callers must reject or normalize codes before handing them to
// the persistence core.
func IsSupported(code string) bool {
	_, ok := supportedCodes[NormalizeCode(code)]
	return ok
}

// SupportedCodes lists the platform languages in stable order.
func SupportedCodes() []string {
	return []string{"pt", "en", "es"}
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
