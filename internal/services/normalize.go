package services

import "strings"

// NormalizeUsername lowers, trims and strips a leading @ so that all
// comparisons across the engine happen on one canonical form.
func NormalizeUsername(raw string) string {
	value := strings.TrimSpace(strings.ToLower(raw))
	value = strings.TrimPrefix(value, "@")
	return strings.TrimSpace(value)
}

// ExtractUsername pulls a username out of the heterogeneous shapes the
// engagement store carries: plain strings plus legacy objects with nested
// user identifiers. Precedence: nested object id, then plain string fields,
// then discard (empty result). Every extracted value is normalized.
func ExtractUsername(raw interface{}) string {
	switch value := raw.(type) {
	case string:
		return NormalizeUsername(value)
	case map[string]interface{}:
		if nested, ok := value["user"].(map[string]interface{}); ok {
			if username := firstStringField(nested, "unique_id", "uniqueId", "username"); username != "" {
				return username
			}
		}
		return firstStringField(value, "unique_id", "uniqueId", "username")
	default:
		return ""
	}
}

func firstStringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if raw, ok := m[key].(string); ok {
			if username := NormalizeUsername(raw); username != "" {
				return username
			}
		}
	}
	return ""
}
