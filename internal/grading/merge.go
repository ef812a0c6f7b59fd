package grading

import "wetmill-backend/internal/models"

// MergeValues copies every non-empty value of src into dst and returns dst.
// A nil dst is allocated.
func MergeValues[V ~string](dst, src map[string]V) map[string]V {
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	for k, v := range src {
		if v == "" {
			continue
		}
		dst[k] = v
	}
	return dst
}

// OnlyKeys returns the entries of m whose key is in keys.
func OnlyKeys[V any](m map[string]V, keys []string) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// MergeScreens merges per-grade-key screen breakdowns size by size.
func MergeScreens(dst, src map[string]models.Screen) map[string]models.Screen {
	if dst == nil {
		dst = make(map[string]models.Screen, len(src))
	}
	for key, screen := range src {
		dst[key] = MergeScreen(dst[key], screen)
	}
	return dst
}

// MergeScreen merges one breakdown. Sizes missing from src are kept.
func MergeScreen(dst, src models.Screen) models.Screen {
	if dst == nil {
		dst = models.EmptyScreen()
	}
	return MergeValues(dst, src)
}
