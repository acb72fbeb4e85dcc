// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes items whose key was already seen, keeping the first
// occurrence and the original order.
//
// Example:
//
//	districts := []storage.District{{ID: 1}, {ID: 3}, {ID: 1}}
//	unique := sliceutil.Deduplicate(districts, func(d storage.District) int64 { return d.ID })
//	// Result: [{ID: 1}, {ID: 3}]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		key := keyFunc(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}
	return result
}
