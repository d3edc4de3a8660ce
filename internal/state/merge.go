package state

import "sort"

// Keyed is anything with a stable identity.
type Keyed interface {
	Key() string
}

// MergeByID combines two lists by id. When both sides carry the same
// id the incoming copy wins. Order of first appearance is preserved:
// existing entries keep their positions, unseen incoming entries are
// appended in their own order. Merging the same input twice yields the
// same result as merging it once.
func MergeByID[T Keyed](existing, incoming []T) []T {
	index := make(map[string]int, len(existing))
	merged := make([]T, len(existing))
	copy(merged, existing)

	for i, item := range existing {
		index[item.Key()] = i
	}

	for _, item := range incoming {
		if i, ok := index[item.Key()]; ok {
			merged[i] = item
			continue
		}
		index[item.Key()] = len(merged)
		merged = append(merged, item)
	}

	return merged
}

// SortBy sorts in place by the given less function with a stable sort,
// so equal elements keep their merge order.
func SortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}
