package utils

// KeySet tracks comparable keys already seen. It is not safe for concurrent
// use; the sync job runs on a single goroutine.
type KeySet[K comparable] struct {
	seen map[K]struct{}
}

// NewKeySet creates an empty KeySet.
func NewKeySet[K comparable]() *KeySet[K] {
	return &KeySet[K]{seen: make(map[K]struct{})}
}

// Add returns true if the key was newly added, false if already present.
func (s *KeySet[K]) Add(key K) bool {
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Size returns the number of unique keys tracked.
func (s *KeySet[K]) Size() int {
	return len(s.seen)
}

// LastByKey keeps the last element for every key, in the order each key's
// final occurrence appears in items.
func LastByKey[T any, K comparable](items []T, key func(T) K) []T {
	seen := NewKeySet[K]()
	keep := make([]bool, len(items))
	// Walking backwards, the first sighting of a key is its last occurrence.
	for i := len(items) - 1; i >= 0; i-- {
		keep[i] = seen.Add(key(items[i]))
	}
	if seen.Size() == len(items) {
		return items
	}

	out := make([]T, 0, seen.Size())
	for i, it := range items {
		if keep[i] {
			out = append(out, it)
		}
	}
	return out
}
