package random

import "math/rand/v2"

// Sample returns n distinct elements of items chosen uniformly at random,
// using a partial Fisher-Yates shuffle over a copy. items is not modified.
// n is clamped to [0, len(items)].
func Sample[T any](r *rand.Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return []T{}
	}

	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
