package mr

import (
	"cmp"
	"maps"
	"slices"
)

// FreqMap is a histogram of key occurrences.
type FreqMap map[string]uint64

// Inc increments key by one.
func (m FreqMap) Inc(key string) { m[key]++ }

// IncBy increments key by n.
func (m FreqMap) IncBy(key string, n uint64) { m[key] += n }

// Add adds every count of other into m.
func (m FreqMap) Add(other FreqMap) {
	for k, v := range other {
		m[k] += v
	}
}

// Sum returns the total number of occurrences.
func (m FreqMap) Sum() uint64 {
	var total uint64
	for _, v := range m {
		total += v
	}
	return total
}

// Keys returns the keys in ascending order.
func (m FreqMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Entry is one key of a FreqMap with its count.
type Entry struct {
	Key   string
	Count uint64
}

// Top returns the n most frequent keys, most frequent first; ties are ordered by key.
// n <= 0 returns every key.
func (m FreqMap) Top(n int) []Entry {
	entries := make([]Entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, Entry{Key: k, Count: v})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// FreqMapRegistry holds the frequency maps finalized by a stage, keyed by name.
// It is read-only once handed to the next stage.
type FreqMapRegistry map[string]FreqMap

// Find returns the map registered under name.
func (r FreqMapRegistry) Find(name string) (FreqMap, bool) {
	m, ok := r[name]
	return m, ok
}
