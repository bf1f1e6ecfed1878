package domain

import "sort"

// SearchResult is a single search or query hit.
type SearchResult struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]any
}

// SortByScore orders results by descending score. The sort is stable:
// equal scores keep their original response order.
func SortByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// FetchedRecord is one entry of a fetch response. Found is false when
// the remote index has no record for the requested id; partial results
// are the normal case for heterogeneous id sets.
type FetchedRecord struct {
	ID       string
	Found    bool
	Text     string
	Vector   []float32
	Metadata map[string]any
}
