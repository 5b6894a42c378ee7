// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	HIndex    int    `json:"h_index"`
	Citations int    `json:"citations"`
	Group     string `json:"type,omitempty"`
}

// SortKey selects the metric a leaderboard is ordered by.
type SortKey string

// Supported leaderboard orderings.
const (
	SortByHIndex    SortKey = "h_index"
	SortByCitations SortKey = "citations"
)

// ParseSortKey maps a query value to a SortKey; empty means h_index.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case "", SortByHIndex:
		return SortByHIndex, true
	case SortByCitations:
		return SortByCitations, true
	default:
		return "", false
	}
}
