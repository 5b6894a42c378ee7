// Package model contains domain models passed between layers.
package model

import "strings"

// Sentinel marks a metric that could not be extracted.
const Sentinel = -1

// Group labels the roster a subject was read from.
type Group string

// Known roster groups, in the order a cycle visits them by default.
const (
	GroupStudents Group = "students"
	GroupTeachers Group = "teachers"
)

// DefaultGroups returns the groups scraped when none are configured.
func DefaultGroups() []Group {
	return []Group{GroupStudents, GroupTeachers}
}

// Subject is one monitored profile read from a roster line.
type Subject struct {
	Key   string // opaque profile key, e.g. "AB1234CD"
	Name  string // display name as written in the roster
	Group Group
}

// Record is the per-subject result of one scrape.
// The JSON shape is the snapshot file format.
type Record struct {
	Name      string `json:"name"`
	HIndex    int    `json:"h_index"`
	Citations int    `json:"citations"`
	Group     Group  `json:"type,omitempty"`
}

// Failed returns the discard-sentinel record.
func Failed() Record {
	return Record{Name: "", HIndex: Sentinel, Citations: Sentinel}
}

// Discarded reports whether r is a discard-sentinel record.
func (r Record) Discarded() bool {
	return r.Citations == Sentinel
}

// Keep returns the records that are not discard-sentinels, preserving order.
// The result is never nil.
func Keep(records []Record) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Discarded() {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// CleanName removes newline characters from a roster display name.
func CleanName(name string) string {
	return strings.ReplaceAll(name, "\n", "")
}
