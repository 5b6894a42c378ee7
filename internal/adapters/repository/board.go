package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/hiscores/internal/domain/model"
	"github.com/okian/hiscores/internal/domain/types"
)

// Board holds the latest snapshot in memory for ranked reads.
//
// Ordering: metric DESC, then name ASC (deterministic). Ranks are 1-based
// positions in that order.
type Board struct {
	mu          sync.RWMutex
	records     []model.Record
	byHIndex    []types.Entry
	byCitations []types.Entry
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{records: []model.Record{}}
}

// Replace swaps the board contents for records. Discard-sentinels are dropped.
func (b *Board) Replace(_ context.Context, records []model.Record) {
	kept := model.Keep(records)
	byHIndex := rank(kept, types.SortByHIndex)
	byCitations := rank(kept, types.SortByCitations)

	b.mu.Lock()
	b.records = kept
	b.byHIndex = byHIndex
	b.byCitations = byCitations
	b.mu.Unlock()
}

// All returns a copy of the snapshot in its original order.
func (b *Board) All(_ context.Context) []model.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Record, len(b.records))
	copy(out, b.records)
	return out
}

// TopN returns up to n ranked entries. A non-empty group restricts the
// board to that group and ranks are recomputed within it.
func (b *Board) TopN(_ context.Context, n int, group model.Group, key types.SortKey) ([]types.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	b.mu.RLock()
	ordered := b.ordered(key)
	out := make([]types.Entry, 0, min(n, len(ordered)))
	for _, e := range ordered {
		if len(out) == n {
			break
		}
		if group != "" && e.Group != string(group) {
			continue
		}
		out = append(out, e)
	}
	b.mu.RUnlock()

	if group != "" {
		for i := range out {
			out[i].Rank = i + 1
		}
	}
	return out, nil
}

// Rank returns the entry for name. When the name appears more than once the
// best placed entry wins.
func (b *Board) Rank(_ context.Context, name string, key types.SortKey) (types.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.ordered(key) {
		if e.Name == name {
			return e, nil
		}
	}
	return types.Entry{}, ErrNotFound
}

// Count returns the number of records on the board.
func (b *Board) Count(_ context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// ordered assumes the read lock is held.
func (b *Board) ordered(key types.SortKey) []types.Entry {
	if key == types.SortByCitations {
		return b.byCitations
	}
	return b.byHIndex
}

func rank(records []model.Record, key types.SortKey) []types.Entry {
	entries := make([]types.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, types.Entry{
			Name:      r.Name,
			HIndex:    r.HIndex,
			Citations: r.Citations,
			Group:     string(r.Group),
		})
	}

	primary := func(e types.Entry) int { return e.HIndex }
	secondary := func(e types.Entry) int { return e.Citations }
	if key == types.SortByCitations {
		primary, secondary = secondary, primary
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if pi, pj := primary(entries[i]), primary(entries[j]); pi != pj {
			return pi > pj
		}
		if si, sj := secondary(entries[i]), secondary(entries[j]); si != sj {
			return si > sj
		}
		return entries[i].Name < entries[j].Name
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
