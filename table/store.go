package table

import (
	"sync"
	"sync/atomic"
)

// rowStore holds the rows of a table together with the original strings of
// their double values. Implementations own any synchronisation; the table
// logic never locks.
type rowStore interface {
	Len() int
	// Entry returns row i and its original strings as one consistent unit.
	// The returned entry must not be modified.
	Entry(i int) (rowEntry, bool)
	Rows() []*Row
	// Append stores r and its original strings as one unit and returns the row index.
	Append(r *Row, originals map[string]string) int
	// Update replaces the cell of cell.column in a copy of row i and sets or
	// removes the original string of that column. False when i is out of range.
	Update(i int, cell *Cell, original string, keep bool) bool
	Clear()
}

// rowEntry pairs a row with its original strings.
type rowEntry struct {
	row       *Row
	originals map[string]string
}

func (this rowEntry) original(column string) (string, bool) {
	original, ok := this.originals[column]
	return original, ok
}

// updated returns a new entry with cell swapped into a copy of the row.
func (this rowEntry) updated(cell *Cell, original string, keep bool) rowEntry {
	row := this.row.Clone()
	column := cell.column.Name()
	row.cells[column] = cell

	originals := copyOriginals(this.originals)
	if keep {
		originals[column] = original
	} else {
		delete(originals, column)
	}
	return rowEntry{row: row, originals: originals}
}

// sliceStore is the single-goroutine store.
type sliceStore struct {
	entries []rowEntry
}

func newSliceStore() *sliceStore {
	return &sliceStore{}
}

func (this *sliceStore) Len() int {
	return len(this.entries)
}

func (this *sliceStore) Entry(i int) (rowEntry, bool) {
	if i < 0 || i >= len(this.entries) {
		return rowEntry{}, false
	}
	return this.entries[i], true
}

func (this *sliceStore) Rows() []*Row {
	return entryRows(this.entries)
}

func (this *sliceStore) Append(r *Row, originals map[string]string) int {
	this.entries = append(this.entries, rowEntry{row: r, originals: copyOriginals(originals)})
	return len(this.entries) - 1
}

func (this *sliceStore) Update(i int, cell *Cell, original string, keep bool) bool {
	if i < 0 || i >= len(this.entries) {
		return false
	}
	this.entries[i] = this.entries[i].updated(cell, original, keep)
	return true
}

func (this *sliceStore) Clear() {
	this.entries = nil
}

// cowStore publishes copy-on-write snapshots of its entries so readers never
// block and never see a row without its original strings. Writers serialise
// on mu, which also covers the copy of the row they modify.
type cowStore struct {
	mu      sync.Mutex
	entries atomic.Value // []rowEntry
}

func newCowStore() *cowStore {
	s := &cowStore{}
	s.entries.Store([]rowEntry{})
	return s
}

func (this *cowStore) snapshot() []rowEntry {
	return this.entries.Load().([]rowEntry)
}

func (this *cowStore) Len() int {
	return len(this.snapshot())
}

func (this *cowStore) Entry(i int) (rowEntry, bool) {
	entries := this.snapshot()
	if i < 0 || i >= len(entries) {
		return rowEntry{}, false
	}
	return entries[i], true
}

func (this *cowStore) Rows() []*Row {
	return entryRows(this.snapshot())
}

func (this *cowStore) Append(r *Row, originals map[string]string) int {
	this.mu.Lock()
	defer this.mu.Unlock()

	cur := this.snapshot()
	next := make([]rowEntry, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, rowEntry{row: r, originals: copyOriginals(originals)})
	this.entries.Store(next)
	return len(cur)
}

func (this *cowStore) Update(i int, cell *Cell, original string, keep bool) bool {
	this.mu.Lock()
	defer this.mu.Unlock()

	cur := this.snapshot()
	if i < 0 || i >= len(cur) {
		return false
	}
	next := make([]rowEntry, len(cur))
	copy(next, cur)
	next[i] = cur[i].updated(cell, original, keep)
	this.entries.Store(next)
	return true
}

func (this *cowStore) Clear() {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.entries.Store([]rowEntry{})
}

func entryRows(entries []rowEntry) []*Row {
	out := make([]*Row, len(entries))
	for i, e := range entries {
		out[i] = e.row
	}
	return out
}

func copyOriginals(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
