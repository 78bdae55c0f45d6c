package bhavbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// Rename records an exchange ticker change: rows published on or after
// Effective use the new symbol, older rows still carry the old one.
type Rename struct {
	Old       string
	New       string
	Effective Date
}

// RenameBook resolves a present-day symbol to the symbol an exchange file of
// a given date would have used. Chained renames (A→B→C) are followed.
type RenameBook []Rename

// SymbolOn returns the symbol under which 'current' was listed on 'day'.
// With no applicable rename it returns 'current' unchanged.
func (b RenameBook) SymbolOn(current string, day Date) string {
	// Walk renames newest first so chains unwind in order.
	sorted := make([]Rename, len(b))
	copy(sorted, b)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[j].Effective.Before(sorted[i].Effective) })

	symbol := current
	for _, r := range sorted {
		if r.New == symbol && day.Before(r.Effective) {
			symbol = r.Old
		}
	}
	return symbol
}

// Current returns the present-day symbol for a possibly outdated one.
func (b RenameBook) Current(symbol string) string {
	sorted := make([]Rename, len(b))
	copy(sorted, b)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Effective.Before(sorted[j].Effective) })

	for _, r := range sorted {
		if r.Old == symbol {
			symbol = r.New
		}
	}
	return symbol
}

// DecodeRenameBook reads a rename book from CSV with columns OLD, NEW,
// EFFECTIVE (dates in 2006-01-02).
func DecodeRenameBook(r io.Reader) (RenameBook, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rename book: %w", err)
	}
	var book RenameBook
	for i, rec := range records {
		if i == 0 || len(rec) < 3 {
			continue // header
		}
		effective, err := ParseDate(rec[2])
		if err != nil {
			return nil, fmt.Errorf("rename book line %d: %w", i+1, err)
		}
		book = append(book, Rename{Old: rec[0], New: rec[1], Effective: effective})
	}
	return book, nil
}
