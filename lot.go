package bhavbook

import (
	"iter"
	"regexp"
)

// Exchange flags as they appear in the holdings table.
const (
	NSE = "NSE"
	BSE = "BSE"
)

// Lot is one row of the holdings table: a single purchase of a single
// instrument, held until (optionally) disposed. The table is human-curated,
// one row per lot.
type Lot struct {
	Name     string // human-readable share name
	Symbol   string // exchange symbol
	Exchange string // NSE or BSE
	Broker   string
	Acquired Date
	Disposed Date // zero while the lot is still held
	Quantity int64
	Cost     Money  // cost per share
	NetCost  Money  // total net cost of the lot
	NetSale  Money  // total net sale proceeds, set when disposed
	File     string // source file tag

	// Computed on the final day of a walk, for the persisted table.
	LastPrice Money
	LastValue Money
}

// HeldOn reports whether the lot is held on the given date: acquired on or
// before, and not disposed before it.
func (l *Lot) HeldOn(on Date) bool {
	if l.Acquired.IsZero() || l.Acquired.After(on) {
		return false
	}
	return l.Disposed.IsZero() || !l.Disposed.Before(on)
}

// Ticker returns the symbol with its market suffix, the form the price
// table is keyed by.
func (l *Lot) Ticker() string {
	if l.Exchange == BSE {
		return l.Symbol + ".BO"
	}
	return l.Symbol + ".NS"
}

// Holdings is the in-memory holdings table.
type Holdings []*Lot

// brokerAliases normalizes broker names the way the curated table spells
// them. "One" is IIFL's retail brand.
var brokerAliases = map[*regexp.Regexp]string{
	regexp.MustCompile(`(?i)\bone\b`): "IIFL",
}

// NormalizeBroker maps a raw broker cell to its canonical name. Blank cells
// become "unknown".
func NormalizeBroker(raw string) string {
	if raw == "" {
		return "unknown"
	}
	for re, canonical := range brokerAliases {
		if re.MatchString(raw) {
			return canonical
		}
	}
	return raw
}

// Brokers returns the unique broker names in first-appearance order.
func (h Holdings) Brokers() []string {
	seen := make(map[string]struct{})
	brokers := make([]string, 0, 8)
	for _, l := range h {
		if _, ok := seen[l.Broker]; ok {
			continue
		}
		seen[l.Broker] = struct{}{}
		brokers = append(brokers, l.Broker)
	}
	return brokers
}

// Tickers iterates over the unique tickers of lots that matter on or after
// 'asOf': lots never disposed, or disposed after that date. Lots whose
// symbol is blank are skipped, they cannot be priced.
func (h Holdings) Tickers(asOf Date) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, l := range h {
			if l.Symbol == "" {
				continue
			}
			if !l.Disposed.IsZero() && !asOf.IsZero() && l.Disposed.Before(asOf) {
				continue
			}
			t := l.Ticker()
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			if !yield(t) {
				return
			}
		}
	}
}

// Quantities snapshots the current share counts, in table order. The walk
// driver uses it to restore the table after the corporate-action rewrite.
func (h Holdings) Quantities() []int64 {
	q := make([]int64, len(h))
	for i, l := range h {
		q[i] = l.Quantity
	}
	return q
}

// SetQuantities restores share counts captured by Quantities.
func (h Holdings) SetQuantities(q []int64) {
	for i, l := range h {
		l.Quantity = q[i]
	}
}
