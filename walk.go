package bhavbook

import (
	"log"
	"sort"
)

// Walk drives the day-by-day valuation over a date range. It owns no I/O:
// the caller loads prior state, runs the walk, and persists the results.
//
// The walk is inherently sequential: each day's ledger row depends on the
// previous day's (units, NAV, value), so days cannot be reordered. A single
// goroutine mutates the ledger, trail and trade log; a Progress callback,
// if set, must only read.
type Walk struct {
	Holdings Holdings
	Actions  *ActionBook
	Resolver Resolver

	// Prior persisted state, used to seed the recurrence on resume. May be
	// empty but not nil.
	Prior *Ledger

	// Fresh results, populated by Run.
	Ledger *Ledger
	Trail  *Trail
	Trades *TradeLog

	// Progress, when set, is called after each processed day.
	Progress func(done, total int)
}

// NewWalk prepares a walk resuming from prior ledger state.
func NewWalk(h Holdings, actions *ActionBook, resolver Resolver, prior *Ledger) *Walk {
	if prior == nil {
		prior = NewLedger()
	}
	if actions == nil {
		actions = NewActionBook()
	}
	return &Walk{
		Holdings: h,
		Actions:  actions,
		Resolver: resolver,
		Prior:    prior,
		Ledger:   NewLedger(),
		Trail:    NewTrail(),
		Trades:   NewTradeLog(),
	}
}

// prev returns the carried state for a broker: the freshly computed last
// row when one exists, else the last persisted row from the prior run.
func (w *Walk) prev(broker string) (Row, bool) {
	if row, ok := w.Ledger.Last(broker); ok {
		return row, true
	}
	return w.Prior.Last(broker)
}

// Run walks every calendar day of the range, inclusive on both ends.
//
// Init: snapshot lot quantities and roll them back to the range start.
// Per day: apply the day's corporate actions, valuate, run the NAV
// recurrence per active broker. A failed valuation degrades the day into a
// carry-forward row per broker and the walk continues; no day is skipped
// silently and none is processed twice. Terminal: restore the original
// quantities and stamp each lot with the final day's price and value.
func (w *Walk) Run(r Range) error {
	original := w.Holdings.Quantities()
	defer w.Holdings.SetQuantities(original)

	w.Actions.RollBack(w.Holdings, r.From)

	total := r.Len()
	done := 0
	for day := range r.Days() {
		w.Actions.ApplyOn(w.Holdings, day)

		totals, err := ValuateDay(w.Holdings, day, w.Resolver, w.Trail, w.Trades)
		if err != nil {
			log.Printf("degraded day %s: %v", day, err)
			w.carryForward(day)
		} else {
			if err := w.appendRows(day, totals); err != nil {
				return err
			}
		}

		done++
		if w.Progress != nil {
			w.Progress(done, total)
		}
	}

	// The stamp must see the curated present-day quantities, not the
	// as-of-range-end roll (actions effective after r.To stay rolled back
	// until here); the deferred restore above runs too late for it.
	w.Holdings.SetQuantities(original)
	w.stampFinalDay(r.To)
	return nil
}

// appendRows runs the NAV recurrence and appends one row per active broker.
// Brokers with neither value nor flow activity are skipped, not zero-filled.
func (w *Walk) appendRows(day Date, totals map[string]*DayTotals) error {
	for _, broker := range sortedBrokers(totals) {
		t := totals[broker]
		if !t.Active() {
			continue
		}
		prev, _ := w.prev(broker)
		units, nav := UpdateNAV(t.Value, t.Purchase, t.Sale, prev.Units, prev.NAV, prev.Value)
		row := Row{
			On:       day,
			Value:    t.Value,
			Purchase: t.Purchase,
			Sales:    t.Sale,
			NetFund:  t.Purchase.Sub(t.Sale),
			Units:    units,
			NAV:      nav,
		}
		if err := w.Ledger.Append(broker, row); err != nil {
			return err
		}
	}
	return nil
}

// carryForward is the degraded-day recovery: every broker with a known last
// row gets that row again, re-dated to today and flagged, with the flow
// fields blanked since nothing was actually measured.
func (w *Walk) carryForward(day Date) {
	brokers := make(map[string]struct{})
	for _, b := range w.Prior.Brokers() {
		brokers[b] = struct{}{}
	}
	for _, b := range w.Ledger.Brokers() {
		brokers[b] = struct{}{}
	}
	for _, broker := range sortedKeys(brokers) {
		last, ok := w.prev(broker)
		if !ok {
			continue
		}
		row := Row{
			On:       day,
			Value:    last.Value,
			Units:    last.Units,
			NAV:      last.NAV,
			Degraded: true,
		}
		if err := w.Ledger.Append(broker, row); err != nil {
			// The walk never revisits a day, so this cannot happen; an
			// append rejection here would mean corrupted prior state.
			log.Printf("carry forward %s for %q: %v", day, broker, err)
		}
	}
}

// stampFinalDay enriches every lot still held on the final day with its
// closing price and market value, for the persisted holdings table.
func (w *Walk) stampFinalDay(day Date) {
	for _, l := range w.Holdings {
		if l.Symbol == "" || !l.HeldOn(day) {
			continue
		}
		price, ok, err := w.Resolver.Resolve(l.Ticker(), day)
		closing := l.Cost
		if err == nil && ok {
			closing = M(price)
		}
		l.LastPrice = closing
		l.LastValue = closing.MulQ(l.Quantity)
	}
}

func sortedBrokers(totals map[string]*DayTotals) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	return sortStrings(keys)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return sortStrings(keys)
}

// sortStrings orders broker names with Overall first, then alphabetical:
// the ledger file reads top-down the way a person scans it.
func sortStrings(s []string) []string {
	sort.Slice(s, func(i, j int) bool {
		if s[i] == Overall || s[j] == Overall {
			return s[i] == Overall
		}
		return s[i] < s[j]
	})
	return s
}
