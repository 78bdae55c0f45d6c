package bhavbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// Overall is the pseudo-broker aggregating the whole portfolio.
const Overall = "Overall"

// bootstrapNAV is the NAV a fund starts at before any row exists, the
// conventional 1000 of Indian mutual-fund unit accounting.
var bootstrapNAV = decimal.NewFromInt(1000)

// Row is one day of one broker's unitized ledger.
type Row struct {
	On       Date            `json:"on"`
	Value    Money           `json:"value"`
	Purchase Money           `json:"purchase"`
	Sales    Money           `json:"sales"`
	NetFund  Money           `json:"netFund"`
	Units    decimal.Decimal `json:"units"`
	NAV      decimal.Decimal `json:"nav"`
	// Degraded marks a carry-forward row appended when a day's valuation
	// failed: Value/Units/NAV repeat the last known state and the flow
	// fields are meaningless.
	Degraded bool `json:"degraded,omitempty"`
}

// UpdateNAV runs one step of the unitized-fund recurrence: given today's
// totals and yesterday's carried state, it returns today's units
// outstanding and NAV per unit.
//
// A zero previous NAV means the fund is bootstrapping and is treated as
// 1000. With a prior nonzero value the fund absorbs the net flow as units
// at the previous NAV; on a cold start the whole current value is seeded as
// units at the bootstrap NAV. A broker holding nothing today has no
// meaningful NAV: units and NAV are forced to zero whatever the flows were.
func UpdateNAV(value, purchase, sale Money, prevUnits, prevNAV decimal.Decimal, prevValue Money) (units, nav decimal.Decimal) {
	netFund := purchase.Sub(sale)

	if prevNAV.IsZero() {
		prevNAV = bootstrapNAV
	}

	if !prevValue.IsZero() {
		units = prevUnits.Add(netFund.Decimal().Div(prevNAV))
	} else {
		units = value.Decimal().Div(prevNAV)
	}

	if units.IsZero() {
		nav = decimal.Zero
	} else {
		nav = value.Decimal().Div(units)
	}

	if value.IsZero() {
		units, nav = decimal.Zero, decimal.Zero
	}
	return units, nav
}

// Ledger is the per-broker NAV time series, one sparse chronological row
// list per broker (plus Overall). Brokers with no activity on a day simply
// have no row for it; consumers must tolerate the gaps.
type Ledger struct {
	brokers []string
	series  map[string][]Row
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{series: make(map[string][]Row)}
}

// Brokers returns the broker names present in the ledger, alphabetical.
func (l *Ledger) Brokers() []string { return slices.Clone(l.brokers) }

// Rows returns the chronological rows of one broker.
func (l *Ledger) Rows(broker string) []Row { return l.series[broker] }

// Last returns a broker's most recent row. ok is false when the broker has
// no rows yet, which is the recurrence's cold-start state.
func (l *Ledger) Last(broker string) (Row, bool) {
	rows := l.series[broker]
	if len(rows) == 0 {
		return Row{}, false
	}
	return rows[len(rows)-1], true
}

// LastDate returns the most recent date across all brokers; the Overall
// series covers every active day so in practice it is Overall's last date.
func (l *Ledger) LastDate() (Date, bool) {
	var max Date
	found := false
	for _, rows := range l.series {
		if len(rows) == 0 {
			continue
		}
		if on := rows[len(rows)-1].On; !found || on.After(max) {
			max, found = on, true
		}
	}
	return max, found
}

// Append appends a row to a broker's series. Rows must arrive in
// chronological order; a row not after the broker's last one is rejected,
// the walk never revisits a day.
func (l *Ledger) Append(broker string, row Row) error {
	if last, ok := l.Last(broker); ok && !row.On.After(last.On) {
		return fmt.Errorf("ledger for %q already covers %s (last row %s)", broker, row.On, last.On)
	}
	if _, ok := l.series[broker]; !ok {
		l.brokers = append(l.brokers, broker)
		sort.Strings(l.brokers)
	}
	l.series[broker] = append(l.series[broker], row)
	return nil
}

// Merge combines a previously persisted ledger with a freshly computed one:
// for each broker, old rows are kept as-is and only new rows strictly after
// the old series' last date are appended. Running a walk again over already
// covered dates therefore never duplicates a row.
func Merge(old, new *Ledger) *Ledger {
	merged := NewLedger()
	for _, broker := range old.brokers {
		for _, row := range old.series[broker] {
			merged.Append(broker, row)
		}
	}
	for _, broker := range new.brokers {
		last, hasOld := old.Last(broker)
		for _, row := range new.series[broker] {
			if hasOld && !row.On.After(last.On) {
				continue
			}
			merged.Append(broker, row)
		}
	}
	return merged
}

// --- persistence ---
//
// One JSONL line per (broker, day) row, ordered by broker then date.

type jrow struct {
	Broker string `json:"broker"`
	Row
}

// DecodeLedger reads a ledger from its JSONL form.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	l := NewLedger()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var jr jrow
		if err := json.Unmarshal(line, &jr); err != nil {
			return nil, fmt.Errorf("cannot parse ledger line %q: %w", string(line), err)
		}
		if err := l.Append(jr.Broker, jr.Row); err != nil {
			return nil, err
		}
	}
	return l, scanner.Err()
}

// EncodeLedger writes the ledger in its JSONL form.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for _, broker := range l.brokers {
		for _, row := range l.series[broker] {
			data, err := json.Marshal(jrow{Broker: broker, Row: row})
			if err != nil {
				return fmt.Errorf("cannot encode ledger row for %q on %s: %w", broker, row.On, err)
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return err
			}
		}
	}
	return nil
}
