package bhavbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// PivotLine is one security's start/end snapshot and windowed P&L inside a
// pivot report.
type PivotLine struct {
	Security   string
	QtyStart   int64
	ValueStart Money
	QtyEnd     int64
	ValueEnd   Money
	Purchase   Money // purchase value realized inside the window
	Sell       Money // sale value realized inside the window
	PnL        Money
	PnLPercent decimal.Decimal
}

// PivotReport aggregates one broker's audit trail over a date window.
type PivotReport struct {
	Broker string
	// Window is the requested window after snapping both boundaries to
	// dates the trail actually covers.
	Window Range
	Lines  []PivotLine
	Total  PivotLine
}

// Durations are the preset look-back windows of the pivot report, in months.
var Durations = []int{1, 3, 6, 9, 12}

// snapshot sums quantity and value across source files for one security of
// one broker, at the latest trail date at or before 'boundary'.
func snapshot(trail *Trail, broker, security string, boundary Date) (qty int64, value Money) {
	var latest Date
	for _, o := range trail.Observations() {
		if o.Broker != broker || o.Security != security || o.On.After(boundary) {
			continue
		}
		if o.On.After(latest) {
			latest = o.On
		}
	}
	if latest.IsZero() {
		return 0, Money{}
	}
	for _, o := range trail.Observations() {
		if o.Broker == broker && o.Security == security && o.On == latest {
			qty += o.Quantity
			value = value.Add(o.Value)
		}
	}
	return qty, value
}

// NewPivotReport builds the report for one broker over [start, end]. Both
// boundaries snap backward to the closest date the trail covers; the report
// window records the snapped dates. A start predating the whole trail is
// not an error: every position then starts from zero and counts as new
// money in the window. Securities with no position and no trade activity
// in the window are omitted. P&L is
// endValue − startValue + sell − purchase, and the percentage is relative
// to the start value (zero when starting from nothing).
func NewPivotReport(trail *Trail, trades *TradeLog, broker string, start, end Date) (*PivotReport, error) {
	snappedEnd, ok := trail.SnapDate(end)
	if !ok {
		return nil, fmt.Errorf("audit trail has no data on or before %s", end)
	}
	snappedStart, ok := trail.SnapDate(start)
	if !ok {
		// Older than the first observation: keep the requested boundary,
		// the start snapshots all come back empty.
		snappedStart = start
	}
	window := NewRange(start, end)

	securities := make(map[string]struct{})
	for _, o := range trail.Observations() {
		if o.Broker == broker {
			securities[o.Security] = struct{}{}
		}
	}
	if len(securities) == 0 {
		return nil, fmt.Errorf("audit trail has no rows for broker %q", broker)
	}
	names := make([]string, 0, len(securities))
	for s := range securities {
		names = append(names, s)
	}
	sort.Strings(names)

	report := &PivotReport{Broker: broker, Window: NewRange(snappedStart, snappedEnd)}
	for _, security := range names {
		qtyStart, valueStart := snapshot(trail, broker, security, snappedStart)
		qtyEnd, valueEnd := snapshot(trail, broker, security, snappedEnd)
		purchase := trades.PurchaseValue(broker, security, window)
		sell := trades.SellValue(broker, security, window)

		if qtyStart == 0 && qtyEnd == 0 && purchase.IsZero() && sell.IsZero() {
			continue
		}

		pnl := valueEnd.Sub(valueStart).Add(sell).Sub(purchase)
		var pct decimal.Decimal
		if !valueStart.IsZero() {
			pct = pnl.Decimal().Div(valueStart.Decimal()).Mul(decimal.NewFromInt(100))
		}
		report.Lines = append(report.Lines, PivotLine{
			Security:   security,
			QtyStart:   qtyStart,
			ValueStart: valueStart,
			QtyEnd:     qtyEnd,
			ValueEnd:   valueEnd,
			Purchase:   purchase,
			Sell:       sell,
			PnL:        pnl,
			PnLPercent: pct,
		})
	}

	report.Total = totalLine(report.Lines)
	return report, nil
}

// totalLine folds all lines into the TOTAL row. The percentage is the total
// P&L over the total start value, not an average of per-line percentages.
func totalLine(lines []PivotLine) PivotLine {
	total := PivotLine{Security: "TOTAL"}
	for _, l := range lines {
		total.ValueStart = total.ValueStart.Add(l.ValueStart)
		total.ValueEnd = total.ValueEnd.Add(l.ValueEnd)
		total.Purchase = total.Purchase.Add(l.Purchase)
		total.Sell = total.Sell.Add(l.Sell)
		total.PnL = total.PnL.Add(l.PnL)
	}
	if !total.ValueStart.IsZero() {
		total.PnLPercent = total.PnL.Decimal().Div(total.ValueStart.Decimal()).Mul(decimal.NewFromInt(100))
	}
	return total
}

// EncodePivotReports writes one or more reports as a single CSV: the broker
// and window ride on every row so concatenated reports stay unambiguous.
// Each report ends with its TOTAL row.
func EncodePivotReports(w io.Writer, reports ...*PivotReport) error {
	cw := csv.NewWriter(w)
	header := []string{"BROKER", "FROM", "TO", "SECURITY",
		"QTY START", "VALUE START", "QTY END", "VALUE END",
		"PURCHASE", "SELL", "PNL", "PNL %"}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := func(r *PivotReport, l PivotLine) error {
		return cw.Write([]string{
			r.Broker,
			r.Window.From.String(),
			r.Window.To.String(),
			l.Security,
			strconv.FormatInt(l.QtyStart, 10),
			moneyCell(l.ValueStart),
			strconv.FormatInt(l.QtyEnd, 10),
			moneyCell(l.ValueEnd),
			moneyCell(l.Purchase),
			moneyCell(l.Sell),
			moneyCell(l.PnL),
			l.PnLPercent.StringFixed(2),
		})
	}
	for _, r := range reports {
		for _, l := range r.Lines {
			if err := row(r, l); err != nil {
				return err
			}
		}
		if err := row(r, r.Total); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
