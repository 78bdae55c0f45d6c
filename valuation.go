package bhavbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DayTotals accumulates one broker's aggregates for a single day.
type DayTotals struct {
	Value    Money // market value of everything still held
	Purchase Money // net cost of lots acquired today
	Sale     Money // net proceeds of lots disposed today
}

// Active reports whether the broker had any holdings value or flow activity
// that day. Inactive brokers get no ledger row, by design.
func (d *DayTotals) Active() bool {
	return !d.Value.IsZero() || !d.Purchase.IsZero() || !d.Sale.IsZero()
}

// ValuateDay marks every lot held on 'day' to market and accumulates
// per-broker totals, always including the Overall bucket.
//
// Per lot: the closing price comes from the resolver; when no price is
// available the lot's own cost per share stands in, the deliberate fallback
// for unlisted, suspended or delisted instruments. A lot disposed exactly
// today contributes its recorded net sale proceeds to Sale instead of a
// market value; a still-held lot acquired exactly today also contributes
// its recorded net cost to Purchase. Every processed lot is recorded on the
// audit trail, and purchase/sale days also land in the trade log.
//
// A resolver error fails the whole day: the caller (the walk driver) then
// takes its degraded carry-forward path instead of crashing the walk.
func ValuateDay(h Holdings, day Date, resolver Resolver, trail *Trail, trades *TradeLog) (map[string]*DayTotals, error) {
	totals := map[string]*DayTotals{Overall: {}}
	get := func(broker string) *DayTotals {
		t, ok := totals[broker]
		if !ok {
			t = &DayTotals{}
			totals[broker] = t
		}
		return t
	}

	for _, l := range h {
		if l.Symbol == "" || !l.HeldOn(day) {
			continue
		}

		price, ok, err := resolver.Resolve(l.Ticker(), day)
		if err != nil {
			return nil, fmt.Errorf("price lookup for %s on %s: %w", l.Ticker(), day, err)
		}
		closing := M(price)
		if !ok {
			closing = l.Cost
		}
		marketValue := closing.MulQ(l.Quantity)

		broker := get(l.Broker)
		overall := get(Overall)

		if l.Disposed == day {
			// Sell day: the realized proceeds, not a mark to market.
			broker.Sale = broker.Sale.Add(l.NetSale)
			overall.Sale = overall.Sale.Add(l.NetSale)
			if trades != nil && l.Quantity != 0 {
				trades.RecordSale(l.Acquired, day, l.Broker, l.File, l.Symbol,
					l.NetSale.Div(decimal.NewFromInt(l.Quantity)), l.Quantity)
			}
		} else {
			broker.Value = broker.Value.Add(marketValue)
			overall.Value = overall.Value.Add(marketValue)

			// Only on a non-sell day: a lot flipped the same day it was
			// bought books its proceeds alone, not a purchase as well.
			if l.Acquired == day {
				broker.Purchase = broker.Purchase.Add(l.NetCost)
				overall.Purchase = overall.Purchase.Add(l.NetCost)
				if trades != nil {
					trades.RecordPurchase(day, l.Broker, l.File, l.Symbol, l.Cost, l.Quantity)
				}
			}
		}

		if trail != nil {
			trail.Record(day, l.Symbol, l.Broker, l.File, l.Quantity, l.Cost, closing, marketValue)
		}
	}
	return totals, nil
}
