package bhavbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Trade is one purchase or sale event. A purchase has a zero Sold date, a
// sale carries both dates so the holding period stays visible.
type Trade struct {
	Bought   Date   `json:"bought"`
	Sold     Date   `json:"sold,omitzero"`
	Broker   string `json:"broker"`
	File     string `json:"file"`
	Security string `json:"security"`
	Price    Money  `json:"price"` // per-share buy price, or sell price for a sale
	Quantity int64  `json:"quantity"`
}

// on is the date the event happened: the sale date for a sale, the purchase
// date otherwise.
func (t Trade) on() Date {
	if !t.Sold.IsZero() {
		return t.Sold
	}
	return t.Bought
}

// IsSale reports whether the trade is a sale event.
func (t Trade) IsSale() bool { return !t.Sold.IsZero() }

// TradeLog is the independent append-only record of purchase and sale
// events. Only the pivot reporter reads it, to compute realized purchase
// and sale value inside arbitrary date windows.
type TradeLog struct {
	trades []Trade
}

// NewTradeLog returns an empty trade log.
func NewTradeLog() *TradeLog { return &TradeLog{} }

// Len returns the number of recorded trades.
func (l *TradeLog) Len() int { return len(l.trades) }

// RecordPurchase appends a purchase event.
func (l *TradeLog) RecordPurchase(bought Date, broker, file, security string, price Money, quantity int64) {
	l.trades = append(l.trades, Trade{
		Bought: bought, Broker: broker, File: file, Security: security,
		Price: price, Quantity: quantity,
	})
}

// RecordSale appends a sale event, keeping the original purchase date.
func (l *TradeLog) RecordSale(bought, sold Date, broker, file, security string, price Money, quantity int64) {
	l.trades = append(l.trades, Trade{
		Bought: bought, Sold: sold, Broker: broker, File: file, Security: security,
		Price: price, Quantity: quantity,
	})
}

// Trades returns the events sorted by event date, then security.
func (l *TradeLog) Trades() []Trade {
	sorted := append([]Trade(nil), l.trades...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].on() != sorted[j].on() {
			return sorted[i].on().Before(sorted[j].on())
		}
		return sorted[i].Security < sorted[j].Security
	})
	return sorted
}

// LastDate returns the most recent event date in the log.
func (l *TradeLog) LastDate() (Date, bool) {
	var max Date
	for _, t := range l.trades {
		if t.on().After(max) {
			max = t.on()
		}
	}
	return max, len(l.trades) > 0
}

// PurchaseValue sums price×quantity over purchases of one security by one
// broker whose purchase date falls inside the window.
func (l *TradeLog) PurchaseValue(broker, security string, window Range) Money {
	var total Money
	for _, t := range l.trades {
		if t.IsSale() || t.Broker != broker || t.Security != security {
			continue
		}
		if window.Contains(t.Bought) {
			total = total.Add(t.Price.MulQ(t.Quantity))
		}
	}
	return total
}

// SellValue sums price×quantity over sales of one security by one broker
// whose sale date falls inside the window.
func (l *TradeLog) SellValue(broker, security string, window Range) Money {
	var total Money
	for _, t := range l.trades {
		if !t.IsSale() || t.Broker != broker || t.Security != security {
			continue
		}
		if window.Contains(t.Sold) {
			total = total.Add(t.Price.MulQ(t.Quantity))
		}
	}
	return total
}

// MergeTradeLog keeps the old log as-is and appends only events strictly
// after its last date, the same resume rule as the ledger and the trail.
func MergeTradeLog(old, new *TradeLog) *TradeLog {
	merged := NewTradeLog()
	merged.trades = append(merged.trades, old.trades...)
	last, hasOld := old.LastDate()
	for _, t := range new.trades {
		if hasOld && !t.on().After(last) {
			continue
		}
		merged.trades = append(merged.trades, t)
	}
	return merged
}

// DecodeTradeLog reads a trade log from its JSONL form.
func DecodeTradeLog(r io.Reader) (*TradeLog, error) {
	l := NewTradeLog()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var t Trade
		if err := json.Unmarshal(line, &t); err != nil {
			return nil, fmt.Errorf("cannot parse trade line %q: %w", string(line), err)
		}
		l.trades = append(l.trades, t)
	}
	return l, scanner.Err()
}

// EncodeTradeLog writes the log in its JSONL form, in Trades order.
func EncodeTradeLog(w io.Writer, l *TradeLog) error {
	for _, t := range l.Trades() {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("cannot encode trade for %s: %w", t.Security, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}
