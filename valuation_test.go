package bhavbook

import (
	"errors"
	"testing"
)

// failingResolver always fails the lookup, the way a live quote source does
// when the network is down.
type failingResolver struct{}

func (failingResolver) Resolve(string, Date) (float64, bool, error) {
	return 0, false, errors.New("quote source unreachable")
}

func testHoldings() Holdings {
	return Holdings{
		{Name: "Abc Industries", Symbol: "ABC", Exchange: NSE, Broker: "Zerodha",
			Acquired: MustParseDate("2024-01-02"), Quantity: 10,
			Cost: M(50), NetCost: M(500), File: "contract-1"},
		{Name: "Def Ltd", Symbol: "DEF", Exchange: BSE, Broker: "IIFL",
			Acquired: MustParseDate("2023-06-01"), Quantity: 4,
			Cost: M(100), NetCost: M(400), File: "contract-2"},
	}
}

func TestValuateDay_OverallIsSumOfBrokers(t *testing.T) {
	prices := NewPriceTable()
	on := MustParseDate("2024-01-10")
	prices.Append("ABC.NS", on, 60)
	prices.Append("DEF.BO", on, 110)

	totals, err := ValuateDay(testHoldings(), on, prices, NewTrail(), NewTradeLog())
	if err != nil {
		t.Fatalf("ValuateDay() error = %v", err)
	}

	var sum Money
	for broker, tt := range totals {
		if broker == Overall {
			continue
		}
		sum = sum.Add(tt.Value)
	}
	if !totals[Overall].Value.Equal(sum) {
		t.Errorf("Overall value = %s, brokers sum to %s", totals[Overall].Value, sum)
	}
	if want := M(10*60 + 4*110); !totals[Overall].Value.Equal(want) {
		t.Errorf("Overall value = %s, want %s", totals[Overall].Value, want)
	}
}

func TestValuateDay_PurchaseDay(t *testing.T) {
	prices := NewPriceTable()
	on := MustParseDate("2024-01-02") // ABC's acquisition day
	prices.Append("ABC.NS", on, 50)
	prices.Append("DEF.BO", on, 100)

	trades := NewTradeLog()
	totals, err := ValuateDay(testHoldings(), on, prices, NewTrail(), trades)
	if err != nil {
		t.Fatalf("ValuateDay() error = %v", err)
	}

	z := totals["Zerodha"]
	if !z.Purchase.Equal(M(500)) {
		t.Errorf("Zerodha purchase = %s, want 500", z.Purchase)
	}
	// The freshly bought lot is also held and valued that same day.
	if !z.Value.Equal(M(500)) {
		t.Errorf("Zerodha value = %s, want 500", z.Value)
	}
	if totals[Overall].Purchase.Equal(Money{}) {
		t.Error("Overall purchase must include the day's acquisitions")
	}
	if trades.Len() != 1 {
		t.Errorf("trade log has %d events, want 1 purchase", trades.Len())
	}
}

func TestValuateDay_SaleDay(t *testing.T) {
	h := testHoldings()
	on := MustParseDate("2024-02-15")
	h[0].Disposed = on
	h[0].NetSale = M(620)

	prices := NewPriceTable()
	prices.Append("ABC.NS", on, 60)
	prices.Append("DEF.BO", on, 110)

	trades := NewTradeLog()
	totals, err := ValuateDay(h, on, prices, NewTrail(), trades)
	if err != nil {
		t.Fatalf("ValuateDay() error = %v", err)
	}

	z := totals["Zerodha"]
	// The sell day books the realized proceeds, not a mark to market, and
	// the lot no longer counts toward value.
	if !z.Sale.Equal(M(620)) {
		t.Errorf("Zerodha sale = %s, want 620", z.Sale)
	}
	if !z.Value.IsZero() {
		t.Errorf("Zerodha value = %s, want 0 after the sale", z.Value)
	}
	if !totals[Overall].Sale.Equal(M(620)) {
		t.Errorf("Overall sale = %s, want 620", totals[Overall].Sale)
	}
	sale := trades.Trades()[0]
	if !sale.IsSale() || sale.Quantity != 10 {
		t.Errorf("recorded sale = %+v", sale)
	}
	// Per-share sell price derives from the net proceeds.
	if !sale.Price.Equal(M(62)) {
		t.Errorf("sale price = %s, want 62", sale.Price)
	}
}

func TestValuateDay_CostFallback(t *testing.T) {
	// DEF has no price at all: its own cost per share stands in.
	prices := NewPriceTable()
	on := MustParseDate("2024-01-10")
	prices.Append("ABC.NS", on, 60)

	totals, err := ValuateDay(testHoldings(), on, prices, NewTrail(), NewTradeLog())
	if err != nil {
		t.Fatalf("ValuateDay() error = %v", err)
	}
	if want := M(4 * 100); !totals["IIFL"].Value.Equal(want) {
		t.Errorf("IIFL value = %s, want %s (cost fallback)", totals["IIFL"].Value, want)
	}
}

func TestValuateDay_ResolverError(t *testing.T) {
	_, err := ValuateDay(testHoldings(), MustParseDate("2024-01-10"), failingResolver{}, NewTrail(), NewTradeLog())
	if err == nil {
		t.Fatal("a resolver failure must fail the day")
	}
}

func TestValuateDay_SkipsNotHeld(t *testing.T) {
	prices := NewPriceTable()
	on := MustParseDate("2023-12-01") // before ABC was acquired
	prices.Append("ABC.NS", on, 60)
	prices.Append("DEF.BO", on, 110)

	totals, err := ValuateDay(testHoldings(), on, prices, NewTrail(), NewTradeLog())
	if err != nil {
		t.Fatalf("ValuateDay() error = %v", err)
	}
	if _, ok := totals["Zerodha"]; ok {
		t.Error("Zerodha had no holdings yet, it must not appear")
	}
	if !totals[Overall].Value.Equal(M(440)) {
		t.Errorf("Overall value = %s, want 440", totals[Overall].Value)
	}
}

func TestValuateDay_SameDayRoundTrip(t *testing.T) {
	on := MustParseDate("2024-02-15")
	h := Holdings{
		{Name: "Abc Industries", Symbol: "ABC", Exchange: NSE, Broker: "Zerodha",
			Acquired: on, Disposed: on, Quantity: 10,
			Cost: M(50), NetCost: M(500), NetSale: M(520), File: "contract-1"},
	}
	prices := NewPriceTable()
	prices.Append("ABC.NS", on, 52)

	trades := NewTradeLog()
	totals, err := ValuateDay(h, on, prices, NewTrail(), trades)
	if err != nil {
		t.Fatalf("ValuateDay() error = %v", err)
	}

	// A lot flipped the day it was bought is a pure sell day: only the
	// proceeds are booked, no purchase flow and no residual value.
	z := totals["Zerodha"]
	if !z.Sale.Equal(M(520)) {
		t.Errorf("Zerodha sale = %s, want 520", z.Sale)
	}
	if !z.Purchase.IsZero() {
		t.Errorf("Zerodha purchase = %s, want 0", z.Purchase)
	}
	if !z.Value.IsZero() {
		t.Errorf("Zerodha value = %s, want 0", z.Value)
	}
	if trades.Len() != 1 || !trades.Trades()[0].IsSale() {
		t.Errorf("trade log = %+v, want a single sale", trades.Trades())
	}
}
