package renderer

import (
	"strings"
	"testing"

	"github.com/bhavbook/bhavbook"
	"github.com/shopspring/decimal"
)

func TestRenderPivot(t *testing.T) {
	trail := bhavbook.NewTrail()
	start := bhavbook.MustParseDate("2024-01-31")
	end := bhavbook.MustParseDate("2024-03-28")
	trail.Record(start, "ABC", "Z", "f1", 10, bhavbook.M(100), bhavbook.M(100), bhavbook.M(1000))
	trail.Record(end, "ABC", "Z", "f1", 10, bhavbook.M(100), bhavbook.M(120), bhavbook.M(1200))

	report, err := bhavbook.NewPivotReport(trail, bhavbook.NewTradeLog(), "Z", start, end)
	if err != nil {
		t.Fatalf("NewPivotReport() error = %v", err)
	}

	out := RenderPivot(report)
	for _, want := range []string{"# Pivot Z", "| ABC |", "20.00%", "**TOTAL**"} {
		if !strings.Contains(out, want) {
			t.Errorf("pivot output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLedger(t *testing.T) {
	l := bhavbook.NewLedger()
	l.Append("Z", bhavbook.Row{
		On:    bhavbook.MustParseDate("2024-01-02"),
		Value: bhavbook.M(500), Purchase: bhavbook.M(500), NetFund: bhavbook.M(500),
		Units: decimal.NewFromFloat(0.5), NAV: decimal.NewFromInt(1000),
	})
	l.Append("Z", bhavbook.Row{
		On:    bhavbook.MustParseDate("2024-01-03"),
		Value: bhavbook.M(500), Units: decimal.NewFromFloat(0.5), NAV: decimal.NewFromInt(1000),
		Degraded: true,
	})

	out := RenderLedger(l, "Z")
	if !strings.Contains(out, "2024-01-02") || !strings.Contains(out, "1000.00") {
		t.Errorf("ledger output incomplete:\n%s", out)
	}
	if !strings.Contains(out, "degraded") {
		t.Errorf("ledger output must flag degraded rows:\n%s", out)
	}
	// A zero flow renders as "-", not as a zero amount.
	if !strings.Contains(out, "| - |") {
		t.Errorf("ledger output must blank zero flows:\n%s", out)
	}
}

func TestRenderHoldings(t *testing.T) {
	h := bhavbook.Holdings{
		{Name: "Abc Industries", Symbol: "ABC", Broker: "Z",
			Acquired: bhavbook.MustParseDate("2024-01-02"), Quantity: 10,
			Cost: bhavbook.M(50), LastPrice: bhavbook.M(60), LastValue: bhavbook.M(600)},
		{Name: "Sold Ltd", Symbol: "SLD", Broker: "Z",
			Acquired: bhavbook.MustParseDate("2023-01-02"),
			Disposed: bhavbook.MustParseDate("2024-02-15"), Quantity: 5, Cost: bhavbook.M(10)},
	}
	out := RenderHoldings(h)
	held := strings.Index(out, "Abc Industries")
	sold := strings.Index(out, "Sold Ltd")
	if held < 0 || sold < 0 {
		t.Fatalf("holdings output incomplete:\n%s", out)
	}
	if held > sold {
		t.Error("open lots must render before disposed ones")
	}
}
