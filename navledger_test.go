package bhavbook

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUpdateNAV_Bootstrap(t *testing.T) {
	// A cold start seeds units at the conventional NAV of 1000.
	units, nav := UpdateNAV(M(500), M(500), Money{}, decimal.Zero, decimal.Zero, Money{})
	if !units.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("bootstrap units = %s, want 0.5", units)
	}
	if !nav.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("bootstrap nav = %s, want 1000", nav)
	}
}

func TestUpdateNAV_FlatDay(t *testing.T) {
	// No flows and an unchanged value leave units and NAV untouched.
	prevUnits := decimal.NewFromFloat(0.5)
	prevNAV := decimal.NewFromInt(1000)
	units, nav := UpdateNAV(M(500), Money{}, Money{}, prevUnits, prevNAV, M(500))
	if !units.Equal(prevUnits) {
		t.Errorf("units = %s, want %s", units, prevUnits)
	}
	if !nav.Equal(prevNAV) {
		t.Errorf("nav = %s, want %s", nav, prevNAV)
	}
}

func TestUpdateNAV_Contribution(t *testing.T) {
	// A purchase buys units at yesterday's NAV; the NAV itself only moves
	// with the market, never with a flow.
	prevUnits := decimal.NewFromInt(1)
	prevNAV := decimal.NewFromInt(1000)
	units, nav := UpdateNAV(M(1500), M(500), Money{}, prevUnits, prevNAV, M(1000))
	if !units.Equal(decimal.NewFromFloat(1.5)) {
		t.Errorf("units = %s, want 1.5", units)
	}
	if !nav.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("nav = %s, want 1000", nav)
	}
}

func TestUpdateNAV_Withdrawal(t *testing.T) {
	// A sale redeems units at yesterday's NAV.
	prevUnits := decimal.NewFromInt(2)
	prevNAV := decimal.NewFromInt(1000)
	units, nav := UpdateNAV(M(1000), Money{}, M(1000), prevUnits, prevNAV, M(2000))
	if !units.Equal(decimal.NewFromInt(1)) {
		t.Errorf("units = %s, want 1", units)
	}
	if !nav.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("nav = %s, want 1000", nav)
	}
}

func TestUpdateNAV_ZeroValue(t *testing.T) {
	// A broker holding nothing today has no meaningful NAV, whatever the
	// flows were.
	units, nav := UpdateNAV(Money{}, Money{}, M(1000), decimal.NewFromInt(1), decimal.NewFromInt(1000), M(1000))
	if !units.IsZero() || !nav.IsZero() {
		t.Errorf("zero-value day: units = %s, nav = %s, want both zero", units, nav)
	}
}

func TestLedger_AppendChronology(t *testing.T) {
	l := NewLedger()
	if err := l.Append("Z", Row{On: MustParseDate("2024-01-02")}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := l.Append("Z", Row{On: MustParseDate("2024-01-03")}); err != nil {
		t.Fatalf("second append: %v", err)
	}
	if err := l.Append("Z", Row{On: MustParseDate("2024-01-03")}); err == nil {
		t.Error("appending the same day twice should fail")
	}
	if err := l.Append("Z", Row{On: MustParseDate("2024-01-01")}); err == nil {
		t.Error("appending an earlier day should fail")
	}
}

func TestMerge_NoDuplicates(t *testing.T) {
	old := NewLedger()
	old.Append("Z", Row{On: MustParseDate("2024-01-01"), Value: M(100)})
	old.Append("Z", Row{On: MustParseDate("2024-01-02"), Value: M(110)})

	// The fresh run re-covers old days with different numbers; only the
	// genuinely new day may land.
	fresh := NewLedger()
	fresh.Append("Z", Row{On: MustParseDate("2024-01-01"), Value: M(999)})
	fresh.Append("Z", Row{On: MustParseDate("2024-01-02"), Value: M(999)})
	fresh.Append("Z", Row{On: MustParseDate("2024-01-03"), Value: M(120)})
	fresh.Append("I", Row{On: MustParseDate("2024-01-03"), Value: M(50)})

	merged := Merge(old, fresh)
	rows := merged.Rows("Z")
	if len(rows) != 3 {
		t.Fatalf("merged Z rows = %d, want 3", len(rows))
	}
	if !rows[0].Value.Equal(M(100)) || !rows[1].Value.Equal(M(110)) {
		t.Error("merge must keep old rows as-is")
	}
	if !rows[2].Value.Equal(M(120)) {
		t.Errorf("merged new row value = %s, want 120", rows[2].Value)
	}
	// A broker unknown to the old ledger comes over whole.
	if len(merged.Rows("I")) != 1 {
		t.Errorf("merged I rows = %d, want 1", len(merged.Rows("I")))
	}
}

func TestLedger_EncodeDecode(t *testing.T) {
	l := NewLedger()
	l.Append(Overall, Row{
		On:       MustParseDate("2024-01-02"),
		Value:    M(500),
		Purchase: M(500),
		NetFund:  M(500),
		Units:    decimal.NewFromFloat(0.5),
		NAV:      decimal.NewFromInt(1000),
	})
	l.Append("Z", Row{On: MustParseDate("2024-01-03"), Value: M(500), Degraded: true})

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	back, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}

	row, ok := back.Last(Overall)
	if !ok {
		t.Fatal("decoded ledger lost the Overall series")
	}
	if !row.Value.Equal(M(500)) || !row.NAV.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("decoded Overall row = %+v", row)
	}
	zrow, _ := back.Last("Z")
	if !zrow.Degraded {
		t.Error("decoded Z row lost the Degraded flag")
	}
}
