package bhavbook

import (
	"bytes"
	"math"
	"testing"
)

func TestPriceTable_Get(t *testing.T) {
	table := NewPriceTable()
	on := MustParseDate("2024-01-10")
	table.Append("ABC.NS", on, 60)
	table.Append("NAN.NS", on, math.NaN())

	if v, ok := table.Get("ABC.NS", on); !ok || v != 60 {
		t.Errorf("Get(ABC.NS) = %v, %v; want 60, true", v, ok)
	}
	// Absent ticker, absent day and stored NaN all collapse to "no price".
	if _, ok := table.Get("ABC.NS", on.Add(1)); ok {
		t.Error("absent day must report no price")
	}
	if _, ok := table.Get("GHOST.NS", on); ok {
		t.Error("absent ticker must report no price")
	}
	if _, ok := table.Get("NAN.NS", on); ok {
		t.Error("a stored NaN must report no price")
	}
}

func TestPriceTable_AppendOverwrites(t *testing.T) {
	table := NewPriceTable()
	on := MustParseDate("2024-01-10")
	table.Append("ABC.NS", on, 60)
	table.Append("ABC.NS", on, 61)
	if v, _ := table.Get("ABC.NS", on); v != 61 {
		t.Errorf("Get after overwrite = %v, want 61", v)
	}
}

func TestPriceTable_Latest(t *testing.T) {
	table := NewPriceTable()
	table.Append("ABC.NS", MustParseDate("2024-01-12"), 62)
	table.Append("ABC.NS", MustParseDate("2024-01-10"), 60)

	on, v, ok := table.Latest("ABC.NS")
	if !ok || on != MustParseDate("2024-01-12") || v != 62 {
		t.Errorf("Latest() = %s, %v, %v; want 2024-01-12, 62, true", on, v, ok)
	}
	if _, _, ok := table.Latest("GHOST.NS"); ok {
		t.Error("Latest of an unknown ticker must not be ok")
	}
}

func TestPriceTable_EncodeDecode(t *testing.T) {
	table := NewPriceTable()
	table.Append("ABC.NS", MustParseDate("2024-01-10"), 60)
	table.Append("ABC.NS", MustParseDate("2024-01-11"), 61.5)
	table.Append("DEF.BO", MustParseDate("2024-01-10"), 110)

	var buf bytes.Buffer
	if err := EncodePriceTable(&buf, table); err != nil {
		t.Fatalf("EncodePriceTable() error = %v", err)
	}
	back, err := DecodePriceTable(&buf)
	if err != nil {
		t.Fatalf("DecodePriceTable() error = %v", err)
	}
	if got := back.Tickers(); len(got) != 2 {
		t.Fatalf("decoded tickers = %v, want 2", got)
	}
	if v, ok := back.Get("ABC.NS", MustParseDate("2024-01-11")); !ok || v != 61.5 {
		t.Errorf("decoded Get = %v, %v; want 61.5, true", v, ok)
	}
}

func TestHistory_ValueAsOf(t *testing.T) {
	h := &History{}
	h.Append(MustParseDate("2024-01-10"), 60)
	h.Append(MustParseDate("2024-01-12"), 62)

	tests := []struct {
		on   string
		want float64
		ok   bool
	}{
		{"2024-01-10", 60, true},
		{"2024-01-11", 60, true}, // holiday carries the last close forward
		{"2024-01-12", 62, true},
		{"2024-01-20", 62, true},
		{"2024-01-01", 0, false},
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(MustParseDate(tt.on))
		if ok != tt.ok || got != tt.want {
			t.Errorf("ValueAsOf(%s) = %v, %v; want %v, %v", tt.on, got, ok, tt.want, tt.ok)
		}
	}
}
