package bhavbook

import (
	"strings"
	"testing"
)

func TestAction_RoundTrip(t *testing.T) {
	actions := []Action{
		{New: 2, Old: 1},  // 2:1 split
		{New: 5, Old: 1},  // Rs 10 -> Rs 2
		{New: 10, Old: 1}, // Rs 10 -> Re 1
		{New: 1, Old: 10}, // consolidation Re 1 -> Rs 10
		{New: 3, Old: 2},
	}
	quantities := []int64{1, 3, 7, 10, 99, 100, 12345}

	// A curated quantity arose from whole pre-action shares; reversing and
	// re-applying such a count must land exactly back on it.
	for _, a := range actions {
		for _, before := range quantities {
			q := a.Forward(before)
			if back := a.Forward(a.Reverse(q)); back != q {
				t.Errorf("Forward(Reverse(%d)) with %d:%d = %d, want %d",
					q, a.New, a.Old, back, q)
			}
		}
	}

	// For arbitrary counts the ceiling/floor asymmetry overshoots by at
	// most one share.
	for _, a := range []Action{{New: 2, Old: 1}, {New: 3, Old: 2}, {New: 1, Old: 10}} {
		for _, q := range quantities {
			back := a.Forward(a.Reverse(q))
			if back != q && back != q+1 {
				t.Errorf("Forward(Reverse(%d)) with %d:%d = %d, want %d or %d",
					q, a.New, a.Old, back, q, q+1)
			}
		}
	}
}

func TestAction_Reverse(t *testing.T) {
	// 10 shares after a 2:1 split reconstruct to 5 before it.
	a := Action{New: 2, Old: 1}
	if got := a.Reverse(10); got != 5 {
		t.Errorf("Reverse(10) = %d, want 5", got)
	}
	// Odd counts round up, never losing a rightful share.
	if got := a.Reverse(11); got != 6 {
		t.Errorf("Reverse(11) = %d, want 6", got)
	}
	if got := a.Forward(5); got != 10 {
		t.Errorf("Forward(5) = %d, want 10", got)
	}
}

func TestActionBook_RollBackAndApply(t *testing.T) {
	h := Holdings{
		{Symbol: "ABC", Broker: "Z", Acquired: MustParseDate("2023-01-10"), Quantity: 100},
		{Symbol: "ABC", Broker: "Z", Acquired: MustParseDate("2024-06-01"), Quantity: 40},
		{Symbol: "XYZ", Broker: "Z", Acquired: MustParseDate("2023-01-10"), Quantity: 7},
	}
	book := NewActionBook(
		Action{Symbol: "ABC", Effective: MustParseDate("2024-03-01"), New: 5, Old: 1},
	)

	book.RollBack(h, MustParseDate("2023-06-01"))
	// The first lot existed before the split: its curated 100 shares were 20.
	if h[0].Quantity != 20 {
		t.Errorf("rolled back quantity = %d, want 20", h[0].Quantity)
	}
	// The second lot was acquired after the effective date: untouched.
	if h[1].Quantity != 40 {
		t.Errorf("post-action lot quantity = %d, want 40", h[1].Quantity)
	}
	// Other symbols are untouched.
	if h[2].Quantity != 7 {
		t.Errorf("unrelated lot quantity = %d, want 7", h[2].Quantity)
	}

	// Replaying the effective day restores the curated count.
	book.ApplyOn(h, MustParseDate("2024-03-01"))
	if h[0].Quantity != 100 {
		t.Errorf("reapplied quantity = %d, want 100", h[0].Quantity)
	}
}

func TestActionBook_SameDayOrder(t *testing.T) {
	// Two actions on the same day compound in declaration order.
	h := Holdings{{Symbol: "ABC", Acquired: MustParseDate("2023-01-01"), Quantity: 10}}
	on := MustParseDate("2024-01-15")
	book := NewActionBook(
		Action{Symbol: "ABC", Effective: on, New: 2, Old: 1},
		Action{Symbol: "ABC", Effective: on, New: 3, Old: 1},
	)
	book.ApplyOn(h, on)
	if h[0].Quantity != 60 {
		t.Errorf("compounded quantity = %d, want 60", h[0].Quantity)
	}
}

func TestIsFaceValueAction(t *testing.T) {
	tests := []struct {
		purpose string
		want    bool
	}{
		{"Face Value Split From Rs. 10 To Rs. 2/-", true},
		{"Fv Splt Frm Rs 10 To Re 1", true},
		{"Consolidation Of Equity Shares From Re 1 To Rs 10", true},
		{"Dividend - Rs 5 Per Share", false},
		{"Bonus 1:1", false},
		{"Annual General Meeting", false},
	}
	for _, tt := range tests {
		if got := IsFaceValueAction(tt.purpose); got != tt.want {
			t.Errorf("IsFaceValueAction(%q) = %v, want %v", tt.purpose, got, tt.want)
		}
	}
}

func TestParseFaceValues(t *testing.T) {
	tests := []struct {
		purpose  string
		from, to int64
		ok       bool
	}{
		{"Face Value Split From Rs. 10 To Rs. 2/-", 10, 2, true},
		{"Fv Splt Frm Rs 10 To Re 1", 10, 1, true},
		{"Consolidation Of Equity Shares From Re 1 To Rs 10", 1, 10, true},
		{"Face Value Split From Rs.10/- To Rs.5/-", 10, 5, true},
		{"Face Value Split", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.purpose, func(t *testing.T) {
			from, to, ok := ParseFaceValues(tt.purpose)
			if ok != tt.ok {
				t.Fatalf("ParseFaceValues(%q) ok = %v, want %v", tt.purpose, ok, tt.ok)
			}
			if from != tt.from || to != tt.to {
				t.Errorf("ParseFaceValues(%q) = (%d, %d), want (%d, %d)", tt.purpose, from, to, tt.from, tt.to)
			}
		})
	}
}

func TestDecodeActionFeed(t *testing.T) {
	feed := `SYMBOL,COMPANY,SERIES,EX-DATE,PURPOSE
ABC,Abc Industries Ltd,EQ,01-Mar-2024,Face Value Split From Rs. 10 To Rs. 2/-
DEF,Def Ltd,EQ,15-Apr-2024,Dividend - Rs 3 Per Share
GHI,Ghi Ltd,EQ,2024-05-20,Consolidation Of Equity Shares From Re 1 To Rs 10
`
	book, err := DecodeActionFeed(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("DecodeActionFeed() error = %v", err)
	}
	if book.Len() != 2 {
		t.Fatalf("DecodeActionFeed() kept %d actions, want 2", book.Len())
	}

	// Face Rs 10 -> Rs 2 means one old share becomes five new ones.
	split := book.Actions()[0]
	if split.Symbol != "ABC" || split.New != 10 || split.Old != 2 {
		t.Errorf("split action = %+v, want ABC 10:2", split)
	}
	if got := split.Forward(1); got != 5 {
		t.Errorf("split Forward(1) = %d, want 5", got)
	}
	if split.Effective != MustParseDate("2024-03-01") {
		t.Errorf("split effective = %v, want 2024-03-01", split.Effective)
	}

	// Face Re 1 -> Rs 10 consolidates ten old shares into one.
	consolidation := book.Actions()[1]
	if consolidation.Symbol != "GHI" || consolidation.New != 1 || consolidation.Old != 10 {
		t.Errorf("consolidation action = %+v, want GHI 1:10", consolidation)
	}
}
