package bhavbook

import (
	"strings"
	"testing"
)

func TestRenameBook_SymbolOn(t *testing.T) {
	book := RenameBook{
		{Old: "MOTHERSUMI", New: "MSUMI", Effective: MustParseDate("2022-04-12")},
		{Old: "MSUMI", New: "MOTHERSON", Effective: MustParseDate("2023-01-02")},
	}
	tests := []struct {
		current string
		day     string
		want    string
	}{
		{"MOTHERSON", "2023-06-01", "MOTHERSON"}, // after the last rename
		{"MOTHERSON", "2022-06-01", "MSUMI"},     // between the two
		{"MOTHERSON", "2021-06-01", "MOTHERSUMI"},
		{"MOTHERSON", "2023-01-02", "MOTHERSON"}, // effective day uses the new symbol
		{"UNRELATED", "2021-06-01", "UNRELATED"},
	}
	for _, tt := range tests {
		if got := book.SymbolOn(tt.current, MustParseDate(tt.day)); got != tt.want {
			t.Errorf("SymbolOn(%s, %s) = %s, want %s", tt.current, tt.day, got, tt.want)
		}
	}
}

func TestRenameBook_Current(t *testing.T) {
	book := RenameBook{
		{Old: "MSUMI", New: "MOTHERSON", Effective: MustParseDate("2023-01-02")},
		{Old: "MOTHERSUMI", New: "MSUMI", Effective: MustParseDate("2022-04-12")},
	}
	if got := book.Current("MOTHERSUMI"); got != "MOTHERSON" {
		t.Errorf("Current(MOTHERSUMI) = %s, want MOTHERSON", got)
	}
	if got := book.Current("NEVERRENAMED"); got != "NEVERRENAMED" {
		t.Errorf("Current(NEVERRENAMED) = %s, want itself", got)
	}
}

func TestDecodeRenameBook(t *testing.T) {
	csv := `OLD,NEW,EFFECTIVE
MOTHERSUMI,MSUMI,2022-04-12
MSUMI,MOTHERSON,2023-01-02
`
	book, err := DecodeRenameBook(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("DecodeRenameBook() error = %v", err)
	}
	if len(book) != 2 {
		t.Fatalf("decoded %d renames, want 2", len(book))
	}
	if book[0].Old != "MOTHERSUMI" || book[0].Effective != MustParseDate("2022-04-12") {
		t.Errorf("first rename = %+v", book[0])
	}
}
