package nse

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/bhavbook/bhavbook"
)

func TestBhavcopyURLs(t *testing.T) {
	on := bhavbook.NewDate(2024, time.March, 5)
	if got := nseBhavcopyURL(on); got != "https://nsearchives.nseindia.com/products/content/sec_bhavdata_full_05032024.csv" {
		t.Errorf("nseBhavcopyURL = %s", got)
	}
	if got := bseBhavcopyURL(on); got != "https://www.bseindia.com/download/BhavCopy/Equity/BhavCopy_BSE_CM_0_0_0_20240305_F_0000.csv" {
		t.Errorf("bseBhavcopyURL = %s", got)
	}
	// The legacy zipped format, day-month-year ordered.
	legacy := bhavbook.NewDate(2023, time.June, 7)
	if got := bseBhavcopyURL(legacy); got != "http://www.bseindia.com/download/BhavCopy/Equity/BSE_EQ_BHAVCOPY_07062023.zip" {
		t.Errorf("legacy bseBhavcopyURL = %s", got)
	}
}

func TestParseNSE_SeriesPriority(t *testing.T) {
	// Headers carry erratic leading spaces, and ABC trades in both BE and
	// EQ: the EQ close must win regardless of row order.
	data := `SYMBOL, SERIES, DATE1, CLOSE_PRICE
ABC, BE, 05-Mar-2024, 99.00
ABC, EQ, 05-Mar-2024, 101.50
DEF, BZ, 05-Mar-2024, 55.00
GHI, EQ, 05-Mar-2024, -
`
	closes := make(map[string]float64)
	if err := parseNSE(strings.NewReader(data), closes); err != nil {
		t.Fatalf("parseNSE() error = %v", err)
	}
	if closes["ABC.NS"] != 101.50 {
		t.Errorf("ABC.NS = %v, want the EQ close 101.50", closes["ABC.NS"])
	}
	if closes["DEF.NS"] != 55.00 {
		t.Errorf("DEF.NS = %v, want 55.00", closes["DEF.NS"])
	}
	// A dash close parses as nothing, not as zero.
	if _, ok := closes["GHI.NS"]; ok {
		t.Error("GHI.NS must not be present")
	}
}

func TestParseBSE(t *testing.T) {
	data := `TradDt,BizDt,Sgmt,TckrSymb,ClsPric
2024-03-05,2024-03-05,CM,ABC,101.50
2024-03-05,2024-03-05,CM,DEF,55.00
`
	closes := make(map[string]float64)
	if err := parseBSE(strings.NewReader(data), closes); err != nil {
		t.Fatalf("parseBSE() error = %v", err)
	}
	if closes["ABC.BO"] != 101.50 || closes["DEF.BO"] != 55.00 {
		t.Errorf("closes = %v", closes)
	}
}

func TestBhav_Lookup(t *testing.T) {
	b := &Bhav{
		Close:       map[string]float64{"ABC.NS": 100},
		CloseByName: map[string]float64{"OLD MILLS LTD": 42},
	}
	if v, ok := b.Lookup("ABC.NS", "Abc Industries"); !ok || v != 100 {
		t.Errorf("Lookup by ticker = %v, %v", v, ok)
	}
	// Legacy BSE days only know company names.
	if v, ok := b.Lookup("OLDM.BO", "Old Mills Ltd "); !ok || v != 42 {
		t.Errorf("Lookup by name = %v, %v", v, ok)
	}
	if _, ok := b.Lookup("GHOST.NS", "Ghost"); ok {
		t.Error("unknown ticker must not resolve")
	}
}

func TestSource_Resolve(t *testing.T) {
	table := bhavbook.NewPriceTable()
	on := bhavbook.MustParseDate("2024-03-05")
	table.Append("ABC.NS", on, 101.5)
	table.Append("DEF.NS", on, math.NaN()) // fetched but absent that day

	s := NewSource(table)
	if v, ok, err := s.Resolve("ABC.NS", on); err != nil || !ok || v != 101.5 {
		t.Errorf("Resolve(ABC.NS) = %v, %v, %v", v, ok, err)
	}
	// Covered day, missing instrument: no price, no error. The valuation
	// falls back to cost.
	if _, ok, err := s.Resolve("DEF.NS", on); err != nil || ok {
		t.Errorf("Resolve(DEF.NS) = ok=%v err=%v, want no price and no error", ok, err)
	}
	// Uncovered day: a hard error, the walk degrades.
	if _, _, err := s.Resolve("ABC.NS", on.Add(1)); err == nil {
		t.Error("an uncovered day must resolve with an error")
	}
}

func TestHistoricalTicker(t *testing.T) {
	renames := bhavbook.RenameBook{
		{Old: "MSUMI", New: "MOTHERSON", Effective: bhavbook.MustParseDate("2023-01-02")},
	}
	if got := historicalTicker("MOTHERSON.NS", renames, bhavbook.MustParseDate("2022-06-01")); got != "MSUMI.NS" {
		t.Errorf("historicalTicker = %s, want MSUMI.NS", got)
	}
	if got := historicalTicker("MOTHERSON.NS", renames, bhavbook.MustParseDate("2023-06-01")); got != "MOTHERSON.NS" {
		t.Errorf("historicalTicker = %s, want MOTHERSON.NS", got)
	}
}
