// Package nse downloads daily closing prices from the NSE and BSE archives
// (the "bhavcopy" files both exchanges publish after each session) and fills
// the price table the valuation walk reads from.
package nse

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bhavbook/bhavbook"
)

// bseFormatSwitch is the day BSE moved from the zipped legacy bhavcopy to
// the plain CSV one, with entirely different column names.
var bseFormatSwitch = bhavbook.NewDate(2024, time.January, 1)

// nseBhavcopyURL returns the NSE full bhavdata URL for one session.
func nseBhavcopyURL(on bhavbook.Date) string {
	return fmt.Sprintf("https://nsearchives.nseindia.com/products/content/sec_bhavdata_full_%02d%02d%04d.csv",
		on.Day(), on.Month(), on.Year())
}

// bseBhavcopyURL returns the BSE bhavcopy URL for one session, in whichever
// format that day was published.
func bseBhavcopyURL(on bhavbook.Date) string {
	if on.Before(bseFormatSwitch) {
		return fmt.Sprintf("http://www.bseindia.com/download/BhavCopy/Equity/BSE_EQ_BHAVCOPY_%02d%02d%04d.zip",
			on.Day(), on.Month(), on.Year())
	}
	return fmt.Sprintf("https://www.bseindia.com/download/BhavCopy/Equity/BhavCopy_BSE_CM_0_0_0_%04d%02d%02d_F_0000.csv",
		on.Year(), on.Month(), on.Day())
}

// Bhav is one session's closing prices across both exchanges.
type Bhav struct {
	On bhavbook.Date
	// Close is keyed by ticker (symbol plus .NS/.BO market suffix).
	Close map[string]float64
	// CloseByName is keyed by uppercase company name: the legacy BSE files
	// carry no symbol, only names.
	CloseByName map[string]float64
}

// Lookup resolves a ticker's close, falling back to the company name for
// days covered only by the legacy BSE format.
func (b *Bhav) Lookup(ticker, name string) (float64, bool) {
	if v, ok := b.Close[ticker]; ok {
		return v, true
	}
	if strings.HasSuffix(ticker, ".BO") {
		if v, ok := b.CloseByName[strings.ToUpper(strings.TrimSpace(name))]; ok {
			return v, true
		}
	}
	return 0, false
}

// FetchDay downloads and parses both exchanges' bhavcopies for one session.
// Either exchange failing fails the day: a half-priced day would silently
// undervalue every lot of the missing exchange.
func FetchDay(client *http.Client, on bhavbook.Date) (*Bhav, error) {
	b := &Bhav{
		On:          on,
		Close:       make(map[string]float64),
		CloseByName: make(map[string]float64),
	}

	body, err := wget(client, nseBhavcopyURL(on))
	if err != nil {
		return nil, fmt.Errorf("NSE bhavcopy for %s: %w", on, err)
	}
	if err := parseNSE(bytes.NewReader(body), b.Close); err != nil {
		return nil, fmt.Errorf("NSE bhavcopy for %s: %w", on, err)
	}

	body, err = wget(client, bseBhavcopyURL(on))
	if err != nil {
		return nil, fmt.Errorf("BSE bhavcopy for %s: %w", on, err)
	}
	if on.Before(bseFormatSwitch) {
		err = parseBSELegacy(body, b.CloseByName)
	} else {
		err = parseBSE(bytes.NewReader(body), b.Close)
	}
	if err != nil {
		return nil, fmt.Errorf("BSE bhavcopy for %s: %w", on, err)
	}
	return b, nil
}

// seriesPriority ranks NSE series when a symbol trades in several: the
// normal EQ rows beat trade-to-trade BE rows, everything else comes last.
func seriesPriority(series string) int {
	switch strings.TrimSpace(series) {
	case "EQ":
		return 1
	case "BE":
		return 2
	default:
		return 3
	}
}

// parseNSE reads the sec_bhavdata_full CSV. Header names arrive with
// erratic leading spaces, so they are trimmed before addressing. One close
// per symbol is kept, best series first.
func parseNSE(r io.Reader, closes map[string]float64) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("cannot read header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	symCol, okSym := col["SYMBOL"]
	seriesCol, okSeries := col["SERIES"]
	closeCol, okClose := col["CLOSE_PRICE"]
	if !okSym || !okSeries || !okClose {
		return fmt.Errorf("missing SYMBOL, SERIES or CLOSE_PRICE columns (got %v)", header)
	}

	kept := make(map[string]int) // ticker -> priority of the kept row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) <= closeCol {
			continue
		}
		ticker := strings.TrimSpace(record[symCol]) + ".NS"
		priority := seriesPriority(record[seriesCol])
		if prev, ok := kept[ticker]; ok && prev <= priority {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			continue // dashes and blanks for suspended rows
		}
		closes[ticker] = v
		kept[ticker] = priority
	}
}

// parseBSE reads the post-2024 BSE CSV (TckrSymb / ClsPric columns).
func parseBSE(r io.Reader, closes map[string]float64) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("cannot read header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	symCol, okSym := col["TckrSymb"]
	closeCol, okClose := col["ClsPric"]
	if !okSym || !okClose {
		return fmt.Errorf("missing TckrSymb or ClsPric columns (got %v)", header)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) <= closeCol {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			continue
		}
		ticker := strings.TrimSpace(record[symCol]) + ".BO"
		if _, ok := closes[ticker]; !ok {
			closes[ticker] = v
		}
	}
}

// parseBSELegacy reads the pre-2024 zipped BSE bhavcopy (SC_NAME / CLOSE
// columns, no usable symbol), keyed by uppercase company name.
func parseBSELegacy(body []byte, closeByName map[string]float64) error {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("cannot open zip archive: %w", err)
	}
	if len(zr.File) == 0 {
		return fmt.Errorf("empty zip archive")
	}
	f, err := zr.File[0].Open()
	if err != nil {
		return fmt.Errorf("cannot open %q from zip archive: %w", zr.File[0].Name, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("cannot read header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	nameCol, okName := col["SC_NAME"]
	closeCol, okClose := col["CLOSE"]
	if !okName || !okClose {
		return fmt.Errorf("missing SC_NAME or CLOSE columns (got %v)", header)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) <= closeCol {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(record[nameCol]))
		if _, ok := closeByName[name]; !ok {
			closeByName[name] = v
		}
	}
}
