package bhavbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Holdings table CSV columns. Columns are addressed by header name so the
// curated file can carry extra columns or reorder them without breaking the
// decoder.
const (
	colName     = "NAME"
	colSymbol   = "SYMBOL"
	colExchange = "EXCHANGE"
	colBroker   = "BROKER"
	colAcquired = "ACQUIRED"
	colDisposed = "DISPOSED"
	colQuantity = "QUANTITY"
	colCost     = "COST"
	colNetCost  = "NET COST"
	colNetSale  = "NET SALE"
	colFile     = "FILE"
	colPrice    = "LAST PRICE"
	colValue    = "LAST VALUE"
)

// header maps column names to indices for one CSV file.
type header map[string]int

func (h header) cell(record []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h header) date(record []string, column string) (Date, error) {
	cell := h.cell(record, column)
	if cell == "" {
		return Date{}, nil
	}
	return ParseDate(cell)
}

func (h header) int(record []string, column string) (int64, error) {
	cell := h.cell(record, column)
	if cell == "" {
		return 0, nil
	}
	return strconv.ParseInt(cell, 10, 64)
}

func (h header) money(record []string, column string) (Money, error) {
	cell := h.cell(record, column)
	if cell == "" {
		return Money{}, nil
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return Money{}, err
	}
	return MD(d), nil
}

// DecodeHoldings reads the human-curated holdings table. Broker cells are
// normalized, dates are permissive, blank numeric cells read as zero.
func DecodeHoldings(r io.Reader) (Holdings, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading holdings: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("holdings file is empty")
	}

	head := make(header)
	for i, name := range records[0] {
		head[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colName, colSymbol, colBroker, colAcquired, colQuantity} {
		if _, ok := head[required]; !ok {
			return nil, fmt.Errorf("holdings file is missing the %s column", required)
		}
	}

	var holdings Holdings
	for i, record := range records[1:] {
		line := i + 2
		lot := &Lot{
			Name:     head.cell(record, colName),
			Symbol:   head.cell(record, colSymbol),
			Exchange: head.cell(record, colExchange),
			Broker:   NormalizeBroker(head.cell(record, colBroker)),
			File:     head.cell(record, colFile),
		}
		if lot.Exchange == "" {
			lot.Exchange = NSE
		}
		if lot.Acquired, err = head.date(record, colAcquired); err != nil {
			return nil, fmt.Errorf("holdings line %d: acquired: %w", line, err)
		}
		if lot.Disposed, err = head.date(record, colDisposed); err != nil {
			return nil, fmt.Errorf("holdings line %d: disposed: %w", line, err)
		}
		if lot.Quantity, err = head.int(record, colQuantity); err != nil {
			return nil, fmt.Errorf("holdings line %d: quantity: %w", line, err)
		}
		if lot.Cost, err = head.money(record, colCost); err != nil {
			return nil, fmt.Errorf("holdings line %d: cost: %w", line, err)
		}
		if lot.NetCost, err = head.money(record, colNetCost); err != nil {
			return nil, fmt.Errorf("holdings line %d: net cost: %w", line, err)
		}
		if lot.NetSale, err = head.money(record, colNetSale); err != nil {
			return nil, fmt.Errorf("holdings line %d: net sale: %w", line, err)
		}
		holdings = append(holdings, lot)
	}
	return holdings, nil
}

// EncodeHoldings writes the holdings table back, appending the last walked
// day's closing price and market value per lot. Quantities are the curated,
// un-adjusted ones.
func EncodeHoldings(w io.Writer, h Holdings) error {
	cw := csv.NewWriter(w)
	head := []string{colName, colSymbol, colExchange, colBroker, colAcquired,
		colDisposed, colQuantity, colCost, colNetCost, colNetSale, colFile,
		colPrice, colValue}
	if err := cw.Write(head); err != nil {
		return fmt.Errorf("writing holdings: %w", err)
	}
	for _, l := range h {
		record := []string{
			l.Name,
			l.Symbol,
			l.Exchange,
			l.Broker,
			dateCell(l.Acquired),
			dateCell(l.Disposed),
			strconv.FormatInt(l.Quantity, 10),
			moneyCell(l.Cost),
			moneyCell(l.NetCost),
			moneyCell(l.NetSale),
			l.File,
			moneyCell(l.LastPrice),
			moneyCell(l.LastValue),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing holdings: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func dateCell(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func moneyCell(m Money) string {
	if m.IsZero() {
		return ""
	}
	return m.Decimal().String()
}
