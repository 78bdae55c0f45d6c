// Package cmd implements the CLI application to keep the portfolio books.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bhavbook/bhavbook"
	"github.com/google/subcommands"
)

// Commands lists every subcommand. A main package registers them all and
// executes the user-selected one.
var Commands = []subcommands.Command{
	&walkCmd{},
	&fetchCmd{},
	&pivotCmd{},
	&ledgerCmd{},
	&holdingsCmd{},
	&actionsCmd{},
	&quoteCmd{},
	&topicCmd{},
	&assistCmd{},
}

// As a CLI application it is short lived, global flags are fine.

var dataDir = flag.String("dir", ".", "Directory holding the portfolio books")
var holdingsFile = flag.String("holdings-file", "holdings.csv", "Holdings file (CSV), relative to -dir")
var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "NAV ledger file (JSONL), relative to -dir")
var trailFile = flag.String("trail-file", "trail.jsonl", "Audit trail file (JSONL), relative to -dir")
var tradesFile = flag.String("trades-file", "trades.jsonl", "Trade log file (JSONL), relative to -dir")
var pricesFile = flag.String("prices-file", "prices.jsonl", "Price table file (JSONL), relative to -dir")
var actionsFile = flag.String("actions-file", "actions.csv", "Corporate action file (CSV), relative to -dir")
var renamesFile = flag.String("renames-file", "renames.csv", "Symbol rename file (CSV), relative to -dir")

func bookPath(name string) string { return filepath.Join(*dataDir, name) }

// decodeFile opens the named book and runs decode on it. A missing file
// yields the zero value from the decoder called on an empty reader, so
// every book starts out empty on a fresh directory.
func decodeFile[T any](name string, decode func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(bookPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		var empty T
		return empty, nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("cannot open %q: %w", bookPath(name), err)
	}
	defer f.Close()
	v, err := decode(f)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("cannot decode %q: %w", bookPath(name), err)
	}
	return v, nil
}

// encodeFile writes a book atomically: encode into a sibling temp file,
// then rename over the target. A failed encode never truncates the book.
func encodeFile[T any](name string, v T, encode func(io.Writer, T) error) error {
	target := bookPath(name)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temp file for %q: %w", target, err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, v); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot encode %q: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close temp file for %q: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("cannot replace %q: %w", target, err)
	}
	return nil
}

// DecodeHoldings reads the holdings book.
func DecodeHoldings() (bhavbook.Holdings, error) {
	return decodeFile(*holdingsFile, bhavbook.DecodeHoldings)
}

// EncodeHoldings writes the holdings book back, enrichment columns included.
func EncodeHoldings(h bhavbook.Holdings) error {
	return encodeFile(*holdingsFile, h, bhavbook.EncodeHoldings)
}

// DecodeLedger reads the NAV ledger. Missing file means an empty ledger.
func DecodeLedger() (*bhavbook.Ledger, error) {
	l, err := decodeFile(*ledgerFile, bhavbook.DecodeLedger)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = bhavbook.NewLedger()
	}
	return l, nil
}

// EncodeLedger writes the NAV ledger.
func EncodeLedger(l *bhavbook.Ledger) error {
	return encodeFile(*ledgerFile, l, bhavbook.EncodeLedger)
}

// DecodeTrail reads the audit trail. Missing file means an empty trail.
func DecodeTrail() (*bhavbook.Trail, error) {
	t, err := decodeFile(*trailFile, bhavbook.DecodeTrail)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t = bhavbook.NewTrail()
	}
	return t, nil
}

// EncodeTrail writes the audit trail.
func EncodeTrail(t *bhavbook.Trail) error {
	return encodeFile(*trailFile, t, bhavbook.EncodeTrail)
}

// DecodeTradeLog reads the trade log. Missing file means an empty log.
func DecodeTradeLog() (*bhavbook.TradeLog, error) {
	l, err := decodeFile(*tradesFile, bhavbook.DecodeTradeLog)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = bhavbook.NewTradeLog()
	}
	return l, nil
}

// EncodeTradeLog writes the trade log.
func EncodeTradeLog(l *bhavbook.TradeLog) error {
	return encodeFile(*tradesFile, l, bhavbook.EncodeTradeLog)
}

// DecodePriceTable reads the price table. Missing file means an empty table.
func DecodePriceTable() (*bhavbook.PriceTable, error) {
	t, err := decodeFile(*pricesFile, bhavbook.DecodePriceTable)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t = bhavbook.NewPriceTable()
	}
	return t, nil
}

// EncodePriceTable writes the price table.
func EncodePriceTable(t *bhavbook.PriceTable) error {
	return encodeFile(*pricesFile, t, bhavbook.EncodePriceTable)
}

// DecodeActionBook reads the curated action book. Missing file means an
// empty book.
func DecodeActionBook() (*bhavbook.ActionBook, error) {
	b, err := decodeFile(*actionsFile, bhavbook.DecodeActionBook)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = bhavbook.NewActionBook()
	}
	return b, nil
}

// EncodeActionBook writes the curated action book.
func EncodeActionBook(b *bhavbook.ActionBook) error {
	return encodeFile(*actionsFile, b, bhavbook.EncodeActionBook)
}

// DecodeRenameBook reads the symbol rename book. Missing file means none.
func DecodeRenameBook() (bhavbook.RenameBook, error) {
	return decodeFile(*renamesFile, bhavbook.DecodeRenameBook)
}
