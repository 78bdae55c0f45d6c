package bhavbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Action is a face-value split or consolidation: on the effective date,
// every Old held shares of Symbol become New shares. Exchange filings state
// the ratio as face values ("From Rs 10 To Rs 2" splits one share into
// five); here the ratio is always the share-count ratio.
type Action struct {
	Symbol    string
	Effective Date
	New       int64 // new shares issued...
	Old       int64 // ...per this many old shares
}

// Forward applies the action to a share count going forward in time.
// Fractional shares are floored: a broker never credits a fraction.
func (a Action) Forward(quantity int64) int64 {
	return quantity * a.New / a.Old
}

// Reverse reconstructs the share count as it was before the action.
// Fractions round up: reconstructing history must never silently lose a
// rightful unit, at the cost of overstating the old count by at most one.
func (a Action) Reverse(quantity int64) int64 {
	return (quantity*a.Old + a.New - 1) / a.New
}

// ActionBook holds all known corporate actions, ascending by effective date.
// Actions sharing a date keep their declaration order, which makes the
// compounding of same-day actions deterministic.
type ActionBook struct {
	actions []Action
}

// NewActionBook builds a book from a list of actions, sorting them by
// effective date (stable, so declaration order breaks ties).
func NewActionBook(actions ...Action) *ActionBook {
	b := &ActionBook{actions: append([]Action(nil), actions...)}
	sort.SliceStable(b.actions, func(i, j int) bool {
		return b.actions[i].Effective.Before(b.actions[j].Effective)
	})
	return b
}

// Len returns the number of actions in the book.
func (b *ActionBook) Len() int { return len(b.actions) }

// Actions returns the actions in book order.
func (b *ActionBook) Actions() []Action { return b.actions }

// RollBack rewrites lot quantities to reflect the state as of 'asOf', by
// undoing every action effective on or after that date. A lot is affected
// when its symbol matches and it was acquired on or before the action's
// effective date. Actions already embedded in the table (effective before
// asOf) are untouched.
func (b *ActionBook) RollBack(h Holdings, asOf Date) {
	for _, a := range b.actions {
		if a.Effective.Before(asOf) {
			continue
		}
		for _, l := range h {
			if l.Symbol == a.Symbol && !l.Acquired.After(a.Effective) {
				l.Quantity = a.Reverse(l.Quantity)
			}
		}
	}
}

// ApplyOn applies only the actions effective exactly on 'day' to the
// matching lots. The walk driver calls it once per simulated day, so each
// action is applied exactly once.
func (b *ActionBook) ApplyOn(h Holdings, day Date) {
	for _, a := range b.actions {
		if a.Effective != day {
			continue
		}
		for _, l := range h {
			if l.Symbol == a.Symbol && !l.Acquired.After(a.Effective) {
				l.Quantity = a.Forward(l.Quantity)
			}
		}
	}
}

// --- CF-CA feed parsing ---
//
// The exchange publishes corporate actions as free text in a PURPOSE column
// ("Face Value Split From Rs. 10 To Rs. 2/-", "Fv Splt Frm Rs 10 To Re 1",
// "Consolidation Of Equity Shares From Re 1 To Rs 10"...). Only face-value
// actions matter for quantity tracking; everything else (dividends, bonus
// record dates) is filtered out here.

var faceValuePattern = regexp.MustCompile(`(?i)(?:from|frm)\s+[^0-9]*([0-9]+)[^0-9]+?to\s+[^0-9]*([0-9]+)`)
var faceValueFallback = regexp.MustCompile(`(?i)(?:rs|re)\s*([0-9]+)\s*.*?\s*to\s*(?:rs|re)\s*([0-9]+)`)

// IsFaceValueAction reports whether a PURPOSE text describes a face-value
// split or consolidation, abbreviations included.
func IsFaceValueAction(purpose string) bool {
	text := strings.ToLower(strings.ReplaceAll(purpose, ".", " "))
	if strings.Contains(text, "consolidation") || strings.Contains(text, "split") {
		return true
	}
	return strings.Contains(text, "fv") && strings.Contains(text, "splt")
}

// ParseFaceValues extracts the (from, to) face values from a PURPOSE text.
// It returns ok=false when no ratio can be extracted; such rows never reach
// the ActionBook.
func ParseFaceValues(purpose string) (from, to int64, ok bool) {
	clean := strings.NewReplacer("/-", "", "/", "", "-", " ", ".", " ").Replace(purpose)

	m := faceValuePattern.FindStringSubmatch(clean)
	if m == nil {
		m = faceValueFallback.FindStringSubmatch(clean)
	}
	if m == nil {
		return 0, 0, false
	}
	from, err1 := strconv.ParseInt(m[1], 10, 64)
	to, err2 := strconv.ParseInt(m[2], 10, 64)
	if err1 != nil || err2 != nil || from == 0 || to == 0 {
		return 0, 0, false
	}
	return from, to, true
}

// feedDateLayouts are the EX-DATE spellings seen in exchange files.
var feedDateLayouts = []string{"02-Jan-2006", "2006-01-02", "02-01-2006"}

func parseFeedDate(s string) (Date, error) {
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return NewDate(t.Date()), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized EX-DATE %q", s)
}

// DecodeActionFeed reads a CF-CA CSV feed and returns the book of face-value
// actions it contains. Non-face-value rows are skipped silently; face-value
// rows with an unextractable ratio are skipped with a warning, they must
// never reach the quantity rewrite.
//
// The feed must carry SYMBOL, EX-DATE and PURPOSE columns; headers are
// matched case-insensitively.
func DecodeActionFeed(r io.Reader) (*ActionBook, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CF-CA header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	symCol, okSym := col["SYMBOL"]
	dateCol, okDate := col["EX-DATE"]
	purposeCol, okPurpose := col["PURPOSE"]
	if !okSym || !okDate || !okPurpose {
		return nil, fmt.Errorf("CF-CA feed is missing SYMBOL, EX-DATE or PURPOSE columns (got %v)", header)
	}

	var actions []Action
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("CF-CA line %d: %w", line, err)
		}
		purpose := record[purposeCol]
		if !IsFaceValueAction(purpose) {
			continue
		}
		from, to, ok := ParseFaceValues(purpose)
		if !ok {
			log.Printf("CF-CA line %d: cannot extract face values from %q, skipping", line, purpose)
			continue
		}
		on, err := parseFeedDate(record[dateCol])
		if err != nil {
			log.Printf("CF-CA line %d: %v, skipping", line, err)
			continue
		}
		actions = append(actions, Action{
			Symbol:    strings.TrimSpace(record[symCol]),
			Effective: on,
			// A face value going from Rs 10 to Rs 2 turns every old share
			// into five new ones: the share ratio is the inverse of the
			// face ratio.
			New: from,
			Old: to,
		})
	}
	return NewActionBook(actions...), nil
}

// DecodeActionBook reads the curated action file, a CSV with SYMBOL,
// EFFECTIVE, NEW and OLD columns.
func DecodeActionBook(r io.Reader) (*ActionBook, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return NewActionBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read action header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"SYMBOL", "EFFECTIVE", "NEW", "OLD"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("action file is missing column %s (got %v)", name, header)
		}
	}

	var actions []Action
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("action file line %d: %w", line, err)
		}
		on, err := ParseDate(record[col["EFFECTIVE"]])
		if err != nil {
			return nil, fmt.Errorf("action file line %d: %w", line, err)
		}
		newShares, err := strconv.ParseInt(strings.TrimSpace(record[col["NEW"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("action file line %d: invalid NEW: %w", line, err)
		}
		oldShares, err := strconv.ParseInt(strings.TrimSpace(record[col["OLD"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("action file line %d: invalid OLD: %w", line, err)
		}
		if newShares <= 0 || oldShares <= 0 {
			return nil, fmt.Errorf("action file line %d: ratio terms must be positive, got %d:%d", line, newShares, oldShares)
		}
		actions = append(actions, Action{
			Symbol:    strings.TrimSpace(record[col["SYMBOL"]]),
			Effective: on,
			New:       newShares,
			Old:       oldShares,
		})
	}
	return NewActionBook(actions...), nil
}

// EncodeActionBook writes the book in the curated action file format.
func EncodeActionBook(w io.Writer, b *ActionBook) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"SYMBOL", "EFFECTIVE", "NEW", "OLD"}); err != nil {
		return err
	}
	for _, a := range b.Actions() {
		record := []string{
			a.Symbol,
			a.Effective.String(),
			strconv.FormatInt(a.New, 10),
			strconv.FormatInt(a.Old, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
