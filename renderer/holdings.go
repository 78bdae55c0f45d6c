package renderer

import (
	"fmt"
	"strings"

	"github.com/bhavbook/bhavbook"
)

// RenderHoldings renders the holdings table, lots still held first.
func RenderHoldings(h bhavbook.Holdings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings\n\n")
	fmt.Fprintln(&b, "| Name | Symbol | Broker | Acquired | Disposed | Qty | Cost | Last Price | Last Value |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|---:|---:|")

	print := func(l *bhavbook.Lot) {
		disposed := ""
		if !l.Disposed.IsZero() {
			disposed = l.Disposed.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %s | %s | %s |\n",
			l.Name, l.Symbol, l.Broker, l.Acquired, disposed,
			l.Quantity, l.Cost, l.LastPrice, l.LastValue)
	}
	for _, l := range h {
		if l.Disposed.IsZero() {
			print(l)
		}
	}
	for _, l := range h {
		if !l.Disposed.IsZero() {
			print(l)
		}
	}
	return b.String()
}

// RenderActions renders the corporate action book.
func RenderActions(book *bhavbook.ActionBook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Corporate Actions\n\n")
	fmt.Fprintln(&b, "| Symbol | Effective | Ratio |")
	fmt.Fprintln(&b, "|:---|:---|:---|")
	for _, a := range book.Actions() {
		fmt.Fprintf(&b, "| %s | %s | %d new for %d old |\n", a.Symbol, a.Effective, a.New, a.Old)
	}
	return b.String()
}
