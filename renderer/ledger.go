package renderer

import (
	"fmt"
	"strings"

	"github.com/bhavbook/bhavbook"
)

// RenderLedger renders one broker's NAV series as a markdown table, most
// recent day last.
func RenderLedger(l *bhavbook.Ledger, broker string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ledger %s\n\n", broker)

	rows := l.Rows(broker)
	if len(rows) == 0 {
		fmt.Fprintf(&b, "no rows for %q\n", broker)
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Value | Purchase | Sales | Net Fund | Units | NAV | |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|:---|")
	for _, row := range rows {
		flag := ""
		if row.Degraded {
			flag = "degraded"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			row.On,
			row.Value,
			row.Purchase.SignedString(),
			row.Sales.SignedString(),
			row.NetFund.SignedString(),
			row.Units.StringFixed(4),
			row.NAV.StringFixed(2),
			flag,
		)
	}
	return b.String()
}

// RenderLedgerSummary renders the latest row of every broker side by side.
func RenderLedgerSummary(l *bhavbook.Ledger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ledger\n\n")
	fmt.Fprintln(&b, "| Broker | As Of | Value | Units | NAV |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, broker := range l.Brokers() {
		row, ok := l.Last(broker)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			broker, row.On, row.Value, row.Units.StringFixed(4), row.NAV.StringFixed(2))
	}
	return b.String()
}
