package renderer

import (
	"text/template"

	"github.com/bhavbook/bhavbook"
	"github.com/shopspring/decimal"
)

// RenderPivot renders a pivot report to a markdown string.
func RenderPivot(r *bhavbook.PivotReport) string {
	funcs := template.FuncMap{
		"pct": func(d decimal.Decimal) string {
			if d.IsZero() {
				return "-"
			}
			return d.StringFixed(2) + "%"
		},
	}
	return renderTemplate("pivot", "pivot.md", funcs, r)
}
