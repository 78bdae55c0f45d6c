package agent

import (
	"context"
	"fmt"

	"github.com/bhavbook/bhavbook"
	"github.com/bhavbook/bhavbook/docs"
	"github.com/bhavbook/bhavbook/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Books bundles the decoded portfolio state the assistant can inspect.
// The assistant only reads; editing the books stays with the regular
// subcommands.
type Books struct {
	Holdings bhavbook.Holdings
	Ledger   *bhavbook.Ledger
	Trail    *bhavbook.Trail
	Trades   *bhavbook.TradeLog
	Actions  *bhavbook.ActionBook
}

// NewBookkeeper returns the expert in charge of the user's books.
func NewBookkeeper(books *Books) *Expert {
	lib := NewLibrary(
		holdingsFunc(books),
		ledgerFunc(books),
		pivotFunc(books),
		actionsFunc(books),
	)
	return &Expert{
		Name:      "Bookkeeper",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: lib.Declarations()},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the bookkeeper of the user's Indian equity portfolio.
			The books cover holdings per broker, a NAV unit-accounting ledger,
			and a trade log of purchases and sales.

			Use the available tools to answer questions about the user's portfolio:
			  - list of held securities and their last known value
			  - NAV ledger per broker and overall
			  - profit and loss over a window (the pivot report)
			  - recorded corporate actions

			All amounts are in Indian Rupees. Quantities are whole shares.
			Answer with the figures from the tools, never invent numbers.
			`}}},
		},
		Library: lib,
	}
}

func holdingsFunc(books *Books) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Holdings",
			Description: `Holdings lists every lot in the portfolio: security,
			broker, acquisition and disposal dates, quantity, cost and last known value.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of all lots, open lots first.",
			},
		},
		Call: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Holdings", renderer.RenderHoldings(books.Holdings), nil)
		},
	}
}

func ledgerFunc(books *Books) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Ledger",
			Description: must(docs.GetTopic("nav")) + `

			Ledger returns the NAV ledger rows for one broker, or the latest
			row of every broker when no broker is given.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"broker": {
						Type:        genai.TypeString,
						Description: `The broker whose ledger to return. "Overall" aggregates all brokers.`,
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of ledger rows.",
			},
		},
		Call: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			broker, _ := args["broker"].(string)
			if broker == "" {
				return respond(id, "Ledger", renderer.RenderLedgerSummary(books.Ledger), nil)
			}
			return respond(id, "Ledger", renderer.RenderLedger(books.Ledger, broker), nil)
		},
	}
}

func pivotFunc(books *Books) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Pivot",
			Description: must(docs.GetTopic("pivot")) + `

			Pivot computes the per-security profit and loss for one broker
			over the given number of months, ending at the last recorded day.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"broker": {
						Type:        genai.TypeString,
						Description: `The broker to report on. "Overall" aggregates all brokers and is the default.`,
					},
					"months": {
						Type:        genai.TypeInteger,
						Description: `The window length in months, ending today. Default is 12.`,
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown pivot table with one line per security and a total line.",
			},
		},
		Call: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			report, err := pivot(books, args)
			if err != nil {
				return respond(id, "Pivot", "", err)
			}
			return respond(id, "Pivot", renderer.RenderPivot(report), nil)
		},
	}
}

func pivot(books *Books, args map[string]any) (*bhavbook.PivotReport, error) {
	broker := bhavbook.Overall
	if b, ok := args["broker"].(string); ok && b != "" {
		broker = b
	}
	months := 12
	// genai decodes integer arguments as float64.
	if m, ok := args["months"].(float64); ok && m > 0 {
		months = int(m)
	}
	end, ok := books.Trail.LastDate()
	if !ok {
		return nil, fmt.Errorf("the audit trail is empty, run a valuation walk first")
	}
	start := end.AddMonths(-months)
	return bhavbook.NewPivotReport(books.Trail, books.Trades, broker, start, end)
}

func actionsFunc(books *Books) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Actions",
			Description: `Actions lists the recorded corporate actions: splits,
			bonuses and consolidations, with their effective date and share ratio.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of corporate actions.",
			},
		},
		Call: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Actions", renderer.RenderActions(books.Actions), nil)
		},
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
