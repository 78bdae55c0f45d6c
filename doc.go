// Package bhavbook keeps the books of a personal Indian equity portfolio.
// It is designed to be local-first and auditable: every input and output is
// a human-readable, git-friendly line-oriented file, and every number in a
// report can be traced back to a row in one of them.
//
// The core functionalities include:
//   - Daily Valuation Walk: replaying the portfolio one calendar day at a
//     time, pricing each lot from exchange bhavcopy closes and rolling the
//     results into per-broker ledgers.
//   - NAV Unit Accounting: converting raw market values and cash flows into
//     a fund-style NAV series per broker, so performance is comparable
//     across accounts regardless of contributions and withdrawals.
//   - Corporate Action Adjustment: rewriting share counts backward and
//     forward across splits and face-value changes so historical prices and
//     quantities always agree.
//   - Audit Trail: one observation per security, broker and source file per
//     valued day, the raw material for pivot and P&L reports.
//   - Data Persistence: encoding and decoding of all books to and from
//     JSONL and CSV.
//
// This package is the foundational logic for the `bvb` command-line tool.
package bhavbook
