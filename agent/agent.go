// Package agent implements the interactive assistant that answers
// questions about the portfolio books using a generative model.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent runs the read-eval-print loop between the user and the
// bookkeeper expert.
type Agent struct {
	w      io.Writer
	r      *bufio.Reader
	expert *Expert
}

// New creates an agent over the given books, reading questions from r
// and writing answers to w.
func New(w io.Writer, r io.Reader, books *Books) *Agent {
	return &Agent{
		w:      w,
		r:      bufio.NewReader(r),
		expert: NewBookkeeper(books),
	}
}

// Start connects to the generative model. The client reads its API key
// from the environment.
func (a *Agent) Start(ctx context.Context) error {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot create genai client: %w", err)
	}
	return a.expert.Start(ctx, client)
}

// Run loops over user questions until EOF or "bye". A non-empty
// initial prompt is asked before reading from the user.
func (a *Agent) Run(ctx context.Context, initialPrompt string) error {
	fmt.Fprintln(a.w, "Welcome to bvb assist. Type 'bye' to exit.")
	if initialPrompt != "" {
		answer, err := a.expert.Ask(ctx, &genai.Part{Text: initialPrompt})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
	for {
		fmt.Fprint(a.w, "assist> ")
		line, err := a.r.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot read question: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "bye") {
			fmt.Fprintln(a.w, "bye")
			return nil
		}

		answer, err := a.expert.Ask(ctx, &genai.Part{Text: line})
		if err != nil {
			fmt.Fprintf(a.w, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(a.w, answer)
	}
}
