package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Expert is a conversational specialist backed by a generative model.
// It keeps its chat session so follow-up questions retain context.
type Expert struct {
	// Name identifies the expert in logs and function responses.
	Name string
	// ModelName is the generative model backing this expert.
	ModelName string
	// Config carries the system instruction and tool declarations.
	Config *genai.GenerateContentConfig
	// Library resolves function calls requested by the model.
	Library Library

	chat *genai.Chat
}

// Start opens the chat session for this expert.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("cannot start expert %q: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert and resolves any function calls the
// model issues before returning the final text answer.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("expert %q has not been started", e.Name)
	}
	res, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("expert %q: %w", e.Name, err)
	}

	calls := res.FunctionCalls()
	if len(calls) == 0 {
		return res.Text(), nil
	}

	// Answer every pending call, then hand the responses back to the
	// model and let it continue until it settles on a text answer.
	responses := make([]*genai.Part, 0, len(calls))
	for _, call := range calls {
		fr := e.Library.Call(ctx, call)
		responses = append(responses, &genai.Part{FunctionResponse: fr})
	}
	return e.Ask(ctx, responses...)
}
