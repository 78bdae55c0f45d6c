package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Func is a callable tool the model can invoke during a chat.
type Func struct {
	// Decl declares the function to the model.
	Decl *genai.FunctionDeclaration
	// Call computes the response for one invocation.
	Call func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Library indexes functions by their declared name.
type Library map[string]*Func

// NewLibrary builds a library from the given functions.
func NewLibrary(funcs ...*Func) Library {
	lib := make(Library, len(funcs))
	for _, f := range funcs {
		lib[f.Decl.Name] = f
	}
	return lib
}

// Declarations returns the function declarations for the model config.
func (l Library) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(l))
	for _, f := range l {
		decls = append(decls, f.Decl)
	}
	return decls
}

// Call dispatches a function call issued by the model. Unknown names
// are answered with an error response rather than failing the chat.
func (l Library) Call(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	f, ok := l[call.Name]
	if !ok {
		return &genai.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Response: map[string]any{
				"error": fmt.Sprintf("unknown function %q", call.Name),
			},
		}
	}
	return f.Call(ctx, call.ID, call.Args)
}

// respond wraps a plain result, or the error if there is one, into a
// function response for the model.
func respond(id, name, output string, err error) *genai.FunctionResponse {
	if err != nil {
		return &genai.FunctionResponse{
			ID:   id,
			Name: name,
			Response: map[string]any{
				"error": err.Error(),
			},
		}
	}
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": output,
		},
	}
}
