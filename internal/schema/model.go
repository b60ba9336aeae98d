package schema

import "context"

// ModelClient is the interface every model endpoint backend must satisfy.
// The council orchestrator only ever talks to models through this contract;
// transport, authentication, and credential resolution live in the
// implementing package.
type ModelClient interface {
	// Complete sends one prompt to the named model and returns its raw text.
	// The implementation bounds the call with the context's deadline.
	Complete(ctx context.Context, model, prompt string) (string, error)
	// ListModels returns the IDs of all models available on the endpoint.
	ListModels(ctx context.Context) ([]string, error)
}
