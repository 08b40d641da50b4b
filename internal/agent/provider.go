package agent

import "context"

// ChatRequest contains everything sent to the model for one completion:
// the full ordered history, the static tool schema list, and pass-through
// sampling parameters. Tool choice is always "auto" - the model decides
// whether to call zero or more tools.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolSchema
	Temperature float32
	TopP        float32
}

// AssistantReply is the single assistant message returned by one model call:
// either free text, or one or more tool-call requests in the order the model
// listed them.
type AssistantReply struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider abstracts the LLM chat backend. The driver depends only on this
// shape, not on any specific vendor's transport; providers handle their own
// retries and error mapping and must be safe for sequential reuse across a
// session.
type Provider interface {
	// Complete performs one blocking completion call.
	Complete(ctx context.Context, req *ChatRequest) (*AssistantReply, error)

	// Name returns the provider identifier used for logging.
	Name() string
}
