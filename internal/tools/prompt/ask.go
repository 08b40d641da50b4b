// Package prompt implements the ask_user tool, which relays a question
// from the assistant to the human at the console.
package prompt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// AskTool asks the user a question through an injected prompter and
// returns the answer to the model.
type AskTool struct {
	prompter agent.Prompter
}

// NewAskTool creates an ask tool bound to a prompter.
func NewAskTool(prompter agent.Prompter) *AskTool {
	return &AskTool{prompter: prompter}
}

// Name returns the tool name.
func (t *AskTool) Name() string {
	return "ask_user"
}

// Description returns the tool description.
func (t *AskTool) Description() string {
	return "Asks the human user a question and returns their response."
}

// Schema returns the JSON schema for the tool parameters.
func (t *AskTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The question to ask the user.",
			},
		},
		"required": []string{"question"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute relays the question and returns the user's answer. A closed or
// interrupted input stream is reported in the envelope, not as a
// dispatch failure.
func (t *AskTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Question string `json:"question"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return agent.Envelope{"response": nil, "error": fmt.Sprintf("Input error: %v", err)}, nil
	}
	if input.Question == "" {
		return agent.Envelope{"response": nil, "error": "Input error: question is required"}, nil
	}

	response, err := t.prompter.Ask(input.Question)
	if err != nil {
		return agent.Envelope{"response": nil, "error": "User interrupted or input closed."}, nil
	}
	return agent.Envelope{"response": response, "error": nil}, nil
}
