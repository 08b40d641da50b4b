// Package files implements the filesystem tools: reading, writing,
// copying, listing, and directory creation. Paths may be relative or
// absolute; the mutating tools rely on the approval gate rather than a
// path sandbox.
package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// ReadTool reads the entire content of a file.
type ReadTool struct{}

// NewReadTool creates a read tool.
func NewReadTool() *ReadTool {
	return &ReadTool{}
}

// Name returns the tool name.
func (t *ReadTool) Name() string {
	return "read_file"
}

// Description returns the tool description.
func (t *ReadTool) Description() string {
	return "Reads the entire content of a specified file."
}

// Schema returns the JSON schema for the tool parameters.
func (t *ReadTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The relative or absolute path to the file to read.",
			},
		},
		"required": []string{"path"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute reads the file and returns its content.
func (t *ReadTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Path string `json:"path"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return readError(fmt.Sprintf("Read failed: %v", err)), nil
	}
	if input.Path == "" {
		return readError("Read failed: path is required"), nil
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return readError(fmt.Sprintf("Read failed: %v", err)), nil
	}
	if info.IsDir() {
		return readError(fmt.Sprintf("Read failed: not a file: %s", input.Path)), nil
	}

	content, err := os.ReadFile(input.Path)
	if err != nil {
		return readError(fmt.Sprintf("Read failed: %v", err)), nil
	}

	return agent.Envelope{"content": string(content), "error": nil}, nil
}

func readError(message string) agent.Envelope {
	return agent.Envelope{"content": nil, "error": message}
}
