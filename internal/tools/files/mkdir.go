package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// MkdirTool creates a directory along with any missing parents. An
// existing directory at the path is not an error.
type MkdirTool struct{}

// NewMkdirTool creates a mkdir tool.
func NewMkdirTool() *MkdirTool {
	return &MkdirTool{}
}

// Name returns the tool name.
func (t *MkdirTool) Name() string {
	return "create_directory"
}

// Description returns the tool description.
func (t *MkdirTool) Description() string {
	return "Creates a new directory, including any necessary parent directories. Requires user approval."
}

// Schema returns the JSON schema for the tool parameters.
func (t *MkdirTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The relative or absolute directory path to create.",
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

// Execute creates the directory tree.
func (t *MkdirTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Path string `json:"path"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return opError(fmt.Sprintf("Create dir failed: %v", err)), nil
	}
	if input.Path == "" {
		return opError("Create dir failed: path is required"), nil
	}

	if info, err := os.Stat(input.Path); err == nil && !info.IsDir() {
		return opError(fmt.Sprintf("Create dir failed: path exists but is a file: %s", input.Path)), nil
	}

	if err := os.MkdirAll(input.Path, 0o755); err != nil {
		return opError(fmt.Sprintf("Create dir failed: %v", err)), nil
	}

	return agent.Envelope{"success": true, "error": nil}, nil
}
