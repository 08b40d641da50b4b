package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// WriteTool writes content to a file, creating parent directories as
// needed. Overwriting an existing file requires an explicit flag.
type WriteTool struct{}

// NewWriteTool creates a write tool.
func NewWriteTool() *WriteTool {
	return &WriteTool{}
}

// Name returns the tool name.
func (t *WriteTool) Name() string {
	return "write_file"
}

// Description returns the tool description.
func (t *WriteTool) Description() string {
	return "Writes content to a specified file. Creates directories if needed. Requires user approval."
}

// Schema returns the JSON schema for the tool parameters.
func (t *WriteTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The relative or absolute path to the file to write.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "The content to write to the file.",
			},
			"overwrite": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to overwrite the file if it exists.",
				"default":     false,
			},
		},
		"required": []string{"path", "content"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute writes the content to the target path.
func (t *WriteTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Path      string `json:"path"`
		Content   string `json:"content"`
		Overwrite bool   `json:"overwrite"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return opError(fmt.Sprintf("Write failed: %v", err)), nil
	}
	if input.Path == "" {
		return opError("Write failed: path is required"), nil
	}

	if info, err := os.Stat(input.Path); err == nil {
		if info.IsDir() {
			return opError(fmt.Sprintf("Write failed: path is a directory: %s", input.Path)), nil
		}
		if !input.Overwrite {
			return opError(fmt.Sprintf("Write failed: file exists, overwrite=false: %s", input.Path)), nil
		}
	}

	if dir := filepath.Dir(input.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return opError(fmt.Sprintf("Write failed: %v", err)), nil
		}
	}
	if err := os.WriteFile(input.Path, []byte(input.Content), 0o644); err != nil {
		return opError(fmt.Sprintf("Write failed: %v", err)), nil
	}

	return agent.Envelope{"success": true, "error": nil}, nil
}

// opError is the shared failure shape for the mutating file tools.
func opError(message string) agent.Envelope {
	return agent.Envelope{"success": false, "error": message}
}
