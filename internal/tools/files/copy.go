package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// CopyTool copies one file to a destination path, creating destination
// directories as needed.
type CopyTool struct{}

// NewCopyTool creates a copy tool.
func NewCopyTool() *CopyTool {
	return &CopyTool{}
}

// Name returns the tool name.
func (t *CopyTool) Name() string {
	return "copy_file"
}

// Description returns the tool description.
func (t *CopyTool) Description() string {
	return "Copies a source file to a destination path. Creates destination directories if needed. Requires user approval."
}

// Schema returns the JSON schema for the tool parameters.
func (t *CopyTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source_path": map[string]interface{}{
				"type":        "string",
				"description": "The relative or absolute path of the file to copy.",
			},
			"destination_path": map[string]interface{}{
				"type":        "string",
				"description": "The relative or absolute path where the file should be copied.",
			},
			"overwrite": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to overwrite the destination file if it already exists.",
				"default":     false,
			},
		},
		"required": []string{"source_path", "destination_path"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute copies the source file to the destination.
func (t *CopyTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		SourcePath      string `json:"source_path"`
		DestinationPath string `json:"destination_path"`
		Overwrite       bool   `json:"overwrite"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return opError(fmt.Sprintf("Copy failed: %v", err)), nil
	}
	if input.SourcePath == "" || input.DestinationPath == "" {
		return opError("Copy failed: source_path and destination_path are required"), nil
	}

	srcInfo, err := os.Stat(input.SourcePath)
	if err != nil || srcInfo.IsDir() {
		return opError(fmt.Sprintf("Copy failed: source not found or not a file: %s", input.SourcePath)), nil
	}

	if destInfo, err := os.Stat(input.DestinationPath); err == nil {
		if destInfo.IsDir() {
			return opError(fmt.Sprintf("Copy failed: destination is a directory: %s", input.DestinationPath)), nil
		}
		if !destInfo.Mode().IsRegular() {
			return opError(fmt.Sprintf("Copy failed: cannot overwrite non-file destination: %s", input.DestinationPath)), nil
		}
		if !input.Overwrite {
			return opError(fmt.Sprintf("Copy failed: destination exists, overwrite=false: %s", input.DestinationPath)), nil
		}
	}

	if dir := filepath.Dir(input.DestinationPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return opError(fmt.Sprintf("Copy failed: %v", err)), nil
		}
	}
	if err := copyContents(input.SourcePath, input.DestinationPath, srcInfo.Mode()); err != nil {
		return opError(fmt.Sprintf("Copy failed: %v", err)), nil
	}

	return agent.Envelope{"success": true, "error": nil}, nil
}

// copyContents copies file data and preserves the source's permission
// bits and modification time.
func copyContents(source, destination string, mode os.FileMode) error {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	dest, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		return err
	}
	if err := dest.Close(); err != nil {
		return err
	}

	if info, err := os.Stat(source); err == nil {
		_ = os.Chtimes(destination, info.ModTime(), info.ModTime())
	}
	return nil
}
