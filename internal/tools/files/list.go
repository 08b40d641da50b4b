package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

// ListTool lists the entries of a directory, optionally recursively.
// Directory entries carry a trailing path separator so the model can
// tell them apart from files.
type ListTool struct{}

// NewListTool creates a list tool.
func NewListTool() *ListTool {
	return &ListTool{}
}

// Name returns the tool name.
func (t *ListTool) Name() string {
	return "list_directory"
}

// Description returns the tool description.
func (t *ListTool) Description() string {
	return "Lists the files and subdirectories within a specified directory."
}

// Schema returns the JSON schema for the tool parameters.
func (t *ListTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "The relative or absolute path to the directory.",
				"default":     ".",
			},
			"recursive": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to list contents recursively (use with caution).",
				"default":     false,
			},
		},
		"required": []string{},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute lists the directory contents in sorted order.
func (t *ListTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		Path      string `json:"path"`
		Recursive bool   `json:"recursive"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return listError(fmt.Sprintf("List failed: %v", err)), nil
	}
	if input.Path == "" {
		input.Path = "."
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return listError(fmt.Sprintf("List failed: %v", err)), nil
	}
	if !info.IsDir() {
		return listError(fmt.Sprintf("List failed: not a directory: %s", input.Path)), nil
	}

	var entries []string
	if input.Recursive {
		err = filepath.WalkDir(input.Path, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, relErr := filepath.Rel(input.Path, path)
			if relErr != nil {
				return relErr
			}
			if rel == "." {
				return nil
			}
			entries = append(entries, formatEntry(rel, d.IsDir()))
			return nil
		})
		if err != nil {
			return listError(fmt.Sprintf("List failed: %v", err)), nil
		}
	} else {
		dirEntries, err := os.ReadDir(input.Path)
		if err != nil {
			return listError(fmt.Sprintf("List failed: %v", err)), nil
		}
		for _, entry := range dirEntries {
			entries = append(entries, formatEntry(entry.Name(), entry.IsDir()))
		}
	}
	sort.Strings(entries)

	if entries == nil {
		entries = []string{}
	}
	return agent.Envelope{"entries": entries, "error": nil}, nil
}

func formatEntry(name string, isDir bool) string {
	if isDir {
		return name + string(os.PathSeparator)
	}
	return name
}

func listError(message string) agent.Envelope {
	return agent.Envelope{"entries": nil, "error": message}
}
