// Package agent contains the orchestration core: the conversation
// session, the tool registry and dispatch state machine, the approval
// gate, and the provider abstraction. No vendor SDK types leak out of
// the provider boundary into this package.
package agent

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Conversation roles. These match the wire-level chat roles used by the
// providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in the conversation history. ToolCalls is set on
// assistant messages that request tool execution; ToolCallID and Name
// are set on tool messages carrying a result envelope back.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is one model-issued request to run a tool. Input is the raw
// argument payload exactly as the model produced it.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolSchema is the provider-facing description of one tool: its name,
// natural-language description, and JSON Schema for its parameters.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Session is an append-only conversation history. Messages are never
// modified or removed once appended. Safe for concurrent use, though
// the driver is the only writer in practice.
type Session struct {
	id string

	mu       sync.Mutex
	messages []Message
}

// NewSession creates a session seeded with a system message.
func NewSession(system string) *Session {
	s := &Session{id: uuid.NewString()}
	if system != "" {
		s.messages = append(s.messages, Message{Role: RoleSystem, Content: system})
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds a message to the end of the history.
func (s *Session) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the history in order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the history.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Last returns the most recent message and false when the history is
// empty.
func (s *Session) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
