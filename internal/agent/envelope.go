package agent

import "encoding/json"

// ExitCode classifies tool failures for the model. Real process exit
// codes are non-negative, so the dispatcher's own codes are negative and
// cannot collide with them.
type ExitCode int

const (
	ExitTimeout      ExitCode = -1
	ExitNotFound     ExitCode = -2
	ExitExecFailed   ExitCode = -3
	ExitDenied       ExitCode = -4
	ExitBadArguments ExitCode = -5
	ExitUnknownTool  ExitCode = -6
	ExitToolPanic    ExitCode = -7
)

// Envelope is the JSON object recorded as a tool result. Tools shape
// their own success envelopes; the dispatcher produces the failure
// shapes.
type Envelope map[string]any

// ErrorEnvelope builds the standard dispatcher failure envelope.
func ErrorEnvelope(message string, code ExitCode) Envelope {
	return Envelope{
		"error":     message,
		"exit_code": int(code),
	}
}

// HasError reports whether the envelope carries a non-empty error field.
func (e Envelope) HasError() bool {
	v, ok := e["error"]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return s != ""
	}
	return true
}

// Encode renders the envelope as compact JSON for the history. Encode
// never fails: an unencodable envelope degrades to a fixed error object
// so the conversation can continue.
func (e Envelope) Encode() string {
	data, err := json.Marshal(e)
	if err != nil {
		return `{"error":"tool result could not be encoded"}`
	}
	return string(data)
}

// DecodeEnvelope parses an encoded envelope back into a map.
func DecodeEnvelope(content string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return nil, err
	}
	return env, nil
}
