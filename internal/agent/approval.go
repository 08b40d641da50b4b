package agent

// Approver decides whether a dangerous tool call may run. Implementations
// block until a decision is available. The dispatcher treats anything but an
// explicit approval as a denial, so implementations should fail closed on
// ambiguous, empty, or interrupted input.
type Approver interface {
	// Approve presents the action label and a human-readable detail string
	// and returns true only on an explicit affirmative.
	Approve(action, detail string) bool
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(action, detail string) bool

// Approve implements Approver.
func (f ApproverFunc) Approve(action, detail string) bool {
	return f(action, detail)
}

// DenyAll refuses every action. It is the dispatcher default when no
// operator is attached.
var DenyAll = ApproverFunc(func(string, string) bool { return false })

// Prompter relays a model-issued question to the human operator and returns
// the free-text answer. An interrupted or closed input stream is reported as
// an error, not an answer.
type Prompter interface {
	Ask(question string) (string, error)
}
