package executor

// State is the per-session shell state, created when the shell starts and
// mutated only by the shell loop and the dispatcher.
type State struct {
	// LineNumber is shown in the prompt and incremented by exactly one
	// after each non-empty line, regardless of how many groups it held.
	LineNumber int

	// Terminated is set when the exit sentinel is read; the loop exits on
	// the next check and never resumes.
	Terminated bool
}

// NewState returns the initial session state.
func NewState() *State {
	return &State{
		LineNumber: 1,
	}
}
