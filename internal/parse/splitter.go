package parse

import (
	"fmt"
	"strings"
)

// Mode tags a command group with its execution mode.
type Mode int

const (
	// Sequential groups are waited on before the next group is spawned.
	Sequential Mode = iota
	// Concurrent groups run untracked once spawned.
	Concurrent
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Concurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Group is one command (program name plus arguments) together with its
// execution mode. A group always has at least one token.
type Group struct {
	Argv []string
	Mode Mode
}

func (g Group) String() string {
	return strings.Join(g.Argv, " ")
}

// InvalidGroupError reports an empty command group, produced by a leading
// delimiter or two adjacent delimiters.
type InvalidGroupError struct {
	// Position is the token index of the delimiter that closed the empty group.
	Position  int
	Delimiter string
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("empty command before %q at token %d", e.Delimiter, e.Position)
}

// Result is the outcome of splitting one line's tokens.
type Result struct {
	// Groups are the valid command groups, in input order.
	Groups []Group
	// Errors holds one InvalidGroupError per empty segment. Groups around
	// an empty segment are unaffected.
	Errors []error
	// Terminate is set when the line is exactly the exit sentinel. No
	// groups are produced in that case.
	Terminate bool
}

// Split partitions a token sequence into ordered command groups.
// Tokens accumulate into a pending group; the concurrent delimiter closes
// it as concurrent, the sequential delimiter as sequential, and trailing
// tokens with no delimiter close as sequential.
func Split(tokens []string) *Result {
	result := &Result{}

	if len(tokens) == 1 && tokens[0] == ExitSentinel {
		result.Terminate = true
		return result
	}

	start := 0
	for i, token := range tokens {
		var mode Mode
		switch token {
		case ConcurrentDelimiter:
			mode = Concurrent
		case SequentialDelimiter:
			mode = Sequential
		default:
			continue
		}

		if i == start {
			result.Errors = append(result.Errors, &InvalidGroupError{
				Position:  i,
				Delimiter: token,
			})
		} else {
			result.Groups = append(result.Groups, Group{
				Argv: tokens[start:i],
				Mode: mode,
			})
		}
		start = i + 1
	}

	// No delimiter after the last command; sequential is the default.
	if start < len(tokens) {
		result.Groups = append(result.Groups, Group{
			Argv: tokens[start:],
			Mode: Sequential,
		})
	}

	return result
}
