// Package parse turns a raw input line into ordered command groups.
// A line is whitespace-separated tokens; ";" closes a sequential group,
// "&" closes a concurrent group, and a line consisting of the single
// token "exit" ends the session.
package parse

import (
	"fmt"

	shlex "github.com/anmitsu/go-shlex"
)

const (
	// SequentialDelimiter closes the pending group and makes the shell
	// wait for it before the next group starts.
	SequentialDelimiter = ";"

	// ConcurrentDelimiter closes the pending group and lets it run
	// without the shell waiting for it.
	ConcurrentDelimiter = "&"

	// ExitSentinel ends the session when it is the only token on a line.
	ExitSentinel = "exit"
)

// Tokenize splits a raw input line into whitespace-separated tokens.
// Quoting keeps whitespace inside a single token. The reserved tokens
// are recognized after quote removal, so a quoted ";" still splits.
func Tokenize(line string) ([]string, error) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize input: %w", err)
	}
	return tokens, nil
}
