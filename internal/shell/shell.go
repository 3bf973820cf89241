// Package shell implements the interactive loop for bshell: prompt,
// read, split, dispatch, until the exit sentinel is read.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bshell-sh/bshell/internal/config"
	"github.com/bshell-sh/bshell/internal/executor"
	"github.com/bshell-sh/bshell/internal/parse"
	"github.com/bshell-sh/bshell/internal/styles"
	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

// terminationAck is printed when the exit sentinel is read.
const terminationAck = "Exit called...terminating"

// LineReader supplies one line of input per call. *readline.Instance
// satisfies it in interactive sessions; NewScannerReader covers piped
// input.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Shell drives one session: it owns the session state and runs the
// prompt/read/split/dispatch cycle on a single thread. While a sequential
// group is being waited on, no prompt is shown and no input is read.
type Shell struct {
	reader     LineReader
	dispatcher *executor.Dispatcher
	cfg        *config.Config
	logger     *zap.Logger
	state      *executor.State
	out        io.Writer
	errOut     io.Writer
}

// Options configures a Shell. Out and ErrOut default to stdout/stderr.
type Options struct {
	Reader     LineReader
	Dispatcher *executor.Dispatcher
	Config     *config.Config
	Logger     *zap.Logger
	Out        io.Writer
	ErrOut     io.Writer
}

// New creates a Shell in its initial state (line 1, not terminated).
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Shell{
		reader:     opts.Reader,
		dispatcher: opts.Dispatcher,
		cfg:        cfg,
		logger:     logger,
		state:      executor.NewState(),
		out:        out,
		errOut:     errOut,
	}
}

// State exposes the session state for inspection.
func (s *Shell) State() *executor.State {
	return s.state
}

// Run drives the session until it terminates. Termination is absorbing:
// once the exit sentinel (or end of input) is seen the loop exits and
// never resumes. Read failures are reported and the shell re-prompts;
// no error other than the exit sentinel ends the session.
func (s *Shell) Run() error {
	for !s.state.Terminated {
		s.reader.SetPrompt(fmt.Sprintf(s.cfg.Prompt, s.state.LineNumber))

		line, err := s.reader.Readline()
		switch {
		case errors.Is(err, io.EOF):
			// Input is gone; nothing further can ever arrive.
			s.state.Terminated = true

		case errors.Is(err, readline.ErrInterrupt):
			// Pending line abandoned; fresh prompt.
			continue

		case err != nil:
			fmt.Fprintln(s.errOut, styles.ERROR(fmt.Sprintf("bshell: read input: %v", err)))
			s.logger.Warn("read failed", zap.Error(err))

		default:
			s.RunLine(line)
		}
	}

	s.logger.Info("session terminated", zap.Int("line", s.state.LineNumber))
	return nil
}

// RunLine tokenizes, splits, and dispatches a single input line.
func (s *Shell) RunLine(line string) {
	tokens, err := parse.Tokenize(line)
	if err != nil {
		fmt.Fprintln(s.errOut, styles.ERROR(fmt.Sprintf("bshell: %v", err)))
		s.logger.Warn("tokenize failed", zap.String("line", line), zap.Error(err))
		return
	}

	result := parse.Split(tokens)
	if result.Terminate {
		fmt.Fprintln(s.out, terminationAck)
		s.state.Terminated = true
		return
	}

	s.dispatcher.DispatchLine(s.state, result)
}
