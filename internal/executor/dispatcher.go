package executor

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bshell-sh/bshell/internal/parse"
	"github.com/bshell-sh/bshell/internal/styles"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DispatchRecord describes one dispatched command group.
type DispatchRecord struct {
	Line    int
	Command string
	Mode    string
	Unit    int64

	// Waited is true for sequential groups whose termination the shell
	// observed; WaitDuration is how long the shell was suspended for it.
	Waited       bool
	WaitDuration time.Duration
}

// Recorder receives a record for every dispatched group.
type Recorder interface {
	Record(rec DispatchRecord) error
}

// Dispatcher spawns each group of a line in order, waiting on sequential
// groups before advancing and letting concurrent groups run untracked.
type Dispatcher struct {
	runtime      Runtime
	synchronizer *Synchronizer
	recorder     Recorder
	logger       *zap.Logger
	errOut       io.Writer
}

// DispatcherOptions configures a Dispatcher. Recorder and ErrOut are
// optional; ErrOut defaults to stderr.
type DispatcherOptions struct {
	Runtime      Runtime
	Synchronizer *Synchronizer
	Recorder     Recorder
	Logger       *zap.Logger
	ErrOut       io.Writer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Dispatcher{
		runtime:      opts.Runtime,
		synchronizer: opts.Synchronizer,
		recorder:     opts.Recorder,
		logger:       logger,
		errOut:       errOut,
	}
}

// DispatchLine processes one line's split result: reports empty-group
// errors, spawns each valid group in order, and waits on sequential
// groups before spawning the next. After a non-empty line the session
// line number is incremented by exactly one.
func (d *Dispatcher) DispatchLine(state *State, result *parse.Result) {
	for _, err := range result.Errors {
		fmt.Fprintln(d.errOut, styles.ERROR(fmt.Sprintf("bshell: %v", err)))
	}

	d.logger.Debug(
		"dispatching line",
		zap.Int("line", state.LineNumber),
		zap.Strings("groups", lo.Map(result.Groups, func(g parse.Group, _ int) string {
			return g.String()
		})),
	)

	for _, group := range result.Groups {
		handle, err := d.runtime.Spawn(group.Argv)
		if err != nil {
			// A failed spawn has no handle; waiting on it would block the
			// shell forever, so the synchronization step is skipped.
			fmt.Fprintln(d.errOut, styles.ERROR(fmt.Sprintf("bshell: %v", err)))
			d.logger.Warn("spawn failed", zap.Strings("argv", group.Argv), zap.Error(err))
			continue
		}

		rec := DispatchRecord{
			Line:    state.LineNumber,
			Command: group.String(),
			Mode:    group.Mode.String(),
			Unit:    int64(handle),
		}

		if group.Mode == parse.Sequential {
			start := time.Now()
			if err := d.synchronizer.WaitFor(handle); err != nil {
				fmt.Fprintln(d.errOut, styles.ERROR(fmt.Sprintf("bshell: %v", err)))
				d.logger.Error("wait failed", zap.Int64("unit", int64(handle)), zap.Error(err))
			} else {
				rec.Waited = true
				rec.WaitDuration = time.Since(start)
			}
		}

		d.record(rec)
	}

	if len(result.Groups) > 0 || len(result.Errors) > 0 {
		state.LineNumber++
	}
}

func (d *Dispatcher) record(rec DispatchRecord) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(rec); err != nil {
		d.logger.Warn("failed to record dispatch", zap.Error(err))
	}
}
