// Package executor provides command execution for bshell: the spawn/join
// runtime primitives, the per-line dispatcher, and the synchronizer that
// turns the non-selective join primitive into a wait for one specific unit.
package executor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handle identifies a spawned execution unit. Handles are unique for the
// lifetime of the runtime that issued them.
type Handle int64

// ErrNoChildren is returned by JoinAny when no spawned unit is
// outstanding, instead of blocking forever.
var ErrNoChildren = errors.New("no outstanding execution units")

// Runtime is the process-execution primitive the shell is built on.
// JoinAny is deliberately non-selective: it reports whichever unit
// finishes next, without letting the caller choose which one.
type Runtime interface {
	Spawn(argv []string) (Handle, error)
	JoinAny() (Handle, error)
	Sleep(d time.Duration)
}

// LocalRuntime runs execution units as operating system processes.
// Each spawned process gets a goroutine that waits for it and publishes
// its handle on a shared completion channel; JoinAny receives from that
// channel. Completions queue up until received, but once received they
// belong to the caller.
type LocalRuntime struct {
	logger *zap.Logger

	mu          sync.Mutex
	nextHandle  Handle
	outstanding int

	done chan Handle
}

// NewLocalRuntime creates a runtime that spawns real processes inheriting
// the shell's stdio.
func NewLocalRuntime(logger *zap.Logger) *LocalRuntime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalRuntime{
		logger: logger,
		done:   make(chan Handle),
	}
}

// Spawn starts argv[0] with the remaining tokens as arguments and returns
// a handle for the new unit without waiting for it.
func (r *LocalRuntime) Spawn(argv []string) (Handle, error) {
	if len(argv) == 0 {
		return 0, errors.New("cannot spawn an empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	r.mu.Lock()
	r.nextHandle++
	handle := r.nextHandle
	r.outstanding++
	r.mu.Unlock()

	r.logger.Debug(
		"spawned execution unit",
		zap.Int64("unit", int64(handle)),
		zap.Strings("argv", argv),
	)

	go func() {
		err := cmd.Wait()
		if err != nil {
			r.logger.Debug(
				"execution unit finished with error",
				zap.Int64("unit", int64(handle)),
				zap.Error(err),
			)
		}
		r.done <- handle
	}()

	return handle, nil
}

// JoinAny blocks until some previously spawned unit terminates and
// returns its handle. With nothing outstanding it returns ErrNoChildren.
func (r *LocalRuntime) JoinAny() (Handle, error) {
	r.mu.Lock()
	outstanding := r.outstanding
	r.mu.Unlock()

	if outstanding == 0 {
		return 0, ErrNoChildren
	}

	handle := <-r.done

	r.mu.Lock()
	r.outstanding--
	r.mu.Unlock()

	return handle, nil
}

// Sleep pauses the calling goroutine.
func (r *LocalRuntime) Sleep(d time.Duration) {
	time.Sleep(d)
}
