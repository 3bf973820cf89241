package executor

import (
	"fmt"
	"time"

	"github.com/bshell-sh/bshell/internal/config"
	"go.uber.org/zap"
)

// Synchronizer blocks the shell thread until one specific unit has
// terminated, on top of a join primitive that only reports "some unit
// finished".
//
// Under the discard policy, a completion reported for any other unit is
// dropped on the floor and the synchronizer retries after a fixed pause.
// A background unit that finishes during such a wait is lost to the shell
// permanently: no later wait can ever observe it. The registry policy
// instead caches unmatched completions in a wait-set consulted before
// blocking again, so nothing is lost.
type Synchronizer struct {
	runtime       Runtime
	policy        config.JoinPolicy
	retryInterval time.Duration
	logger        *zap.Logger

	// pending holds completions consumed while waiting for another unit
	// under the registry policy. Only the shell thread touches it.
	pending map[Handle]struct{}
}

// NewSynchronizer creates a synchronizer over the given runtime.
func NewSynchronizer(runtime Runtime, policy config.JoinPolicy, retryInterval time.Duration, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		runtime:       runtime,
		policy:        policy,
		retryInterval: retryInterval,
		logger:        logger,
		pending:       make(map[Handle]struct{}),
	}
}

// WaitFor blocks until the target unit has terminated.
func (s *Synchronizer) WaitFor(target Handle) error {
	if s.policy == config.JoinPolicyRegistry {
		if _, ok := s.pending[target]; ok {
			delete(s.pending, target)
			return nil
		}
	}

	for {
		handle, err := s.runtime.JoinAny()
		if err != nil {
			return fmt.Errorf("join failed while waiting for unit %d: %w", target, err)
		}

		if handle == target {
			return nil
		}

		if s.policy == config.JoinPolicyRegistry {
			s.pending[handle] = struct{}{}
			continue
		}

		s.logger.Debug(
			"discarding completion for unrelated unit",
			zap.Int64("finished", int64(handle)),
			zap.Int64("target", int64(target)),
		)
		s.runtime.Sleep(s.retryInterval)
	}
}
