// Package update implements the self-update cycle: a non-blocking
// supervisor that launches the out-of-process updater, and the
// fetch-validate-swap protocol the updater runs.
package update

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync/atomic"
)

// Supervisor launches the updater executable without blocking the
// conversation loop. Once triggered there is no cancellation path; the
// updater either completes the swap-and-restart or fails cleanly.
type Supervisor struct {
	updaterPath string
	inFlight    atomic.Bool
	logger      *slog.Logger
}

// NewSupervisor creates a supervisor for the given updater executable.
func NewSupervisor(updaterPath string, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{updaterPath: updaterPath, logger: logger}
}

// Trigger starts the updater process and returns immediately. A trigger
// while an update is already in flight is a no-op. The update's outcome
// is not observable by the caller.
func (s *Supervisor) Trigger() error {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Info("update already in flight, ignoring trigger")
		return nil
	}

	cmd := exec.Command(s.updaterPath)
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		s.inFlight.Store(false)
		return fmt.Errorf("start updater %s: %w", s.updaterPath, err)
	}

	s.logger.Info("updater launched", "path", s.updaterPath, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		s.inFlight.Store(false)
		if err != nil {
			s.logger.Warn("updater exited with failure", "error", err)
			return
		}
		s.logger.Info("updater exited cleanly")
	}()

	return nil
}
