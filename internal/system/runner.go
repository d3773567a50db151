package system

import (
	"context"
	"os/exec"
	"syscall"
)

// Runner abstracts process execution so controller logic stays
// testable without a desktop session.
type Runner interface {
	// Run executes the command, waits for it, and returns stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// Start launches the command detached from the daemon: launched
	// applications must outlive both the dispatch and the daemon.
	Start(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap in the background so the child never zombies.
	go cmd.Wait()

	return nil
}
