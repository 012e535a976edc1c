package privilege

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Escalator commits content to a target the current process cannot write
type Escalator interface {
	Name() string
	Escalate(ctx context.Context, target string, content []byte) error
}

// Launcher runs exe with args under elevated rights, waits for it and
// returns its exit code. An error means the process never ran.
type Launcher func(ctx context.Context, exe string, args []string) (int, error)

// Detect selects the escalator for target once, based on the current
// process privileges and the elevation tools available on this OS
func Detect(target string) Escalator {
	if canWriteDirect(target) {
		return DirectWrite{}
	}

	exe, err := os.Executable()
	if err != nil {
		return Unsupported{Reason: fmt.Sprintf("cannot locate own executable: %v", err)}
	}

	launch, via, ok := elevationLauncher()
	if !ok {
		return Unsupported{Reason: "no elevation tool available"}
	}
	return &HelperMove{Exe: exe, Via: via, Launch: launch}
}

// DirectWrite is selected when the process already holds write rights,
// so there is nothing to escalate to
type DirectWrite struct{}

func (DirectWrite) Name() string { return "direct" }

func (DirectWrite) Escalate(context.Context, string, []byte) error {
	return errors.New("write refused although the process is privileged")
}

// Unsupported is selected when no elevation path exists
type Unsupported struct {
	Reason string
}

func (Unsupported) Name() string { return "unsupported" }

func (u Unsupported) Escalate(context.Context, string, []byte) error {
	if u.Reason == "" {
		return errors.New("privilege elevation is not supported")
	}
	return fmt.Errorf("privilege elevation is not supported: %s", u.Reason)
}

// HelperMove stages content in a temporary file and has an elevated copy
// of this executable move it onto the target
type HelperMove struct {
	Exe    string
	Via    string
	Launch Launcher
}

func (h *HelperMove) Name() string { return "helper-move (" + h.Via + ")" }

func (h *HelperMove) Escalate(ctx context.Context, target string, content []byte) error {
	staged, err := stage(content)
	if err != nil {
		return err
	}
	// gone already after a successful move
	defer os.Remove(staged)

	code, err := h.Launch(ctx, h.Exe, HelperArgs(ActionMove, staged, target))
	if err != nil {
		return &HelperInvocationError{Via: h.Via, Err: err}
	}
	if code != HelperSuccessCode {
		return &HelperExitError{Code: code}
	}
	return nil
}

// stage writes content to a temporary file readable by everyone, since it
// becomes the hosts file once moved
func stage(content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "cfhosts-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	path := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to chmod staging file: %w", err)
	}
	return path, nil
}
