package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/logger"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/safety"
)

// ErrNotValidated is returned when Execute is called with a failing safety
// report. This is a programming-contract violation: the pipeline's own call
// order must make it unreachable.
var ErrNotValidated = errors.New("executor: script has not passed safety validation")

// ErrRunInFlight is returned when a second remediation is requested while one
// is still executing.
var ErrRunInFlight = errors.New("executor: a remediation run is already in flight")

// Result captures one confirmed execution. Immutable after creation.
type Result struct {
	RunID           string
	ExitCode        int
	Stdout          string
	Stderr          string
	StartedAt       time.Time
	FinishedAt      time.Time
	RestorePointID  string // empty when restore-point creation failed
	RestorePointErr string // populated when restore-point creation failed
}

// runProcessFunc launches the script file and returns captured output.
// Injectable so tests never spawn a shell.
type runProcessFunc func(ctx context.Context, scriptPath string) (stdout, stderr string, exitCode int, err error)

// Controller runs a validated remediation script exactly once per
// confirmation. At most one run may be in flight per process.
type Controller struct {
	ScriptDir string
	Timeout   time.Duration

	run     runProcessFunc
	restore func(ctx context.Context, description string) (string, error)

	mu     sync.Mutex
	active bool
}

func NewController(scriptDir string) *Controller {
	c := &Controller{
		ScriptDir: scriptDir,
		Timeout:   5 * time.Minute,
	}
	c.run = c.runPowerShellFile
	c.restore = createRestorePoint
	return c
}

// Execute runs the sanitized script after creating a best-effort restore
// point. Restore-point failure is recorded in the result but does not block
// execution. Failed remediations are never retried
// automatically: a silent retry of system-mutating commands risks compounding
// side effects.
func (c *Controller) Execute(ctx context.Context, script string, report safety.SafetyReport) (*Result, error) {
	if !report.Passed {
		return nil, ErrNotValidated
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil, ErrRunInFlight
	}
	c.active = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
	}()

	runID := uuid.NewString()
	result := &Result{RunID: runID}

	restoreID, err := c.restore(ctx, "SuperDiagnostic Auto-Backup "+runID)
	if err != nil {
		logger.Warn("Restore point creation failed, continuing without one: %v", err)
		result.RestorePointErr = err.Error()
	} else {
		result.RestorePointID = restoreID
	}

	scriptPath, err := c.writeScript(runID, script)
	if err != nil {
		return nil, fmt.Errorf("writing remediation script: %w", err)
	}
	defer os.Remove(scriptPath)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	logger.Info("Executing remediation script %s", scriptPath)
	result.StartedAt = time.Now()

	stdout, stderr, exitCode, runErr := c.run(ctx, scriptPath)
	result.FinishedAt = time.Now()
	result.Stdout = stdout
	result.Stderr = stderr
	result.ExitCode = exitCode

	if runErr != nil {
		// Launch-level failure (shell missing, timeout). The result record
		// still carries whatever output was captured.
		logger.Error("Remediation run failed: %v", runErr)
		return result, fmt.Errorf("remediation run: %w", runErr)
	}

	logger.Info("Remediation finished with exit code %d", exitCode)
	return result, nil
}

func (c *Controller) writeScript(runID, script string) (string, error) {
	if err := os.MkdirAll(c.ScriptDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(c.ScriptDir, fmt.Sprintf("remediation_%s.ps1", runID))
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// runPowerShellFile is the default process launcher: one fresh foreground
// child process, stdout/stderr captured.
func (c *Controller) runPowerShellFile(ctx context.Context, scriptPath string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, "powershell",
		"-ExecutionPolicy", "Bypass",
		"-NoProfile",
		"-NonInteractive",
		"-File", scriptPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return stdout.String(), stderr.String(), -1, fmt.Errorf("script timed out after %v", c.Timeout)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Nonzero exit is an execution outcome, not a launch failure.
			exitCode = exitErr.ExitCode()
			err = nil
		} else {
			return stdout.String(), stderr.String(), -1, err
		}
	}

	return stdout.String(), stderr.String(), exitCode, nil
}

// createRestorePoint asks Windows for a MODIFY_SETTINGS checkpoint and
// returns its description on success.
func createRestorePoint(ctx context.Context, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	psCmd := fmt.Sprintf(
		`try { Checkpoint-Computer -Description "%s" -RestorePointType "MODIFY_SETTINGS" -ErrorAction Stop; Write-Output "SUCCESS" } catch { Write-Output "FAILED: $_"; exit 1 }`,
		description,
	)

	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", psCmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())

	if err != nil || !strings.Contains(out, "SUCCESS") {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = out
		}
		if msg == "" {
			msg = "unknown error"
		}
		return "", fmt.Errorf("checkpoint-computer: %s", msg)
	}

	return description, nil
}
