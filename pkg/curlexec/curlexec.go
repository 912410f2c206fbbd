// Package curlexec owns the lifecycle of one external curl invocation:
// argument composition, spawning, timeout, cancellation, and decoding.
package curlexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"curldeck/pkg/curlout"
	"curldeck/pkg/errmap"
	"curldeck/pkg/model/mrequest"
	"curldeck/pkg/model/mresponse"
	"curldeck/pkg/translate/tcurlcmd"
)

const DefaultBinary = "curl"

// killSafetyBuffer is added on top of the request timeout before the process
// is killed; curl's own --max-time is expected to fire first.
const killSafetyBuffer = 2 * time.Second

// instrumentationArgs make curl print headers inline, stay quiet on progress,
// still report errors, and append the sentinel-delimited info lines.
var instrumentationArgs = []string{
	"-i", "-s", "-S",
	"-w", "\n" + curlout.SentinelMarker + "\n%{http_code}\n%{time_total}\n%{size_download}",
}

type Status int8

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusTimedOut
	StatusCancelled
)

// Executor runs at most one curl process at a time. Overlapping Execute
// calls are rejected rather than silently replacing the tracked process.
type Executor struct {
	binary string
	logger *slog.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	status    Status
	cancelled bool
	timedOut  bool
}

func New(logger *slog.Logger) *Executor {
	return NewWithBinary(DefaultBinary, logger)
}

func NewWithBinary(binary string, logger *slog.Logger) *Executor {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{binary: binary, logger: logger, status: StatusIdle}
}

// Status reports the executor's current state: Running while a process is in
// flight, otherwise the terminal state of the most recent run.
func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Execute runs the request through curl and decodes the result. It blocks
// until the process exits, the timeout fires, the context is done, or
// Cancel is called; exactly one of those settles the call.
func (e *Executor) Execute(ctx context.Context, req mrequest.Request, opts tcurlcmd.Options) (*mresponse.Response, error) {
	args := append(tcurlcmd.BuildArgs(req, opts), instrumentationArgs...)
	commandText := tcurlcmd.BuildCommand(req, opts)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// A child of the spawned binary can inherit the output pipes and hold
	// them open past the kill. WaitDelay bounds how long Wait blocks on
	// those pipes once the tracked process itself has exited.
	cmd.WaitDelay = killSafetyBuffer

	e.mu.Lock()
	if e.status == StatusRunning {
		e.mu.Unlock()
		return nil, errmap.New(errmap.CodeBusy, "", nil)
	}
	e.cmd = cmd
	e.status = StatusRunning
	e.cancelled = false
	e.timedOut = false
	e.mu.Unlock()

	e.logger.Debug("executing curl",
		slog.String("method", req.Method),
		slog.String("url", req.Url),
		slog.Int64("timeout_ms", opts.TimeoutMs))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		e.settle(StatusFailed)
		return nil, errmap.WithRequest(req.Method, req.Url,
			errmap.New(errmap.CodeSpawnFailure, "", err))
	}

	done := make(chan struct{})
	defer close(done)

	killTimer := time.AfterFunc(time.Duration(opts.TimeoutMs)*time.Millisecond+killSafetyBuffer, func() {
		e.killCurrent(cmd, true)
	})
	defer killTimer.Stop()

	go func() {
		select {
		case <-ctx.Done():
			e.killCurrent(cmd, false)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	// ErrWaitDelay means the process exited cleanly and only a lingering
	// pipe holder was cut off; the captured output is still usable.
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		waitErr = nil
	}

	e.mu.Lock()
	cancelled := e.cancelled || ctx.Err() != nil
	timedOut := e.timedOut
	e.mu.Unlock()

	switch {
	case cancelled:
		e.settle(StatusCancelled)
		return nil, errmap.WithRequest(req.Method, req.Url,
			errmap.New(errmap.CodeCanceled, "", ctx.Err()))
	case timedOut:
		e.settle(StatusTimedOut)
		return nil, errmap.WithRequest(req.Method, req.Url,
			errmap.New(errmap.CodeTimeout, "", nil))
	}

	if waitErr != nil {
		e.settle(StatusFailed)
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			mapped := errmap.FromExitCode(exitErr.ExitCode(), stderr.String())
			e.logger.Warn("curl failed",
				slog.Int("exit_code", exitErr.ExitCode()),
				slog.String("url", req.Url))
			return nil, errmap.WithRequest(req.Method, req.Url, mapped)
		}
		return nil, errmap.WithRequest(req.Method, req.Url,
			errmap.New(errmap.CodeUnexpected, "", waitErr))
	}

	resp := curlout.Decode(stdout.String(), float64(elapsed.Milliseconds()), commandText)
	if resp.Status == 0 {
		e.settle(StatusFailed)
		return nil, errmap.WithRequest(req.Method, req.Url,
			errmap.New(errmap.CodeDecodeFailure, "curl output carried no status line or info block", nil))
	}

	e.settle(StatusCompleted)
	e.logger.Debug("curl completed",
		slog.Int("status", resp.Status),
		slog.Int64("size_bytes", resp.SizeBytes),
		slog.Float64("time_ms", resp.TimeMs))
	return &resp, nil
}

// Cancel signals the running process to terminate; the pending Execute call
// settles as cancelled. Calling Cancel with nothing running is a no-op.
func (e *Executor) Cancel() {
	e.mu.Lock()
	cmd := e.cmd
	running := e.status == StatusRunning
	if running {
		e.cancelled = true
	}
	e.mu.Unlock()

	if running && cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// CheckAvailable reports whether the curl binary can be spawned at all.
func (e *Executor) CheckAvailable(ctx context.Context) bool {
	return exec.CommandContext(ctx, e.binary, "--version").Run() == nil
}

// killCurrent kills cmd if it is still the tracked in-flight process.
// Killing after natural completion is a no-op: the flag is only set when the
// signal was actually delivered.
func (e *Executor) killCurrent(cmd *exec.Cmd, isTimeout bool) {
	e.mu.Lock()
	current := e.cmd == cmd && e.status == StatusRunning
	e.mu.Unlock()
	if !current || cmd.Process == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		return
	}
	e.mu.Lock()
	if isTimeout {
		e.timedOut = true
	} else {
		e.cancelled = true
	}
	e.mu.Unlock()
}

func (e *Executor) settle(status Status) {
	e.mu.Lock()
	e.status = status
	e.cmd = nil
	e.mu.Unlock()
}
