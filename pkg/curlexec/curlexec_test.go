package curlexec_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"curldeck/pkg/curlexec"
	"curldeck/pkg/curlout"
	"curldeck/pkg/errmap"
	"curldeck/pkg/logger/mocklogger"
	"curldeck/pkg/model/mauth"
	"curldeck/pkg/model/mrequest"
	"curldeck/pkg/translate/tcurlcmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = tcurlcmd.Options{FollowRedirects: true, VerifySSL: true, TimeoutMs: 30000}

func testRequest() mrequest.Request {
	return mrequest.Request{
		Method: "GET",
		Url:    "https://example.com/ping",
		Auth:   mauth.None(),
	}
}

// fakeCurl writes an executable shell script that stands in for the curl
// binary and returns its path.
func fakeCurl(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakecurl")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

const okScript = `printf 'HTTP/1.1 200 OK\r\n'
printf 'Content-Type: application/json\r\n'
printf '\r\n'
printf '{"ok":true}\n'
printf '%s\n' '` + curlout.SentinelMarker + `' 200 0.042 11
`

func TestExecuteSuccess(t *testing.T) {
	logger, handler := mocklogger.New()
	executor := curlexec.NewWithBinary(fakeCurl(t, okScript), logger)

	resp, err := executor.Execute(context.Background(), testRequest(), testOpts)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, int64(11), resp.SizeBytes)
	assert.Equal(t, curlexec.StatusCompleted, executor.Status())
	assert.Contains(t, handler.Messages(), "executing curl")
	assert.Contains(t, handler.Messages(), "curl completed")
}

func TestExecuteExitCodeMapping(t *testing.T) {
	executor := curlexec.NewWithBinary(fakeCurl(t, "exit 6\n"), mocklogger.NewLogger())

	_, err := executor.Execute(context.Background(), testRequest(), testOpts)
	require.Error(t, err)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeToolFailure, me.Code)
	assert.Equal(t, 6, me.ExitCode)
	assert.Contains(t, err.Error(), "could not resolve host")
	assert.Equal(t, curlexec.StatusFailed, executor.Status())
}

func TestExecuteSpawnFailure(t *testing.T) {
	executor := curlexec.NewWithBinary(filepath.Join(t.TempDir(), "missing"), mocklogger.NewLogger())

	_, err := executor.Execute(context.Background(), testRequest(), testOpts)
	require.Error(t, err)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeSpawnFailure, me.Code)
	assert.Equal(t, curlexec.StatusFailed, executor.Status())
}

func TestExecuteDecodeFailure(t *testing.T) {
	executor := curlexec.NewWithBinary(fakeCurl(t, "printf 'not http at all'\n"), mocklogger.NewLogger())

	_, err := executor.Execute(context.Background(), testRequest(), testOpts)
	require.Error(t, err)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeDecodeFailure, me.Code)
}

func TestExecuteBusy(t *testing.T) {
	executor := curlexec.NewWithBinary(fakeCurl(t, "sleep 5\n"), mocklogger.NewLogger())

	errCh := make(chan error, 1)
	go func() {
		_, err := executor.Execute(context.Background(), testRequest(), testOpts)
		errCh <- err
	}()
	waitForStatus(t, executor, curlexec.StatusRunning)

	_, err := executor.Execute(context.Background(), testRequest(), testOpts)
	require.Error(t, err)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeBusy, me.Code)

	executor.Cancel()
	require.Error(t, <-errCh)
}

func TestCancelSettlesAsCancelled(t *testing.T) {
	executor := curlexec.NewWithBinary(fakeCurl(t, "sleep 5\n"), mocklogger.NewLogger())

	errCh := make(chan error, 1)
	go func() {
		_, err := executor.Execute(context.Background(), testRequest(), testOpts)
		errCh <- err
	}()
	waitForStatus(t, executor, curlexec.StatusRunning)

	executor.Cancel()

	err := <-errCh
	require.Error(t, err)
	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeCanceled, me.Code)
	assert.Equal(t, curlexec.StatusCancelled, executor.Status())
}

func TestContextCancellation(t *testing.T) {
	executor := curlexec.NewWithBinary(fakeCurl(t, "sleep 5\n"), mocklogger.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := executor.Execute(ctx, testRequest(), testOpts)
		errCh <- err
	}()
	waitForStatus(t, executor, curlexec.StatusRunning)

	cancel()

	err := <-errCh
	require.Error(t, err)
	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeCanceled, me.Code)
	assert.Equal(t, curlexec.StatusCancelled, executor.Status())
}

func TestTimeoutKillsProcess(t *testing.T) {
	executor := curlexec.NewWithBinary(fakeCurl(t, "sleep 30\n"), mocklogger.NewLogger())

	opts := testOpts
	opts.TimeoutMs = 100

	start := time.Now()
	_, err := executor.Execute(context.Background(), testRequest(), opts)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeTimeout, me.Code)
	assert.Equal(t, curlexec.StatusTimedOut, executor.Status())
}

func TestCancelUnblocksDespiteForkedChild(t *testing.T) {
	// The grandchild inherits the stdout pipe and outlives the kill; Wait
	// must still return once the direct child is gone.
	executor := curlexec.NewWithBinary(fakeCurl(t, "sleep 30 &\nwait\n"), mocklogger.NewLogger())

	errCh := make(chan error, 1)
	start := time.Now()
	go func() {
		_, err := executor.Execute(context.Background(), testRequest(), testOpts)
		errCh <- err
	}()
	waitForStatus(t, executor, curlexec.StatusRunning)

	executor.Cancel()

	err := <-errCh
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	var me *errmap.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, errmap.CodeCanceled, me.Code)
	assert.Equal(t, curlexec.StatusCancelled, executor.Status())
}

func TestCancelWithNothingRunning(t *testing.T) {
	executor := curlexec.New(mocklogger.NewLogger())
	executor.Cancel()
	assert.Equal(t, curlexec.StatusIdle, executor.Status())
}

func TestCheckAvailable(t *testing.T) {
	ctx := context.Background()

	available := curlexec.NewWithBinary(fakeCurl(t, "exit 0\n"), mocklogger.NewLogger())
	assert.True(t, available.CheckAvailable(ctx))

	missing := curlexec.NewWithBinary(filepath.Join(t.TempDir(), "missing"), mocklogger.NewLogger())
	assert.False(t, missing.CheckAvailable(ctx))
}

func waitForStatus(t *testing.T, executor *curlexec.Executor, want curlexec.Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if executor.Status() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("executor never reached status %v", want)
}
