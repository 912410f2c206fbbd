package errmap

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies high-level error categories for user-facing messages.
type Code string

const (
	CodeCanceled          Code = "canceled"
	CodeTimeout           Code = "timeout"
	CodeSpawnFailure      Code = "spawn_failure"
	CodeToolFailure       Code = "tool_failure"
	CodeDecodeFailure     Code = "decode_failure"
	CodeBusy              Code = "busy"
	CodeExpressionSyntax  Code = "expression_syntax"
	CodeExpressionRuntime Code = "expression_runtime"
	CodeUnexpected        Code = "unexpected"
)

// Error is a small wrapper that carries a code and request context while
// preserving the original cause via Unwrap.
type Error struct {
	Code     Code
	Message  string
	Method   string
	URL      string
	ExitCode int
	Stderr   string
	cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = humanize(e.Code, e.cause)
	}
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, msg)
	}
	if e.URL != "" {
		return fmt.Sprintf("%s: %s", e.URL, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error with the supplied code, message, and underlying
// cause.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithRequest annotates an error with request context when it is (or wraps)
// an *Error.
func WithRequest(method, urlStr string, err error) error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		me.Method = method
		me.URL = urlStr
		return err
	}
	return err
}

func humanize(code Code, cause error) string {
	switch code {
	case CodeCanceled:
		return "request was canceled"
	case CodeTimeout:
		return "request timed out"
	case CodeSpawnFailure:
		if cause != nil {
			return fmt.Sprintf("failed to launch curl: %s", cause.Error())
		}
		return "failed to launch curl"
	case CodeToolFailure:
		if cause != nil {
			return cause.Error()
		}
		return "curl reported an error"
	case CodeDecodeFailure:
		if cause != nil {
			return fmt.Sprintf("could not decode curl output: %s", cause.Error())
		}
		return "could not decode curl output"
	case CodeBusy:
		return "another request is already running"
	case CodeExpressionSyntax:
		if cause != nil {
			return fmt.Sprintf("expression syntax error: %s", cause.Error())
		}
		return "expression syntax error"
	case CodeExpressionRuntime:
		if cause != nil {
			return fmt.Sprintf("expression evaluation error: %s", cause.Error())
		}
		return "expression evaluation error"
	default:
		if cause != nil {
			return cause.Error()
		}
		return "unexpected error"
	}
}

// curlExitMessages maps well-known curl exit codes to descriptive text.
var curlExitMessages = map[int]string{
	1:  "unsupported protocol",
	3:  "malformed URL",
	6:  "could not resolve host",
	7:  "failed to connect to host",
	28: "operation timed out",
	35: "SSL connect error",
	47: "too many redirects",
	51: "SSL certificate problem: the peer certificate could not be verified",
	58: "problem with the local SSL client certificate",
	60: "SSL certificate problem: unable to verify the CA certificate",
	77: "error reading the SSL CA certificate",
	78: "the requested remote resource was not found",
}

// FromExitCode maps a non-zero curl exit to a descriptive *Error. It falls
// back to captured stderr, then to a generic "exited with code N" message.
func FromExitCode(exitCode int, stderr string) *Error {
	msg, known := curlExitMessages[exitCode]
	switch {
	case known:
		msg = fmt.Sprintf("curl: %s (exit code %d)", msg, exitCode)
	case strings.TrimSpace(stderr) != "":
		msg = fmt.Sprintf("curl failed (exit code %d): %s", exitCode, strings.TrimSpace(stderr))
	default:
		msg = fmt.Sprintf("curl exited with code %d", exitCode)
	}
	return &Error{
		Code:     CodeToolFailure,
		Message:  msg,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// Friendly returns a user-friendly, action-oriented message string.
func Friendly(err error) string {
	if err == nil {
		return ""
	}
	var me *Error
	if !errors.As(err, &me) {
		return err.Error()
	}

	ctx := ""
	if me.Method != "" && me.URL != "" {
		ctx = fmt.Sprintf(" (%s %s)", me.Method, me.URL)
	} else if me.URL != "" {
		ctx = fmt.Sprintf(" (%s)", me.URL)
	}

	switch me.Code {
	case CodeTimeout:
		return fmt.Sprintf("Request timed out%s.", ctx)
	case CodeCanceled:
		return "Request was canceled."
	case CodeBusy:
		return "Another request is already running; wait for it to finish or cancel it."
	case CodeSpawnFailure:
		return fmt.Sprintf("Could not launch curl%s. Is it installed and on your PATH?", ctx)
	case CodeDecodeFailure:
		return fmt.Sprintf("curl succeeded but its output could not be decoded%s.", ctx)
	default:
		if s := me.Error(); s != "" {
			return s
		}
		return "Unexpected error."
	}
}
