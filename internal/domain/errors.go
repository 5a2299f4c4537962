package domain

import "errors"

// Inspection error taxonomy. Each of these is local to one check result: a
// failed inspection becomes a failed check, never an aborted run. The only
// propagate-and-abort condition a runner knows is ErrNoTargets.
var (
	// ErrTargetNotFound: the container, image or file does not exist.
	ErrTargetNotFound = errors.New("target not found")
	// ErrInspectionFailed: the runtime query errored (daemon unreachable,
	// malformed response). Never retried.
	ErrInspectionFailed = errors.New("inspection failed")
	// ErrParseError: file content did not match the narrow patterns expected.
	ErrParseError = errors.New("parse error")
	// ErrTransportFailure: an HTTP request could not complete at all,
	// including timeouts. Distinct from a received non-2xx status.
	ErrTransportFailure = errors.New("transport failure")
	// ErrToolUnavailable: the external scanner binary is missing.
	ErrToolUnavailable = errors.New("scanner unavailable")
	// ErrNoTargets: a category resolved zero targets. Reported as a hard
	// failure, never as a vacuous score.
	ErrNoTargets = errors.New("no targets resolved")
)

// FailureReason maps an inspection error to the fixed reason string carried
// by the failed check result.
func FailureReason(err error, resource string) string {
	switch {
	case errors.Is(err, ErrTargetNotFound):
		return resource + " not found"
	case errors.Is(err, ErrParseError):
		return "Parse error"
	default:
		return "Inspection failed"
	}
}
