package score

import "errors"

type Kind string

const (
	KindTimeout         Kind = "timeout"
	KindOutputTooLarge  Kind = "output_too_large"
	KindMalformedResult Kind = "malformed_result"
	KindProcessFailure  Kind = "process_failure"
	KindReportedFailure Kind = "reported_failure"
)

// Error is a scoring failure with a machine-readable kind. Msg carries
// whatever diagnostic text the subprocess surfaced.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return "scoring " + string(e.Kind) + ": " + e.Msg
	}
	if e.Err != nil {
		return "scoring " + string(e.Kind) + ": " + e.Err.Error()
	}
	return "scoring " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the scoring error kind, or "" when err is not a
// scoring error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
