package dispatch

import "errors"

// Signal is the result of invoking an event channel. It is the sole
// flow-control primitive for cross-cutting concerns: the dispatcher
// inspects it after every channel invocation to decide whether the
// request proceeds to the next step of the pipeline.
type Signal int

const (
	// Continue means the channel completed and the request proceeds
	// to the next dispatch step.
	Continue Signal = iota

	// StopSilently means a subscriber requested that no further
	// dispatch steps run for this request. The underlying connection
	// is left alone; the response is closed normally by the configured
	// auto-close policy (or may already have been closed by the
	// subscriber itself).
	StopSilently

	// Abort means a subscriber requested that the underlying
	// response/connection be forcibly terminated and that no further
	// dispatch steps run for this request.
	Abort
)

// String returns the signal name for logging.
func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case StopSilently:
		return "stop"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// ErrBreakChannel stops invocation of further subscribers in the current
// channel only. The channel reports Continue to the dispatcher; the
// enclosing request is unaffected.
var ErrBreakChannel = errors.New("dispatch: break out of event channel")

// ErrStopRequest stops invocation of further subscribers in the current
// channel and ceases all further dispatch steps for the request, without
// forcibly terminating the underlying connection.
var ErrStopRequest = errors.New("dispatch: stop processing request")

// ErrAbortRequest stops invocation of further subscribers, forcibly
// aborts the underlying response/connection, and ceases all further
// dispatch steps for the request.
var ErrAbortRequest = errors.New("dispatch: abort request")
