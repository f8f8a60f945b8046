package dispatch

// Context wraps one inbound request/response exchange for the duration
// of its dispatch. It is created once per accepted exchange and owned by
// exactly one worker for its entire lifetime; it must not be retained
// after the response is closed or abandoned.
type Context struct {
	// Request is the read side of the exchange.
	Request Request

	// Response is the write side of the exchange.
	Response Response

	userData any
	lastErr  error
	matched  bool
	aborted  bool
}

// SetUserData stores an opaque caller-owned value on the context. The
// value survives across all event invocations for this request.
func (c *Context) SetUserData(v any) {
	c.userData = v
}

// UserData returns the value stored with SetUserData, or nil.
func (c *Context) UserData() any {
	return c.userData
}

// LastError returns the error that reached the request-level exception
// boundary. It is only set while the Exception channel runs.
func (c *Context) LastError() error {
	return c.lastErr
}
