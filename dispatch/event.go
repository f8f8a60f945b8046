package dispatch

import "errors"

// Subscriber is a callback attached to an event channel. It receives the
// request context of the exchange being dispatched and reports how the
// channel should proceed through its return value:
//
//   - nil: continue with the next subscriber.
//   - ErrBreakChannel: skip the remaining subscribers of this channel.
//   - ErrStopRequest: skip the remaining subscribers and cease all
//     further dispatch steps for this request.
//   - ErrAbortRequest: same as ErrStopRequest, but the underlying
//     response/connection is forcibly aborted.
//   - any other error: propagates to the dispatcher's request-level
//     exception boundary; it is never swallowed by the channel.
//
// The Exception channel and accept-loop failures invoke subscribers with
// a nil context; subscribers attached there must tolerate it.
type Subscriber func(ctx *Context) error

// SubscriptionID identifies a subscriber within one event channel so it
// can be removed later.
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	fn Subscriber
}

// EventChannel is an ordered, optional multi-subscriber hook point.
// Subscribers run in subscription order. Channels are expected to be
// fully configured before the dispatcher starts serving and treated as
// read-only afterward; Subscribe and Unsubscribe are not synchronized
// against concurrent invocation.
type EventChannel struct {
	subs   []subscription
	nextID SubscriptionID
}

// Subscribe appends fn to the channel and returns an ID usable with
// Unsubscribe.
func (c *EventChannel) Subscribe(fn Subscriber) SubscriptionID {
	c.nextID++
	c.subs = append(c.subs, subscription{id: c.nextID, fn: fn})
	return c.nextID
}

// Unsubscribe removes the subscriber registered under id. It reports
// whether a subscriber was removed.
func (c *EventChannel) Unsubscribe(id SubscriptionID) bool {
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered subscribers.
func (c *EventChannel) Len() int {
	return len(c.subs)
}

// invoke runs the subscribers in order, interpreting the three
// control-flow sentinel errors. Any other subscriber error stops the
// iteration and is returned for the caller's exception boundary.
func (c *EventChannel) invoke(ctx *Context) (Signal, error) {
	for _, s := range c.subs {
		err := s.fn(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrBreakChannel):
			return Continue, nil
		case errors.Is(err, ErrStopRequest):
			return StopSilently, nil
		case errors.Is(err, ErrAbortRequest):
			return Abort, nil
		default:
			return Continue, err
		}
	}
	return Continue, nil
}

// Events holds the named hook points of one dispatcher, in the order
// they can fire during a request's lifetime.
type Events struct {
	// RawRequest fires for every accepted exchange before any dispatch
	// decision is made.
	RawRequest EventChannel

	// PreMatch fires before the route table is scanned. Static-file
	// requests never reach it.
	PreMatch EventChannel

	// PreHandler fires before every matching route's handler, once per
	// matching route.
	PreHandler EventChannel

	// PostHandler fires once after all matching handlers ran.
	PostHandler EventChannel

	// PostRequest fires as the final dispatch step of both the matched
	// and the undefined-URL paths. Static-file requests never reach it.
	PostRequest EventChannel

	// ServingFile fires after a static file's bytes were written,
	// before the response is closed.
	ServingFile EventChannel

	// MissingFile fires when a static-file request resolves to no
	// regular file; the response is then closed with status 404.
	MissingFile EventChannel

	// UndefinedURL fires when no route matched; the status is set to
	// 404 before the channel runs.
	UndefinedURL EventChannel

	// Exception fires at the request-level exception boundary with the
	// offending error available via Context.LastError. It is invoked
	// with a nil context for errors during request acceptance.
	Exception EventChannel
}
