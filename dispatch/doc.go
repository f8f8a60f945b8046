// Package dispatch implements an embeddable HTTP request dispatcher:
// it pulls inbound exchanges from a transport, matches each request
// against an ordered list of route patterns, invokes every matching
// handler, and runs a fixed set of event channels around the dispatch
// so callers can observe or redirect the request lifecycle. A
// static-file fallback path with content-type resolution is built in.
//
// # Dispatcher
//
// Create a dispatcher over a transport, register routes, and start the
// accept loop:
//
//	transport := httpd.New()
//	d, err := dispatch.New(dispatch.DefaultConfig(), transport)
//	if err != nil {
//		log.Fatal(err)
//	}
//	d.HandleExact("/hello/", func(ctx *dispatch.Context) error {
//		_, err := io.WriteString(ctx.Response, "hello")
//		return err
//	})
//	if err := d.Start(":8080"); err != nil {
//		log.Fatal(err)
//	}
//
// # Route matching
//
// A RoutePattern carries pattern text, a match mode (exact, prefix,
// suffix, or regular expression), and an optional case-sensitive
// method filter that is checked before the pattern. Regular-expression
// patterns are compiled at construction and searched unanchored.
//
// The route table is scanned linearly in registration order, and every
// matching entry runs, not just the first: ordering determines
// invocation order, never exclusivity. A later matching handler
// observes whatever an earlier one already wrote to the response. "No
// match" means zero entries matched, which yields a 404 and the
// UndefinedURL channel.
//
// # Event channels
//
// Nine named channels bracket the request lifecycle: RawRequest,
// PreMatch, PreHandler, PostHandler, PostRequest, ServingFile,
// MissingFile, UndefinedURL, and Exception. Subscribers run in
// subscription order and steer the pipeline through three sentinel
// errors:
//
//	dispatch.ErrBreakChannel  // skip the rest of this channel only
//	dispatch.ErrStopRequest   // cease dispatch, leave the connection alone
//	dispatch.ErrAbortRequest  // cease dispatch, tear the connection down
//
// Any other subscriber error is never swallowed: it propagates to the
// request-level exception boundary, which sets a best-effort 500,
// fires the Exception channel, and applies the close policy. Handler
// panics take the same path.
//
// # Static files
//
// When Config.StaticFilesURLPrefix is set, every GET request whose
// path starts with that prefix is resolved below
// Config.StaticFilesRootPath and served whole, bypassing the route
// table and the PreMatch/PreHandler/PostHandler channels. Resolved
// paths are canonicalized and checked against the root, so ".."
// segments cannot escape it. There is no streaming and no range
// support; the whole file is read through a pluggable reader.
//
// # Concurrency
//
// A single accept loop pulls exchanges from the transport. Per-request
// work runs inline, serializing all requests, or on one goroutine per
// request when Config.UseThreads is set, unbounded and without
// backpressure. Callers needing admission control add it via the event
// hooks or cap connections at the transport. Routes and subscribers
// must be fully configured before Start and are treated as read-only
// afterward.
package dispatch
