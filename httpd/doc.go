// Package httpd adapts net/http serving to the pull-style transport the
// dispatcher consumes: every inbound request is parked inside its
// ServeHTTP call and handed over through a blocking AcceptNext, and the
// connection is finalized when the dispatcher closes or aborts the
// response.
//
// Responses are fully buffered: handlers can keep mutating the status
// code and headers after body bytes were written, and nothing reaches
// the peer before Close. Abort hijacks the underlying connection and
// closes it without a well-formed response.
//
//	transport := httpd.New()
//	d, err := dispatch.New(dispatch.DefaultConfig(), transport)
//	if err != nil {
//		log.Fatal(err)
//	}
//	d.HandleExact("/", handler)
//	if err := d.Start(":8080"); err != nil {
//		log.Fatal(err)
//	}
//
// The transport listens on any number of addresses, optionally caps
// concurrent connections per listener, and shuts down gracefully.
package httpd
