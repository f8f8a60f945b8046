// Package hooks provides ready-made event subscribers for common
// cross-cutting concerns around the dispatch pipeline: request-ID
// stamping, access logging, basic authentication, security and cache
// headers, trailing-slash redirects, and error dumping.
//
// Each hook is a plain dispatch.Subscriber; attach it to the channel it
// is documented for:
//
//	d.Events.RawRequest.Subscribe(hooks.RequestIDHook(hooks.RequestIDConfig{}))
//	d.Events.PostRequest.Subscribe(hooks.AccessLogHook(logger))
//	d.Events.Exception.Subscribe(hooks.DumpErrorsHook())
package hooks
