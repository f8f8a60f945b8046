package hooks

import (
	"log/slog"

	"github.com/vitalvas/gustav/dispatch"
)

// AccessLogHook returns a subscriber that writes one structured log
// line per request. Attach it to the PostRequest channel; attaching the
// same subscriber to ServingFile and MissingFile additionally covers
// the static-file path, which never reaches PostRequest.
func AccessLogHook(logger *slog.Logger) dispatch.Subscriber {
	return func(ctx *dispatch.Context) error {
		if ctx == nil {
			return nil
		}
		logger.Info("request",
			"method", ctx.Request.Method(),
			"path", ctx.Request.Path(),
			"status", ctx.Response.Status(),
			"remote", ctx.Request.RemoteAddr(),
		)
		return nil
	}
}
