package hooks

import (
	"net/http"
	"strings"

	"github.com/vitalvas/gustav/dispatch"
)

// ForceTrailingSlashHook returns a subscriber for the RawRequest
// channel that answers any path without a trailing slash with a
// permanent redirect to the slashed form and stops dispatch for that
// request. Paths whose last segment contains a dot are left alone so
// file-like URLs keep working.
func ForceTrailingSlashHook() dispatch.Subscriber {
	return func(ctx *dispatch.Context) error {
		path := ctx.Request.Path()
		if strings.HasSuffix(path, "/") {
			return nil
		}
		if last := path[strings.LastIndexByte(path, '/')+1:]; strings.ContainsRune(last, '.') {
			return nil
		}

		ctx.Response.SetStatus(http.StatusMovedPermanently)
		ctx.Response.Header().Set("Location", path+"/")
		return dispatch.ErrStopRequest
	}
}
