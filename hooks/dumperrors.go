package hooks

import (
	"fmt"

	"github.com/vitalvas/gustav/dispatch"
)

// DumpErrorsHook returns a subscriber for the Exception channel that
// echoes the full error description into the response body. Without it
// an unhandled handler error yields a bare 500 with no body.
//
// The dumped text exposes internal details to clients; do not enable
// this in production.
func DumpErrorsHook() dispatch.Subscriber {
	return func(ctx *dispatch.Context) error {
		if ctx == nil || ctx.LastError() == nil {
			return nil
		}
		fmt.Fprintln(ctx.Response, ctx.LastError().Error())
		return nil
	}
}
