// Package internal contains helpers shared by the hapdxt packages.
package internal

import (
	"context"

	"github.com/xaionaro-go/hapdxt/logger"
)

// Assert panics (through the logger, so the message is flushed) if the
// invariant does not hold.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Panicf(ctx, "assertion failed: %v", extraArgs)
}
