package internal

import (
	"context"
	"runtime"

	"github.com/xaionaro-go/hapdxt/logger"
)

// SetFinalizerRelease makes sure an object which was leaked without being
// released still gets its resources back to where they came from.
func SetFinalizerRelease[T interface{ Release(context.Context) }](
	ctx context.Context,
	obj T,
) {
	runtime.SetFinalizer(obj, func(obj T) {
		logger.Warnf(ctx, "%T was garbage-collected without being released", obj)
		obj.Release(ctx)
	})
}

// ClearFinalizer removes the finalizer set by SetFinalizerRelease.
func ClearFinalizer[T any](obj T) {
	runtime.SetFinalizer(obj, nil)
}
