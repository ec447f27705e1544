// closer.go defines the lifetime interfaces of frames and their payloads.

package types

import (
	"context"
)

type Closer interface {
	Close(context.Context) error
}

// Releaser is implemented by objects holding a shared reference that must
// be dropped once the holder is done with it.
type Releaser interface {
	Release(context.Context)
}
