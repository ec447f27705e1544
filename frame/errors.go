// errors.go defines the errors of frame construction and decoding.

package frame

import (
	"fmt"

	"github.com/xaionaro-go/hapdxt/hap"
)

// ErrMalformedSample means the sample lacks the metadata required to
// describe a frame. The sample should be discarded.
type ErrMalformedSample struct {
	Reason string
}

func (e ErrMalformedSample) Error() string {
	return fmt.Sprintf("malformed sample: %s", e.Reason)
}

// ErrUnsupportedCodec means the sample is tagged with a codec subtype which
// does not decode into a single DXT texture.
type ErrUnsupportedCodec struct {
	CodecSubtype hap.CodecSubtype
}

func (e ErrUnsupportedCodec) Error() string {
	if e.CodecSubtype.IsKnown() {
		return fmt.Sprintf("codec subtype '%s' is a Hap variant which is not supported, yet", e.CodecSubtype)
	}
	return fmt.Sprintf("codec subtype '%s' is not a Hap codec", e.CodecSubtype)
}

// ErrBufferTooSmall means the assigned output buffer cannot hold the
// decoded texture. Retrying with the same buffer is pointless.
type ErrBufferTooSmall struct {
	Required int
	Capacity int
}

func (e ErrBufferTooSmall) Error() string {
	return fmt.Sprintf("the output buffer is too small: %d bytes required, while the capacity is %d", e.Required, e.Capacity)
}

// ErrBitstreamDecode means the compressed data is corrupt or truncated.
// The content of the output buffer is undefined.
type ErrBitstreamDecode struct {
	Err error
}

func (e ErrBitstreamDecode) Error() string {
	return fmt.Sprintf("unable to decode the bitstream: %v", e.Err)
}

func (e ErrBitstreamDecode) Unwrap() error {
	return e.Err
}

// ErrNoBuffer means decoding was requested before an output buffer
// was assigned.
type ErrNoBuffer struct{}

func (ErrNoBuffer) Error() string {
	return "no output buffer is assigned"
}

// ErrFrameReleased means the frame was used after Release.
type ErrFrameReleased struct{}

func (ErrFrameReleased) Error() string {
	return "the frame is already released"
}

// ErrBufferLocked means the output buffer cannot be changed anymore, since
// the frame was already decoded (or failed to).
type ErrBufferLocked struct {
	State State
}

func (e ErrBufferLocked) Error() string {
	return fmt.Sprintf("unable to change the output buffer of a frame in state %s", e.State)
}

// ErrInvalidCapacity means SetBuffer got a capacity outside [0, len(buf)].
type ErrInvalidCapacity struct {
	Capacity int
	Length   int
}

func (e ErrInvalidCapacity) Error() string {
	return fmt.Sprintf("invalid capacity %d of a buffer of length %d", e.Capacity, e.Length)
}

// ErrClosed means the Output is already closed.
type ErrClosed struct{}

func (ErrClosed) Error() string {
	return "closed"
}
