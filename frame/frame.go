// frame.go implements a Hap frame being decoded into a DXT texture.

// Package frame implements the decode lifecycle of Hap frames: describing
// a compressed sample, binding it to an output buffer and decoding it into
// block-compressed texture data ready for a GPU upload.
package frame

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/internal"
	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/hapdxt/types"
	"github.com/xaionaro-go/xsync"
)

// Frame is a compressed frame together with the buffer it decodes into.
//
// A Frame is not reusable: one is created per sample and released once the
// decoded texture is consumed. It is safe for concurrent use, decoding is
// serialized per frame.
type Frame struct {
	*Descriptor

	locker        xsync.Mutex
	state         State
	buffer        Buffer
	bytesUsed     int
	textureFormat dxt.TextureFormat
	decodeErr     error
	payload       any
	isReleased    bool
}

// NewFrame returns a frame owning an output buffer of exactly
// MinBufferSize bytes, allocated with OptionAllocator (or on the heap).
func NewFrame(
	ctx context.Context,
	sample Sample,
	opts ...Option,
) (_ret *Frame, _err error) {
	logger.Tracef(ctx, "NewFrame(ctx, %v)", sample)
	defer func() { logger.Tracef(ctx, "/NewFrame(ctx, %v): %v %v", sample, _ret, _err) }()

	cfg := Options(opts).config()
	f, err := newFrame(ctx, sample)
	if err != nil {
		return nil, err
	}
	f.buffer = newOwnedBuffer(ctx, cfg.Allocator, f.MinBufferSize())
	f.state = StateReady
	return f, nil
}

// NewEmptyFrame returns a frame without an output buffer; all the
// Descriptor fields are valid, so the caller may allocate memory of
// MinBufferSize bytes and assign it with SetBuffer before decoding.
func NewEmptyFrame(
	ctx context.Context,
	sample Sample,
) (_ret *Frame, _err error) {
	logger.Tracef(ctx, "NewEmptyFrame(ctx, %v)", sample)
	defer func() { logger.Tracef(ctx, "/NewEmptyFrame(ctx, %v): %v %v", sample, _ret, _err) }()
	return newFrame(ctx, sample)
}

func newFrame(
	ctx context.Context,
	sample Sample,
) (*Frame, error) {
	desc, err := NewDescriptor(ctx, sample)
	if err != nil {
		return nil, err
	}
	desc.retain()
	f := &Frame{
		Descriptor: desc,
		state:      StateEmpty,
	}
	internal.SetFinalizerRelease(ctx, f)
	return f, nil
}

func noLoggingCtx(ctx context.Context) context.Context {
	return xsync.WithNoLogging(ctx, true)
}

func (f *Frame) State() State {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() State {
		return f.state
	})
}

// IsDecoded returns true once the frame is successfully decoded.
func (f *Frame) IsDecoded() bool {
	return f.State() == StateDecoded
}

// Err returns the error the decoding failed with, if it did.
func (f *Frame) Err() error {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() error {
		return f.decodeErr
	})
}

// TextureFormat returns the GPU texture format of the decoded data, or
// dxt.TextureFormatUndefined if the frame is not decoded.
func (f *Frame) TextureFormat() dxt.TextureFormat {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() dxt.TextureFormat {
		return f.textureFormat
	})
}

// Buffer returns the assigned output buffer, or nil.
func (f *Frame) Buffer() Buffer {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() Buffer {
		return f.buffer
	})
}

// Capacity returns the capacity of the assigned output buffer, or 0.
func (f *Frame) Capacity() int {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() int {
		if f.buffer == nil {
			return 0
		}
		return f.buffer.Capacity()
	})
}

// Bytes returns the decoded DXT data (MinBufferSize bytes), or nil if
// the frame is not decoded.
func (f *Frame) Bytes() []byte {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() []byte {
		if f.state != StateDecoded || f.isReleased {
			return nil
		}
		return f.buffer.Bytes()[:f.bytesUsed]
	})
}

// SetBuffer assigns a caller-managed output buffer. Only the first
// capacity bytes of buf are written to. The frame never frees the buffer
// and the caller must not touch it until the frame is decoded (or failed).
//
// If the frame owned a buffer, that buffer is freed.
func (f *Frame) SetBuffer(
	ctx context.Context,
	buf []byte,
	capacity int,
) (_err error) {
	logger.Tracef(ctx, "SetBuffer(ctx, len:%d, %d)", len(buf), capacity)
	defer func() { logger.Tracef(ctx, "/SetBuffer(ctx, len:%d, %d): %v", len(buf), capacity, _err) }()
	return xsync.DoR1(noLoggingCtx(ctx), &f.locker, func() error {
		if f.isReleased {
			return ErrFrameReleased{}
		}
		if f.state.IsTerminal() {
			return ErrBufferLocked{State: f.state}
		}
		if capacity < 0 || capacity > len(buf) {
			return ErrInvalidCapacity{Capacity: capacity, Length: len(buf)}
		}
		if f.buffer != nil {
			f.buffer.release(ctx)
		}
		f.buffer = &BorrowedBuffer{data: buf[:capacity:capacity]}
		f.state = StateReady
		return nil
	})
}

// Payload returns the value attached with SetPayload.
func (f *Frame) Payload() any {
	return xsync.DoR1(noLoggingCtx(context.TODO()), &f.locker, func() any {
		return f.payload
	})
}

// SetPayload attaches an arbitrary value to the frame, for example the
// owner of a pooled buffer assigned with SetBuffer. The frame owns the
// payload: it is closed (if it implements types.Closer, io.Closer or
// types.Releaser) when the frame is released or when it is replaced.
func (f *Frame) SetPayload(ctx context.Context, payload any) {
	var toRelease any
	f.locker.Do(noLoggingCtx(ctx), func() {
		if f.isReleased {
			toRelease = payload
			return
		}
		toRelease, f.payload = f.payload, payload
		if isSamePayload(toRelease, payload) {
			toRelease = nil
		}
	})
	if toRelease != nil {
		releasePayload(ctx, toRelease)
	}
}

func isSamePayload(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

func releasePayload(ctx context.Context, payload any) {
	switch p := payload.(type) {
	case types.Closer:
		if err := p.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close the payload %T: %v", p, err)
		}
	case io.Closer:
		if err := p.Close(); err != nil {
			logger.Errorf(ctx, "unable to close the payload %T: %v", p, err)
		}
	case types.Releaser:
		p.Release(ctx)
	}
}

// Release destroys the frame: it frees the owned buffer (if any), releases
// the payload and the reference to the compressed sample. A borrowed
// buffer is just forgotten. Calling it more than once is a no-op.
func (f *Frame) Release(ctx context.Context) {
	logger.Tracef(ctx, "Release(ctx): %v", f)
	defer func() { logger.Tracef(ctx, "/Release(ctx): %v", f) }()

	var payload any
	released := xsync.DoR1(noLoggingCtx(ctx), &f.locker, func() bool {
		if f.isReleased {
			return false
		}
		f.isReleased = true
		if f.buffer != nil {
			f.buffer.release(ctx)
		}
		payload, f.payload = f.payload, nil
		return true
	})
	if !released {
		return
	}
	internal.ClearFinalizer(f)
	if payload != nil {
		releasePayload(ctx, payload)
	}
	f.Descriptor.release(ctx)
}

// decode decodes the sample into the output buffer. It is driven by Output
// and must not be called by consumers of frames.
//
// A decoded frame returns nil without decoding again, a failed frame
// returns the error it failed with. isDecodedNow is true only for the call
// which actually decoded the frame.
func (f *Frame) decode(
	ctx context.Context,
	decoder BitstreamDecoder,
) (_isDecodedNow bool, _err error) {
	logger.Tracef(ctx, "decode(ctx): %v", f.Descriptor)
	defer func() { logger.Tracef(ctx, "/decode(ctx): %v: %v %v", f.Descriptor, _isDecodedNow, _err) }()
	return xsync.DoA2R2(noLoggingCtx(ctx), &f.locker, f.decodeLocked, ctx, decoder)
}

func (f *Frame) decodeLocked(
	ctx context.Context,
	decoder BitstreamDecoder,
) (bool, error) {
	if f.isReleased {
		return false, ErrFrameReleased{}
	}
	switch f.state {
	case StateDecoded:
		return false, nil
	case StateFailed:
		return false, f.decodeErr
	case StateEmpty:
		return false, ErrNoBuffer{}
	}
	internal.Assert(ctx, f.state == StateReady && f.buffer != nil, f.state)

	capacity := f.buffer.Capacity()
	if capacity < f.MinBufferSize() {
		return false, ErrBufferTooSmall{Required: f.MinBufferSize(), Capacity: capacity}
	}

	n, err := decoder.DecodeTexture(
		ctx,
		f.sample.Data(),
		f.pixelFormat,
		f.dxtResolution,
		f.buffer.Bytes(),
	)
	if err == nil && n != f.MinBufferSize() {
		err = fmt.Errorf("the decoder wrote %d bytes, while %d were expected", n, f.MinBufferSize())
	}
	if err != nil {
		f.state = StateFailed
		f.decodeErr = ErrBitstreamDecode{Err: err}
		return false, f.decodeErr
	}

	f.bytesUsed = n
	f.textureFormat = f.pixelFormat.TextureFormat()
	f.state = StateDecoded
	return true, nil
}

func (f *Frame) String() string {
	if f == nil {
		return "Frame(nil)"
	}
	return fmt.Sprintf("Frame(%s; %s)", f.Descriptor, f.State())
}
