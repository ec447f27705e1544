package frame

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/types"
)

func TestFrameOwnedBufferEndToEnd(t *testing.T) {
	ctx := context.Background()
	alloc := newCountingAllocator()
	dec := &mockDecoder{Fill: 0xAB}

	f, err := NewFrame(ctx, newTestSample(hap.CodecSubtypeHap, 256, 256), OptionAllocator(alloc))
	require.NoError(t, err)
	require.Equal(t, StateReady, f.State())
	require.False(t, f.IsDecoded())
	require.Equal(t, dxt.TextureFormatUndefined, f.TextureFormat())
	require.Nil(t, f.Bytes())
	require.Equal(t, 32768, f.MinBufferSize())
	require.Equal(t, 32768, f.Capacity())
	require.True(t, f.Buffer().IsOwned())
	require.Equal(t, 1, alloc.allocs)

	require.NoError(t, decodeFrame(ctx, f, dec))
	require.Equal(t, StateDecoded, f.State())
	require.True(t, f.IsDecoded())
	require.Equal(t, dxt.TextureFormatRGBDXT1, f.TextureFormat())
	require.Len(t, f.Bytes(), 32768)
	require.Equal(t, byte(0xAB), f.Bytes()[32767])

	buf := f.Buffer().Bytes()
	f.Release(ctx)
	f.Release(ctx)
	require.Equal(t, 1, alloc.FreeCount(buf))
	require.Nil(t, f.Bytes())
}

func TestFrameDecodeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dec := &mockDecoder{Fill: 1}

	f, err := NewFrame(ctx, newTestSample(hap.CodecSubtypeHapQ, 64, 64))
	require.NoError(t, err)
	defer f.Release(ctx)

	require.NoError(t, decodeFrame(ctx, f, dec))
	before := append([]byte{}, f.Bytes()...)

	dec.Fill = 2
	require.NoError(t, decodeFrame(ctx, f, dec))
	require.Equal(t, int64(1), dec.Calls.Load())
	require.Equal(t, before, f.Bytes())
	require.Equal(t, dxt.TextureFormatYCoCgDXT5, f.TextureFormat())
}

func TestFrameDecodeConcurrentlyOnce(t *testing.T) {
	ctx := context.Background()
	dec := &mockDecoder{}

	f, err := NewFrame(ctx, newTestSample(hap.CodecSubtypeHapAlpha, 128, 128))
	require.NoError(t, err)
	defer f.Release(ctx)

	var (
		wg           sync.WaitGroup
		decodedCount atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isDecodedNow, err := f.decode(ctx, dec)
			assert.NoError(t, err)
			if isDecodedNow {
				decodedCount.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(1), dec.Calls.Load())
	require.Equal(t, int64(1), decodedCount.Load())
	require.True(t, f.IsDecoded())
}

func TestFrameEmptyNoBuffer(t *testing.T) {
	ctx := context.Background()
	dec := &mockDecoder{}

	f, err := NewEmptyFrame(ctx, newTestSample(hap.CodecSubtypeHap, 130, 130))
	require.NoError(t, err)
	defer f.Release(ctx)

	require.Equal(t, StateEmpty, f.State())
	require.Nil(t, f.Buffer())
	require.Equal(t, 8712, f.MinBufferSize())

	err = decodeFrame(ctx, f, dec)
	require.ErrorAs(t, err, &ErrNoBuffer{})
	require.False(t, f.IsDecoded())
	require.Equal(t, StateEmpty, f.State())
	require.Zero(t, dec.Calls.Load())
}

func TestFrameBufferTooSmall(t *testing.T) {
	ctx := context.Background()
	dec := &mockDecoder{}

	f, err := NewEmptyFrame(ctx, newTestSample(hap.CodecSubtypeHapAlpha, 130, 130))
	require.NoError(t, err)
	defer f.Release(ctx)

	small := make([]byte, 17424)
	require.NoError(t, f.SetBuffer(ctx, small, 17423))
	require.Equal(t, StateReady, f.State())

	err = decodeFrame(ctx, f, dec)
	var errSmall ErrBufferTooSmall
	require.ErrorAs(t, err, &errSmall)
	require.Equal(t, 17424, errSmall.Required)
	require.Equal(t, 17423, errSmall.Capacity)
	require.Zero(t, dec.Calls.Load())
	require.False(t, f.IsDecoded())

	// a bigger buffer may still be assigned
	require.NoError(t, f.SetBuffer(ctx, small, len(small)))
	require.NoError(t, decodeFrame(ctx, f, dec))
	require.True(t, f.IsDecoded())
	require.Equal(t, dxt.TextureFormatRGBADXT5, f.TextureFormat())
}

func TestFrameBorrowedBufferIsNeverFreed(t *testing.T) {
	ctx := context.Background()
	alloc := newCountingAllocator()

	f, err := NewFrame(ctx, newTestSample(hap.CodecSubtypeHap, 16, 16), OptionAllocator(alloc))
	require.NoError(t, err)
	owned := f.Buffer().Bytes()

	external := make([]byte, 1024)
	require.NoError(t, f.SetBuffer(ctx, external, 512))
	require.Equal(t, 1, alloc.FreeCount(owned), "the previously owned buffer is freed on replacement")
	require.False(t, f.Buffer().IsOwned())
	require.Equal(t, 512, f.Capacity())

	require.NoError(t, decodeFrame(ctx, f, &mockDecoder{Fill: 7}))
	require.Equal(t, byte(7), external[0])

	f.Release(ctx)
	require.Equal(t, 1, alloc.TotalFrees())
	require.Equal(t, byte(7), external[0])
}

func TestFrameBitstreamErrorIsTerminal(t *testing.T) {
	ctx := context.Background()
	corrupt := errors.New("corrupt")
	dec := &mockDecoder{Err: corrupt}

	f, err := NewFrame(ctx, newTestSample(hap.CodecSubtypeHap, 32, 32))
	require.NoError(t, err)
	defer f.Release(ctx)

	err = decodeFrame(ctx, f, dec)
	require.ErrorAs(t, err, &ErrBitstreamDecode{})
	require.ErrorIs(t, err, corrupt)
	require.Equal(t, StateFailed, f.State())
	require.False(t, f.IsDecoded())
	require.Nil(t, f.Bytes())
	require.Equal(t, dxt.TextureFormatUndefined, f.TextureFormat())

	dec.Err = nil
	err2 := decodeFrame(ctx, f, dec)
	require.Equal(t, err, err2)
	require.Equal(t, err, f.Err())
	require.Equal(t, int64(1), dec.Calls.Load())

	require.ErrorAs(t, f.SetBuffer(ctx, make([]byte, 1024), 1024), &ErrBufferLocked{})
}

func TestFrameShortDecodeFails(t *testing.T) {
	ctx := context.Background()
	f, err := NewFrame(ctx, newTestSample(hap.CodecSubtypeHap, 32, 32))
	require.NoError(t, err)
	defer f.Release(ctx)

	err = decodeFrame(ctx, f, shortDecoder{})
	require.ErrorAs(t, err, &ErrBitstreamDecode{})
	require.Equal(t, StateFailed, f.State())
}

type shortDecoder struct{}

func (shortDecoder) DecodeTexture(
	_ context.Context,
	_ []byte,
	_ dxt.PixelFormat,
	_ types.Resolution,
	dst []byte,
) (int, error) {
	return len(dst) / 2, nil
}

func TestFrameSetBufferValidation(t *testing.T) {
	ctx := context.Background()
	f, err := NewEmptyFrame(ctx, newTestSample(hap.CodecSubtypeHap, 32, 32))
	require.NoError(t, err)

	require.ErrorAs(t, f.SetBuffer(ctx, make([]byte, 10), 11), &ErrInvalidCapacity{})
	require.ErrorAs(t, f.SetBuffer(ctx, make([]byte, 10), -1), &ErrInvalidCapacity{})
	require.Equal(t, StateEmpty, f.State())

	f.Release(ctx)
	require.ErrorAs(t, f.SetBuffer(ctx, make([]byte, 1024), 1024), &ErrFrameReleased{})
	require.ErrorAs(t, decodeFrame(ctx, f, &mockDecoder{}), &ErrFrameReleased{})
}

func TestFramePayload(t *testing.T) {
	ctx := context.Background()
	f, err := NewEmptyFrame(ctx, newTestSample(hap.CodecSubtypeHap, 32, 32))
	require.NoError(t, err)

	first, second := &closerPayload{}, &closerPayload{}
	f.SetPayload(ctx, first)
	require.Same(t, first, f.Payload())

	f.SetPayload(ctx, first)
	require.Zero(t, first.Closes.Load())

	f.SetPayload(ctx, second)
	require.Equal(t, int64(1), first.Closes.Load())

	f.SetPayload(ctx, []int{1, 2, 3})
	require.Equal(t, int64(1), second.Closes.Load())

	third := &closerPayload{}
	f.SetPayload(ctx, third)
	f.Release(ctx)
	f.Release(ctx)
	require.Equal(t, int64(1), third.Closes.Load())
	require.Nil(t, f.Payload())

	late := &closerPayload{}
	f.SetPayload(ctx, late)
	require.Equal(t, int64(1), late.Closes.Load(), "a payload attached to a released frame is released right away")
}
