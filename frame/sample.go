// sample.go defines the compressed samples frames are built from.

package frame

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/internal"
	"github.com/xaionaro-go/hapdxt/types"
)

// Sample is one compressed video sample as produced by a demuxer.
type Sample interface {
	CodecSubtype() hap.CodecSubtype
	Resolution() types.Resolution
	Data() []byte
}

// Retainer is implemented by samples which are shared by reference count.
// A Descriptor retains such a sample for the lifetime of its frame, and
// releases it (through types.Releaser) when the frame is released.
type Retainer interface {
	Retain()
}

// RawSample is a reference-counted Sample backed by a byte slice.
type RawSample struct {
	codecSubtype hap.CodecSubtype
	resolution   types.Resolution
	data         []byte

	Timestamp time.Duration
	Duration  time.Duration

	// OnFree is called once the last reference is released, typically to
	// return Data to the demuxer's pool.
	OnFree func(ctx context.Context, s *RawSample)

	refCount atomic.Int64
}

var (
	_ Sample         = (*RawSample)(nil)
	_ Retainer       = (*RawSample)(nil)
	_ types.Releaser = (*RawSample)(nil)
)

// NewRawSample returns a sample holding one reference, owned by the caller.
func NewRawSample(
	codecSubtype hap.CodecSubtype,
	resolution types.Resolution,
	data []byte,
) *RawSample {
	s := &RawSample{
		codecSubtype: codecSubtype,
		resolution:   resolution,
		data:         data,
	}
	s.refCount.Store(1)
	return s
}

func (s *RawSample) CodecSubtype() hap.CodecSubtype {
	return s.codecSubtype
}

func (s *RawSample) Resolution() types.Resolution {
	return s.resolution
}

func (s *RawSample) Data() []byte {
	return s.data
}

func (s *RawSample) RefCount() int64 {
	return s.refCount.Load()
}

func (s *RawSample) Retain() {
	s.refCount.Add(1)
}

func (s *RawSample) Release(ctx context.Context) {
	refCount := s.refCount.Add(-1)
	internal.Assert(ctx, refCount >= 0, "the sample was released more times than retained")
	if refCount != 0 {
		return
	}
	if s.OnFree != nil {
		s.OnFree(ctx, s)
	}
}

func (s *RawSample) String() string {
	return fmt.Sprintf("RawSample(%s %s, %d bytes, ts:%v)", s.codecSubtype, s.resolution, len(s.data), s.Timestamp)
}
