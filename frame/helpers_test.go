package frame

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/types"
)

type mockDecoder struct {
	Err   error
	Fill  byte
	Calls atomic.Int64
}

func (d *mockDecoder) DecodeTexture(
	_ context.Context,
	_ []byte,
	pixFmt dxt.PixelFormat,
	res types.Resolution,
	dst []byte,
) (int, error) {
	d.Calls.Add(1)
	if d.Err != nil {
		return 0, d.Err
	}
	n := dxt.MinBufferSize(pixFmt, res)
	for idx := range dst[:n] {
		dst[idx] = d.Fill
	}
	return n, nil
}

type countingAllocator struct {
	locker sync.Mutex
	allocs int
	frees  map[*byte]int
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{frees: map[*byte]int{}}
}

func (a *countingAllocator) Alloc(_ context.Context, size int) []byte {
	a.locker.Lock()
	defer a.locker.Unlock()
	a.allocs++
	return make([]byte, size)
}

func (a *countingAllocator) Free(_ context.Context, buf []byte) {
	a.locker.Lock()
	defer a.locker.Unlock()
	a.frees[&buf[0]]++
}

func (a *countingAllocator) FreeCount(buf []byte) int {
	a.locker.Lock()
	defer a.locker.Unlock()
	return a.frees[&buf[0]]
}

func (a *countingAllocator) TotalFrees() int {
	a.locker.Lock()
	defer a.locker.Unlock()
	total := 0
	for _, count := range a.frees {
		total += count
	}
	return total
}

type closerPayload struct {
	Closes atomic.Int64
}

func (p *closerPayload) Close(context.Context) error {
	p.Closes.Add(1)
	return nil
}

func newTestSample(subtype hap.CodecSubtype, width, height uint32) *RawSample {
	return NewRawSample(subtype, types.Resolution{Width: width, Height: height}, []byte{0x01, 0x02, 0x03, 0x04})
}

func decodeFrame(ctx context.Context, f *Frame, decoder BitstreamDecoder) error {
	_, err := f.decode(ctx, decoder)
	return err
}
