// descriptor.go implements the description of a compressed Hap frame.

package frame

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/hapdxt/types"
)

// Descriptor describes one compressed sample and the DXT image it decodes
// into. It is immutable after construction.
type Descriptor struct {
	sample        Sample
	codecSubtype  hap.CodecSubtype
	resolution    types.Resolution
	pixelFormat   dxt.PixelFormat
	dxtResolution types.Resolution
	minBufferSize int

	isRetained  bool
	releaseOnce sync.Once
}

// NewDescriptor validates the sample and derives the DXT pixel format,
// the block-aligned size and the minimal output buffer size.
//
// A standalone descriptor does not retain the sample: only a Frame does,
// until it is released.
func NewDescriptor(
	ctx context.Context,
	sample Sample,
) (_ret *Descriptor, _err error) {
	logger.Tracef(ctx, "NewDescriptor(ctx, %v)", sample)
	defer func() { logger.Tracef(ctx, "/NewDescriptor(ctx, %v): %v %v", sample, _ret, _err) }()

	if sample == nil {
		return nil, ErrMalformedSample{Reason: "no sample"}
	}
	codecSubtype := sample.CodecSubtype()
	if codecSubtype == hap.CodecSubtypeUndefined {
		return nil, ErrMalformedSample{Reason: "no codec subtype"}
	}
	resolution := sample.Resolution()
	if resolution.IsZero() {
		return nil, ErrMalformedSample{Reason: fmt.Sprintf("invalid image size %s", resolution)}
	}
	if len(sample.Data()) == 0 {
		return nil, ErrMalformedSample{Reason: "no compressed data"}
	}
	pixelFormat, ok := codecSubtype.PixelFormat()
	if !ok {
		return nil, ErrUnsupportedCodec{CodecSubtype: codecSubtype}
	}

	dxtResolution, err := dxt.AlignedResolution(resolution)
	if err != nil {
		return nil, ErrMalformedSample{Reason: err.Error()}
	}
	minBufferSize, err := dxt.ImageSize(pixelFormat, resolution)
	if err != nil {
		return nil, ErrMalformedSample{Reason: err.Error()}
	}

	return &Descriptor{
		sample:        sample,
		codecSubtype:  codecSubtype,
		resolution:    resolution,
		pixelFormat:   pixelFormat,
		dxtResolution: dxtResolution,
		minBufferSize: minBufferSize,
	}, nil
}

func (d *Descriptor) Sample() Sample {
	return d.sample
}

func (d *Descriptor) CodecSubtype() hap.CodecSubtype {
	return d.codecSubtype
}

// Resolution is the size of the picture, which may be smaller than
// DXTResolution.
func (d *Descriptor) Resolution() types.Resolution {
	return d.resolution
}

func (d *Descriptor) PixelFormat() dxt.PixelFormat {
	return d.pixelFormat
}

// DXTResolution is the size of the block-compressed image: Resolution
// rounded up to multiples of 4.
func (d *Descriptor) DXTResolution() types.Resolution {
	return d.dxtResolution
}

// MinBufferSize is the minimal capacity of an output buffer to decode
// the frame into.
func (d *Descriptor) MinBufferSize() int {
	return d.minBufferSize
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s %s -> %s %s", d.codecSubtype, d.resolution, d.pixelFormat, d.dxtResolution)
}

// retain takes a reference to the sample (if it is a Retainer) on behalf
// of the frame owning the descriptor.
func (d *Descriptor) retain() {
	if r, ok := d.sample.(Retainer); ok {
		r.Retain()
		d.isRetained = true
	}
}

func (d *Descriptor) release(ctx context.Context) {
	d.releaseOnce.Do(func() {
		if !d.isRetained {
			return
		}
		if r, ok := d.sample.(types.Releaser); ok {
			r.Release(ctx)
		}
	})
}
