// pixel_format.go defines the block-compressed pixel formats a Hap frame decodes into.

// Package dxt describes the DXT (BC1/BC3) texture layouts Hap frames decode
// into: their pixel-format tags, GPU texture formats and memory footprint.
package dxt

import (
	"fmt"
	"math"

	"github.com/xaionaro-go/hapdxt/types"
)

// PixelFormat is the CoreVideo-style FourCC of a block-compressed image.
type PixelFormat types.FourCC

const (
	PixelFormatUndefined = PixelFormat(0)
	PixelFormatRGBDXT1   = PixelFormat(0x44587431) // 'DXt1'
	PixelFormatRGBADXT5  = PixelFormat(0x44585435) // 'DXT5'
	PixelFormatYCoCgDXT5 = PixelFormat(0x44597435) // 'DYt5'
)

const (
	// BlockWidth and BlockHeight are the pixel dimensions of one compressed block.
	BlockWidth  = 4
	BlockHeight = 4
)

func (pf PixelFormat) String() string {
	switch pf {
	case PixelFormatUndefined:
		return "undefined"
	case PixelFormatRGBDXT1:
		return "RGB_DXT1"
	case PixelFormatRGBADXT5:
		return "RGBA_DXT5"
	case PixelFormatYCoCgDXT5:
		return "YCoCg_DXT5"
	default:
		return fmt.Sprintf("PixelFormat(%s)", types.FourCC(pf))
	}
}

// BytesPerBlock returns the size of one 4x4 block, or 0 for unknown formats.
func (pf PixelFormat) BytesPerBlock() int {
	switch pf {
	case PixelFormatRGBDXT1:
		return 8
	case PixelFormatRGBADXT5, PixelFormatYCoCgDXT5:
		return 16
	default:
		return 0
	}
}

// TextureFormat returns the GPU texture format matching the pixel format.
func (pf PixelFormat) TextureFormat() TextureFormat {
	switch pf {
	case PixelFormatRGBDXT1:
		return TextureFormatRGBDXT1
	case PixelFormatRGBADXT5:
		return TextureFormatRGBADXT5
	case PixelFormatYCoCgDXT5:
		return TextureFormatYCoCgDXT5
	default:
		return TextureFormatUndefined
	}
}

// ErrImageTooLarge means the block-compressed image would not fit into
// addressable memory.
type ErrImageTooLarge struct {
	PixelFormat PixelFormat
	Resolution  types.Resolution
}

func (e ErrImageTooLarge) Error() string {
	return fmt.Sprintf("a %s image of %s does not fit into memory", e.PixelFormat, e.Resolution)
}

// AlignedResolution returns the image size rounded up to whole blocks.
//
// The picture itself may be smaller; consumers crop to the logical size.
func AlignedResolution(res types.Resolution) (types.Resolution, error) {
	return res.AlignUp(BlockWidth)
}

// BlockCount returns how many blocks wide and high an image of the given
// logical size is.
func BlockCount(res types.Resolution) (blocksWide, blocksHigh uint64) {
	return (uint64(res.Width) + BlockWidth - 1) / BlockWidth,
		(uint64(res.Height) + BlockHeight - 1) / BlockHeight
}

// ImageSize returns the amount of bytes required to hold the whole
// block-compressed image, or ErrImageTooLarge if it exceeds math.MaxInt.
func ImageSize(pf PixelFormat, res types.Resolution) (int, error) {
	bytesPerBlock := uint64(pf.BytesPerBlock())
	if bytesPerBlock == 0 {
		return 0, fmt.Errorf("unknown pixel format %s", pf)
	}
	blocksWide, blocksHigh := BlockCount(res)
	blocks := blocksWide * blocksHigh // both are below 2^31
	if blocks > uint64(math.MaxInt)/bytesPerBlock {
		return 0, ErrImageTooLarge{PixelFormat: pf, Resolution: res}
	}
	return int(blocks * bytesPerBlock), nil
}

// MinBufferSize is ImageSize which returns 0 for unknown pixel formats and
// images too large to address.
func MinBufferSize(pf PixelFormat, res types.Resolution) int {
	size, err := ImageSize(pf, res)
	if err != nil {
		return 0
	}
	return size
}
