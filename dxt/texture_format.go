package dxt

import (
	"fmt"
)

// TextureFormat is the GPU-side internal format a decoded frame uploads as.
//
// The values match the OpenGL enums (the YCoCg variant has no GL enum and
// uses 0x01, as the Hap reference decoder does).
type TextureFormat uint32

const (
	TextureFormatUndefined = TextureFormat(0)
	TextureFormatYCoCgDXT5 = TextureFormat(0x01)
	TextureFormatRGBDXT1   = TextureFormat(0x83F0)
	TextureFormatRGBADXT5  = TextureFormat(0x83F3)
	TextureFormatARGTC1    = TextureFormat(0x8DBB)
	TextureFormatRGBABPTC  = TextureFormat(0x8E8C)
	TextureFormatRGBBPTCUF = TextureFormat(0x8E8F)
	TextureFormatRGBBPTCSF = TextureFormat(0x8E8E)
)

func (tf TextureFormat) String() string {
	switch tf {
	case TextureFormatUndefined:
		return "undefined"
	case TextureFormatYCoCgDXT5:
		return "YCoCg_DXT5"
	case TextureFormatRGBDXT1:
		return "RGB_DXT1"
	case TextureFormatRGBADXT5:
		return "RGBA_DXT5"
	case TextureFormatARGTC1:
		return "A_RGTC1"
	case TextureFormatRGBABPTC:
		return "RGBA_BPTC_UNORM"
	case TextureFormatRGBBPTCUF:
		return "RGB_BPTC_UNSIGNED_FLOAT"
	case TextureFormatRGBBPTCSF:
		return "RGB_BPTC_SIGNED_FLOAT"
	default:
		return fmt.Sprintf("TextureFormat(0x%04X)", uint32(tf))
	}
}

// PixelFormat returns the pixel format matching the texture format, or
// PixelFormatUndefined for formats a Hap frame can carry but which are not
// DXT-based.
func (tf TextureFormat) PixelFormat() PixelFormat {
	switch tf {
	case TextureFormatRGBDXT1:
		return PixelFormatRGBDXT1
	case TextureFormatRGBADXT5:
		return PixelFormatRGBADXT5
	case TextureFormatYCoCgDXT5:
		return PixelFormatYCoCgDXT5
	default:
		return PixelFormatUndefined
	}
}
