// codec_subtype.go defines the QuickTime codec subtypes of the Hap family.

package hap

import (
	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/types"
)

// CodecSubtype is the sample-description FourCC a Hap track is tagged with.
type CodecSubtype types.FourCC

const (
	CodecSubtypeUndefined = CodecSubtype(0)
	CodecSubtypeHap       = CodecSubtype(0x48617031) // 'Hap1'
	CodecSubtypeHapAlpha  = CodecSubtype(0x48617035) // 'Hap5'
	CodecSubtypeHapQ      = CodecSubtype(0x48617059) // 'HapY'

	// The variants below are recognized, but cannot be decoded into
	// a single DXT texture.
	CodecSubtypeHapQAlpha    = CodecSubtype(0x4861704D) // 'HapM'
	CodecSubtypeHapAlphaOnly = CodecSubtype(0x48617041) // 'HapA'
	CodecSubtypeHap7Alpha    = CodecSubtype(0x48617037) // 'Hap7'
	CodecSubtypeHapHDR       = CodecSubtype(0x48617048) // 'HapH'
)

func (s CodecSubtype) String() string {
	return types.FourCC(s).String()
}

// IsKnown reports whether the subtype belongs to the Hap family at all.
func (s CodecSubtype) IsKnown() bool {
	switch s {
	case CodecSubtypeHap, CodecSubtypeHapAlpha, CodecSubtypeHapQ,
		CodecSubtypeHapQAlpha, CodecSubtypeHapAlphaOnly,
		CodecSubtypeHap7Alpha, CodecSubtypeHapHDR:
		return true
	}
	return false
}

// PixelFormat returns the DXT pixel format frames of this subtype decode
// into. The second value is false for subtypes which do not decode into
// exactly one DXT texture.
func (s CodecSubtype) PixelFormat() (dxt.PixelFormat, bool) {
	switch s {
	case CodecSubtypeHap:
		return dxt.PixelFormatRGBDXT1, true
	case CodecSubtypeHapAlpha:
		return dxt.PixelFormatRGBADXT5, true
	case CodecSubtypeHapQ:
		return dxt.PixelFormatYCoCgDXT5, true
	}
	return dxt.PixelFormatUndefined, false
}
