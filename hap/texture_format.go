package hap

import (
	"github.com/xaionaro-go/hapdxt/dxt"
)

func (c textureFormatCode) TextureFormat() (dxt.TextureFormat, bool) {
	switch c {
	case textureFormatCodeRGBDXT1:
		return dxt.TextureFormatRGBDXT1, true
	case textureFormatCodeRGBADXT5:
		return dxt.TextureFormatRGBADXT5, true
	case textureFormatCodeYCoCgDXT5:
		return dxt.TextureFormatYCoCgDXT5, true
	case textureFormatCodeARGTC1:
		return dxt.TextureFormatARGTC1, true
	case textureFormatCodeRGBABPTC:
		return dxt.TextureFormatRGBABPTC, true
	case textureFormatCodeRGBBPTCUF:
		return dxt.TextureFormatRGBBPTCUF, true
	case textureFormatCodeRGBBPTCSF:
		return dxt.TextureFormatRGBBPTCSF, true
	}
	return dxt.TextureFormatUndefined, false
}

func (s section) textureFormat() (dxt.TextureFormat, error) {
	switch s.compressor() {
	case compressorNone, compressorSnappy, compressorComplex:
	default:
		return dxt.TextureFormatUndefined, ErrUnsupportedFormat{SectionType: s.Type}
	}
	tf, ok := s.textureFormatCode().TextureFormat()
	if !ok {
		return dxt.TextureFormatUndefined, ErrUnsupportedFormat{SectionType: s.Type}
	}
	return tf, nil
}

// TextureCount returns how many textures the frame carries: 1 for the
// plain variants and 2 for Hap Q Alpha.
func TextureCount(frame []byte) (int, error) {
	sections, err := textureSections(frame)
	if err != nil {
		return 0, err
	}
	return len(sections), nil
}

// FrameTextureFormat returns the GPU texture format of the texture at the
// given index, without decompressing anything.
func FrameTextureFormat(frame []byte, index int) (dxt.TextureFormat, error) {
	s, err := textureSection(frame, index)
	if err != nil {
		return dxt.TextureFormatUndefined, err
	}
	return s.textureFormat()
}

func textureSection(frame []byte, index int) (section, error) {
	sections, err := textureSections(frame)
	if err != nil {
		return section{}, err
	}
	if index < 0 || index >= len(sections) {
		return section{}, ErrTextureIndexOutOfRange{Index: index, Count: len(sections)}
	}
	return sections[index], nil
}
