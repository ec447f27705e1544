// section.go parses the section headers Hap frames are built of.

package hap

import (
	"encoding/binary"
)

const (
	sectionTypeMultipleImages              = 0x0D
	sectionTypeDecodeInstructionsContainer = 0x01
	sectionTypeChunkCompressorTable        = 0x02
	sectionTypeChunkSizeTable              = 0x03
	sectionTypeChunkOffsetTable            = 0x04
)

type compressor byte

const (
	compressorNone    = compressor(0xA)
	compressorSnappy  = compressor(0xB)
	compressorComplex = compressor(0xC)
)

// textureFormatCode is the low nibble of a texture section type.
type textureFormatCode byte

const (
	textureFormatCodeARGTC1    = textureFormatCode(0x1)
	textureFormatCodeRGBBPTCUF = textureFormatCode(0x2)
	textureFormatCodeRGBBPTCSF = textureFormatCode(0x3)
	textureFormatCodeRGBDXT1   = textureFormatCode(0xB)
	textureFormatCodeRGBABPTC  = textureFormatCode(0xC)
	textureFormatCodeRGBADXT5  = textureFormatCode(0xE)
	textureFormatCodeYCoCgDXT5 = textureFormatCode(0xF)
)

type section struct {
	Type byte

	// Data is the section payload, the header excluded.
	Data []byte

	// Size is the full size of the section including its header.
	Size int
}

func (s section) compressor() compressor {
	return compressor(s.Type >> 4)
}

func (s section) textureFormatCode() textureFormatCode {
	return textureFormatCode(s.Type & 0x0F)
}

// readSection reads a section at the beginning of b.
//
// A header is 3 bytes of little-endian length and 1 byte of type; a zero
// length means the actual length follows as 4 more little-endian bytes.
func readSection(b []byte) (section, error) {
	if len(b) < 4 {
		return section{}, ErrBadFrame{Reason: "a section header is truncated"}
	}
	headerLength := 4
	length := int(b[0]) | int(b[1])<<8 | int(b[2])<<16
	sectionType := b[3]
	if length == 0 {
		if len(b) < 8 {
			return section{}, ErrBadFrame{Reason: "a long section header is truncated"}
		}
		length = int(binary.LittleEndian.Uint32(b[4:8]))
		headerLength = 8
	}
	if length < 0 || length > len(b)-headerLength {
		return section{}, ErrBadFrame{Reason: "a section is longer than the remaining data"}
	}
	return section{
		Type: sectionType,
		Data: b[headerLength : headerLength+length],
		Size: headerLength + length,
	}, nil
}

// textureSections returns the texture sections of a frame: the top-level
// section itself, or the children of a multiple-images section.
func textureSections(frame []byte) ([]section, error) {
	top, err := readSection(frame)
	if err != nil {
		return nil, err
	}
	if top.Type != sectionTypeMultipleImages {
		return []section{top}, nil
	}

	var result []section
	for rest := top.Data; len(rest) > 0; {
		s, err := readSection(rest)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
		rest = rest[s.Size:]
	}
	if len(result) == 0 {
		return nil, ErrBadFrame{Reason: "a multiple-images section contains no images"}
	}
	return result, nil
}
