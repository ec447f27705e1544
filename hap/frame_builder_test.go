package hap

import (
	"encoding/binary"

	"github.com/klauspost/compress/snappy"
)

func buildSection(sectionType byte, data []byte) []byte {
	if len(data) > 0xFFFFFF {
		return buildLongSection(sectionType, data)
	}
	b := make([]byte, 4, 4+len(data))
	b[0] = byte(len(data))
	b[1] = byte(len(data) >> 8)
	b[2] = byte(len(data) >> 16)
	b[3] = sectionType
	return append(b, data...)
}

func buildLongSection(sectionType byte, data []byte) []byte {
	b := make([]byte, 8, 8+len(data))
	b[3] = sectionType
	binary.LittleEndian.PutUint32(b[4:], uint32(len(data)))
	return append(b, data...)
}

func textureType(c compressor, f textureFormatCode) byte {
	return byte(c)<<4 | byte(f)
}

type testChunk struct {
	Compressor compressor
	Data       []byte
}

func (c testChunk) encoded() []byte {
	if c.Compressor == compressorSnappy {
		return snappy.Encode(nil, c.Data)
	}
	return c.Data
}

func buildChunkedTexture(f textureFormatCode, withOffsets bool, chunks ...testChunk) []byte {
	compressors := make([]byte, len(chunks))
	sizes := make([]byte, 4*len(chunks))
	offsets := make([]byte, 4*len(chunks))
	var payload []byte
	for idx, c := range chunks {
		enc := c.encoded()
		compressors[idx] = byte(c.Compressor)
		binary.LittleEndian.PutUint32(sizes[idx*4:], uint32(len(enc)))
		binary.LittleEndian.PutUint32(offsets[idx*4:], uint32(len(payload)))
		payload = append(payload, enc...)
	}

	var instr []byte
	instr = append(instr, buildSection(sectionTypeChunkCompressorTable, compressors)...)
	instr = append(instr, buildSection(sectionTypeChunkSizeTable, sizes)...)
	if withOffsets {
		instr = append(instr, buildSection(sectionTypeChunkOffsetTable, offsets)...)
	}

	body := buildSection(sectionTypeDecodeInstructionsContainer, instr)
	body = append(body, payload...)
	return buildSection(textureType(compressorComplex, f), body)
}

func testPattern(size int) []byte {
	b := make([]byte, size)
	for idx := range b {
		b[idx] = byte(idx*7 + idx/13)
	}
	return b
}
