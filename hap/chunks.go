// chunks.go implements the "complex" Hap compressor: a texture split into
// independently compressed chunks described by decode instructions.

package hap

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/observability"
)

type chunk struct {
	Compressor compressor
	Src        []byte
	DstOffset  int
	DstSize    int
}

type decodeInstructions struct {
	Compressors []compressor
	Sizes       []int
	Offsets     []int
}

func parseDecodeInstructions(b []byte) (*decodeInstructions, error) {
	var result decodeInstructions
	for rest := b; len(rest) > 0; {
		s, err := readSection(rest)
		if err != nil {
			return nil, err
		}
		rest = rest[s.Size:]

		switch s.Type {
		case sectionTypeChunkCompressorTable:
			result.Compressors = make([]compressor, len(s.Data))
			for idx, c := range s.Data {
				result.Compressors[idx] = compressor(c)
			}
		case sectionTypeChunkSizeTable:
			if result.Sizes, err = readUint32Table(s.Data); err != nil {
				return nil, err
			}
		case sectionTypeChunkOffsetTable:
			if result.Offsets, err = readUint32Table(s.Data); err != nil {
				return nil, err
			}
		}
	}

	chunkCount := len(result.Compressors)
	switch {
	case chunkCount == 0:
		return nil, ErrBadFrame{Reason: "decode instructions define no chunks"}
	case len(result.Sizes) != chunkCount:
		return nil, ErrBadFrame{Reason: fmt.Sprintf("%d chunk compressors, but %d chunk sizes", chunkCount, len(result.Sizes))}
	case result.Offsets != nil && len(result.Offsets) != chunkCount:
		return nil, ErrBadFrame{Reason: fmt.Sprintf("%d chunk compressors, but %d chunk offsets", chunkCount, len(result.Offsets))}
	}
	return &result, nil
}

func readUint32Table(b []byte) ([]int, error) {
	if len(b)%4 != 0 {
		return nil, ErrBadFrame{Reason: "the length of a chunk table is not a multiple of 4"}
	}
	result := make([]int, len(b)/4)
	for idx := range result {
		result[idx] = int(binary.LittleEndian.Uint32(b[idx*4:]))
	}
	return result, nil
}

// buildChunks resolves the decode instructions against the frame data,
// computing where each chunk is read from and written to.
func (instr *decodeInstructions) buildChunks(frameData []byte, dstSize int) ([]chunk, int, error) {
	chunks := make([]chunk, len(instr.Compressors))
	srcOffset, dstOffset := 0, 0
	for idx := range chunks {
		if instr.Offsets != nil {
			srcOffset = instr.Offsets[idx]
		}
		size := instr.Sizes[idx]
		if srcOffset < 0 || size < 0 || srcOffset+size > len(frameData) {
			return nil, 0, ErrBadFrame{Reason: fmt.Sprintf("chunk #%d is out of the frame data bounds", idx)}
		}
		c := chunk{
			Compressor: instr.Compressors[idx],
			Src:        frameData[srcOffset : srcOffset+size],
			DstOffset:  dstOffset,
		}
		switch c.Compressor {
		case compressorNone:
			c.DstSize = size
		case compressorSnappy:
			n, err := snappyDecodedLen(c.Src)
			if err != nil {
				return nil, 0, err
			}
			c.DstSize = n
		default:
			return nil, 0, ErrBadFrame{Reason: fmt.Sprintf("chunk #%d uses an unknown compressor 0x%X", idx, byte(c.Compressor))}
		}
		chunks[idx] = c
		srcOffset += size
		dstOffset += c.DstSize
	}
	if dstOffset > dstSize {
		return nil, 0, ErrBufferTooSmall{Required: dstOffset, Available: dstSize}
	}
	return chunks, dstOffset, nil
}

func (d *Decoder) decodeChunked(
	ctx context.Context,
	src []byte,
	dst []byte,
) (int, error) {
	container, err := readSection(src)
	if err != nil {
		return 0, err
	}
	if container.Type != sectionTypeDecodeInstructionsContainer {
		return 0, ErrBadFrame{Reason: fmt.Sprintf("expected a decode instructions container, got section type 0x%02X", container.Type)}
	}
	instr, err := parseDecodeInstructions(container.Data)
	if err != nil {
		return 0, err
	}
	chunks, total, err := instr.buildChunks(src[container.Size:], len(dst))
	if err != nil {
		return 0, err
	}

	if d.Parallelism < 2 || len(chunks) < 2 {
		for idx := range chunks {
			if err := chunks[idx].decode(dst); err != nil {
				return 0, fmt.Errorf("chunk #%d: %w", idx, err)
			}
		}
		return total, nil
	}

	logger.Tracef(ctx, "decoding %d chunks with parallelism %d", len(chunks), d.Parallelism)
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, d.Parallelism)
	var wg sync.WaitGroup
	for idx := range chunks {
		sem <- struct{}{}
		wg.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[idx] = chunks[idx].decode(dst)
		})
	}
	wg.Wait()
	for idx, err := range errs {
		if err != nil {
			return 0, fmt.Errorf("chunk #%d: %w", idx, err)
		}
	}
	return total, nil
}

func (c *chunk) decode(dst []byte) error {
	out := dst[c.DstOffset : c.DstOffset+c.DstSize]
	switch c.Compressor {
	case compressorNone:
		copy(out, c.Src)
		return nil
	case compressorSnappy:
		_, err := decodeSnappy(c.Src, out)
		return err
	}
	return ErrBadFrame{Reason: fmt.Sprintf("unknown chunk compressor 0x%X", byte(c.Compressor))}
}
