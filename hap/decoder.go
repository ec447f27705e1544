// decoder.go implements decoding of Hap frames into DXT texture data.

// Package hap decodes Hap, Hap Alpha and Hap Q video frames into the
// block-compressed texture data they carry.
package hap

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/snappy"
	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/hapdxt/types"
)

// Decoder decodes Hap frames. The zero value is ready to use and decodes
// chunked frames sequentially.
type Decoder struct {
	// Parallelism is the maximal amount of chunks of one frame decompressed
	// concurrently. Values below 2 disable concurrency.
	Parallelism int
}

func NewDecoder(parallelism int) *Decoder {
	return &Decoder{Parallelism: parallelism}
}

func (d *Decoder) String() string {
	return fmt.Sprintf("HapDecoder(parallelism=%d)", d.Parallelism)
}

// DecodeTexture decodes the first texture of the frame into dst, making sure
// it is exactly a pixFmt image of the given (block-aligned) size.
//
// It returns the amount of bytes written into dst.
func (d *Decoder) DecodeTexture(
	ctx context.Context,
	src []byte,
	pixFmt dxt.PixelFormat,
	res types.Resolution,
	dst []byte,
) (_ret int, _err error) {
	logger.Tracef(ctx, "DecodeTexture(ctx, len:%d, %s, %s, cap:%d)", len(src), pixFmt, res, len(dst))
	defer func() {
		logger.Tracef(ctx, "/DecodeTexture(ctx, len:%d, %s, %s, cap:%d): %d %v", len(src), pixFmt, res, len(dst), _ret, _err)
	}()

	expectedSize := dxt.MinBufferSize(pixFmt, res)
	if expectedSize == 0 {
		return 0, fmt.Errorf("unable to decode into pixel format %s of size %s", pixFmt, res)
	}
	if len(dst) < expectedSize {
		return 0, ErrBufferTooSmall{Required: expectedSize, Available: len(dst)}
	}

	written, textureFormat, err := d.Decode(ctx, src, 0, dst[:expectedSize])
	if err != nil {
		return written, err
	}
	if expected := pixFmt.TextureFormat(); textureFormat != expected {
		return written, ErrFormatMismatch{Expected: expected, Actual: textureFormat}
	}
	if written != expectedSize {
		return written, ErrBadFrame{Reason: fmt.Sprintf("decoded %d bytes, while a %s %s image takes %d", written, pixFmt, res, expectedSize)}
	}
	return written, nil
}

// Decode decodes the texture at the given index of a frame into dst.
//
// It returns the amount of bytes written and the texture format of
// the decoded data. The content of dst is undefined if an error is returned.
func (d *Decoder) Decode(
	ctx context.Context,
	src []byte,
	index int,
	dst []byte,
) (int, dxt.TextureFormat, error) {
	s, err := textureSection(src, index)
	if err != nil {
		return 0, dxt.TextureFormatUndefined, err
	}
	textureFormat, err := s.textureFormat()
	if err != nil {
		return 0, dxt.TextureFormatUndefined, err
	}

	var written int
	switch s.compressor() {
	case compressorNone:
		written, err = decodeUncompressed(s.Data, dst)
	case compressorSnappy:
		written, err = decodeSnappy(s.Data, dst)
	case compressorComplex:
		written, err = d.decodeChunked(ctx, s.Data, dst)
	default:
		err = ErrUnsupportedFormat{SectionType: s.Type}
	}
	if err != nil {
		return written, textureFormat, err
	}
	return written, textureFormat, nil
}

func decodeUncompressed(src, dst []byte) (int, error) {
	if len(src) > len(dst) {
		return 0, ErrBufferTooSmall{Required: len(src), Available: len(dst)}
	}
	return copy(dst, src), nil
}

func snappyDecodedLen(src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, ErrBadFrame{Reason: fmt.Sprintf("unable to read the snappy header: %v", err)}
	}
	return n, nil
}

func decodeSnappy(src, dst []byte) (int, error) {
	n, err := snappyDecodedLen(src)
	if err != nil {
		return 0, err
	}
	if n > len(dst) {
		return 0, ErrBufferTooSmall{Required: n, Available: len(dst)}
	}
	out, err := snappy.Decode(dst[:n], src)
	if err != nil {
		return 0, ErrBadFrame{Reason: fmt.Sprintf("unable to decompress snappy data: %v", err)}
	}
	return len(out), nil
}
