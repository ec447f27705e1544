package frame

import (
	"context"

	"github.com/xaionaro-go/hapdxt/dxt"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/types"
)

// BitstreamDecoder decompresses the texture of a compressed sample.
//
// DecodeTexture must write a pixFmt image of the given block-aligned size
// into dst and return the amount of bytes written; any error means the
// bitstream is corrupt or truncated.
type BitstreamDecoder interface {
	DecodeTexture(
		ctx context.Context,
		src []byte,
		pixFmt dxt.PixelFormat,
		res types.Resolution,
		dst []byte,
	) (int, error)
}

var _ BitstreamDecoder = (*hap.Decoder)(nil)
