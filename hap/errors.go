// errors.go defines the errors reported while parsing and decoding Hap frames.

package hap

import (
	"fmt"

	"github.com/xaionaro-go/hapdxt/dxt"
)

type ErrBadFrame struct {
	Reason string
}

func (e ErrBadFrame) Error() string {
	return fmt.Sprintf("bad Hap frame: %s", e.Reason)
}

type ErrUnsupportedFormat struct {
	SectionType byte
}

func (e ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported Hap section type 0x%02X", e.SectionType)
}

type ErrBufferTooSmall struct {
	Required  int
	Available int
}

func (e ErrBufferTooSmall) Error() string {
	return fmt.Sprintf("output buffer is too small: required %d bytes, available %d", e.Required, e.Available)
}

type ErrFormatMismatch struct {
	Expected dxt.TextureFormat
	Actual   dxt.TextureFormat
}

func (e ErrFormatMismatch) Error() string {
	return fmt.Sprintf("the frame carries a %s texture, while %s was expected", e.Actual, e.Expected)
}

type ErrTextureIndexOutOfRange struct {
	Index int
	Count int
}

func (e ErrTextureIndexOutOfRange) Error() string {
	return fmt.Sprintf("texture index %d is out of range, the frame has %d texture(s)", e.Index, e.Count)
}
