// fourcc.go defines the FourCC type used for codec and pixel-format tags.

// Package types provides common types shared across the hapdxt packages.
package types

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// FourCC is a four-character code stored big-endian, the way QuickTime
// writes codec subtypes and CoreVideo pixel formats ('Hap1' == 0x48617031).
type FourCC uint32

func NewFourCC(s string) FourCC {
	if len(s) != 4 {
		panic(fmt.Errorf("a FourCC must be exactly 4 bytes long, got %q", s))
	}
	return FourCC(binary.BigEndian.Uint32([]byte(s)))
}

func ParseFourCC(s string) (FourCC, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("unable to parse FourCC from %q: expected 4 bytes, got %d", s, len(s))
	}
	return FourCC(binary.BigEndian.Uint32([]byte(s))), nil
}

func (c FourCC) Bytes() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return b
}

func (c FourCC) String() string {
	b := c.Bytes()
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			return fmt.Sprintf("0x%08X", uint32(c))
		}
	}
	return string(b[:])
}

func (c FourCC) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *FourCC) UnmarshalText(b []byte) error {
	s := string(b)
	if strings.HasPrefix(s, "0x") {
		var v uint32
		if _, err := fmt.Sscanf(s, "0x%X", &v); err != nil {
			return fmt.Errorf("unable to parse FourCC from %q: %w", s, err)
		}
		*c = FourCC(v)
		return nil
	}
	v, err := ParseFourCC(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
