package types

import (
	"fmt"
	"math"
)

type Resolution struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r *Resolution) Parse(s string) error {
	_, err := fmt.Sscanf(s, "%dx%d", &r.Width, &r.Height)
	if err != nil {
		return fmt.Errorf("unable to parse resolution '%s': %w", s, err)
	}
	return nil
}

func (r Resolution) IsZero() bool {
	return r.Width == 0 || r.Height == 0
}

// ErrResolutionOverflow means an aligned dimension does not fit into uint32.
type ErrResolutionOverflow struct {
	Resolution Resolution
	Align      uint32
}

func (e ErrResolutionOverflow) Error() string {
	return fmt.Sprintf("resolution %s aligned to %d does not fit into 32 bits", e.Resolution, e.Align)
}

// AlignUp rounds both dimensions up to the nearest multiple of align.
func (r Resolution) AlignUp(align uint32) (Resolution, error) {
	if align == 0 {
		return Resolution{}, fmt.Errorf("the alignment must be positive")
	}
	width, height := alignUp(r.Width, align), alignUp(r.Height, align)
	if width > math.MaxUint32 || height > math.MaxUint32 {
		return Resolution{}, ErrResolutionOverflow{Resolution: r, Align: align}
	}
	return Resolution{
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}

func alignUp(v, align uint32) uint64 {
	return (uint64(v) + uint64(align) - 1) / uint64(align) * uint64(align)
}
