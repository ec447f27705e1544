package mp4sample

import (
	"fmt"
)

type ErrNoVideoTrack struct{}

func (ErrNoVideoTrack) Error() string {
	return "no video track found"
}

type ErrNotFragmented struct{}

func (ErrNotFragmented) Error() string {
	return "only fragmented MP4 files are supported"
}

type ErrTrackNotFound struct {
	TrackID uint32
}

func (e ErrTrackNotFound) Error() string {
	return fmt.Sprintf("track %d is not found", e.TrackID)
}
