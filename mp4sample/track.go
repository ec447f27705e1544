// track.go locates the Hap video track of an MP4 file.

// Package mp4sample extracts Hap samples from (fragmented) MP4 files.
package mp4sample

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/types"
)

const handlerTypeVideo = "vide"

// Track is a video track with the parameters required to describe its
// samples.
type Track struct {
	TrackID      uint32
	CodecSubtype hap.CodecSubtype
	Resolution   types.Resolution
	Timescale    uint32
}

func (t *Track) String() string {
	return fmt.Sprintf("Track(#%d %s %s 1/%d)", t.TrackID, t.CodecSubtype, t.Resolution, t.Timescale)
}

func moovOf(f *mp4.File) *mp4.MoovBox {
	if f.Init != nil && f.Init.Moov != nil {
		return f.Init.Moov
	}
	return f.Moov
}

// FindTrack returns the first video track, preferring one with a Hap
// sample entry. A non-Hap video track is still returned, it is rejected
// later as an unsupported codec.
func FindTrack(f *mp4.File) (*Track, error) {
	moov := moovOf(f)
	if moov == nil {
		return nil, ErrNoVideoTrack{}
	}

	var fallback *Track
	for _, trak := range moov.Traks {
		track, ok := trackFrom(trak)
		if !ok {
			continue
		}
		if track.CodecSubtype.IsKnown() {
			return track, nil
		}
		if fallback == nil {
			fallback = track
		}
	}
	if fallback == nil {
		return nil, ErrNoVideoTrack{}
	}
	return fallback, nil
}

func trackFrom(trak *mp4.TrakBox) (*Track, bool) {
	if trak.Tkhd == nil || trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return nil, false
	}
	if trak.Mdia.Hdlr.HandlerType != handlerTypeVideo {
		return nil, false
	}

	track := &Track{
		TrackID:   trak.Tkhd.TrackID,
		Timescale: 1000,
		Resolution: types.Resolution{
			Width:  uint32(trak.Tkhd.Width) >> 16,
			Height: uint32(trak.Tkhd.Height) >> 16,
		},
	}
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale != 0 {
		track.Timescale = trak.Mdia.Mdhd.Timescale
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return track, true
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		fourCC, err := types.ParseFourCC(child.Type())
		if err != nil {
			continue
		}
		track.CodecSubtype = hap.CodecSubtype(fourCC)
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width != 0 && vse.Height != 0 {
			track.Resolution = types.Resolution{
				Width:  uint32(vse.Width),
				Height: uint32(vse.Height),
			}
		}
		break
	}
	return track, true
}
