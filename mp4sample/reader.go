// reader.go implements reading Hap samples out of an MP4 file.

package mp4sample

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/xaionaro-go/hapdxt/frame"
	"github.com/xaionaro-go/hapdxt/logger"
)

type Reader struct {
	File  *mp4.File
	Track *Track
}

// NewReader parses the whole MP4 file and selects its video track.
func NewReader(
	ctx context.Context,
	r io.ReadSeeker,
) (_ret *Reader, _err error) {
	logger.Tracef(ctx, "NewReader")
	defer func() { logger.Tracef(ctx, "/NewReader: %v %v", _ret, _err) }()

	f, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode the MP4 file: %w", err)
	}
	track, err := FindTrack(f)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "selected %s", track)
	return &Reader{
		File:  f,
		Track: track,
	}, nil
}

func (r *Reader) String() string {
	return fmt.Sprintf("MP4Reader(%s)", r.Track)
}

func (r *Reader) trex() *mp4.TrexBox {
	moov := moovOf(r.File)
	if moov == nil || moov.Mvex == nil {
		return nil
	}
	for _, trex := range moov.Mvex.Trexs {
		if trex.TrackID == r.Track.TrackID {
			return trex
		}
	}
	return nil
}

// ForEachSample calls callback for every sample of the track in decode
// order. The sample passed holds one reference owned by the callback.
//
// Iteration stops at the first error returned by the callback.
func (r *Reader) ForEachSample(
	ctx context.Context,
	callback func(*frame.RawSample) error,
) (_err error) {
	logger.Tracef(ctx, "ForEachSample")
	defer func() { logger.Tracef(ctx, "/ForEachSample: %v", _err) }()

	if !r.File.IsFragmented() {
		return ErrNotFragmented{}
	}
	trex := r.trex()

	for _, seg := range r.File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != r.Track.TrackID {
					continue
				}

				var decodeTime uint64
				if traf.Tfdt != nil {
					decodeTime = traf.Tfdt.BaseMediaDecodeTime()
				}

				fullSamples, err := frag.GetFullSamples(trex)
				if err != nil {
					return fmt.Errorf("unable to get the samples of track %d: %w", r.Track.TrackID, err)
				}
				for _, fs := range fullSamples {
					if err := ctx.Err(); err != nil {
						return err
					}
					sample := frame.NewRawSample(r.Track.CodecSubtype, r.Track.Resolution, fs.Data)
					sample.Timestamp = r.duration(decodeTime)
					sample.Duration = r.duration(uint64(fs.Dur))
					decodeTime += uint64(fs.Dur)
					if err := callback(sample); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// ReadSamples returns all the samples of the track.
func (r *Reader) ReadSamples(ctx context.Context) ([]*frame.RawSample, error) {
	var samples []*frame.RawSample
	err := r.ForEachSample(ctx, func(s *frame.RawSample) error {
		samples = append(samples, s)
		return nil
	})
	if err != nil {
		for _, s := range samples {
			s.Release(ctx)
		}
		return nil, err
	}
	return samples, nil
}

func (r *Reader) duration(ticks uint64) time.Duration {
	return time.Duration(ticks) * time.Second / time.Duration(r.Track.Timescale)
}
