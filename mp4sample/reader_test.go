package mp4sample

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/hapdxt/frame"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/types"
)

const testTimescale = 600

func buildMP4(
	t *testing.T,
	sampleEntry string,
	width, height uint16,
	samples [][]byte,
) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(testTimescale, "video", "en")
	trak := init.Moov.Trak
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox(sampleEntry, width, height, nil))
	trak.Tkhd.Width = mp4.Fixed32(uint32(width) << 16)
	trak.Tkhd.Height = mp4.Fixed32(uint32(height) << 16)

	frag, err := mp4.CreateFragment(1, trak.Tkhd.TrackID)
	require.NoError(t, err)
	for idx, data := range samples {
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(data)),
				Dur:   testTimescale / 30,
			},
			DecodeTime: uint64(idx * testTimescale / 30),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	require.NoError(t, mp4.NewFtyp("qt  ", 0x200, []string{"qt  ", "isom"}).Encode(&buf))
	require.NoError(t, init.Moov.Encode(&buf))
	require.NoError(t, frag.Encode(&buf))
	return buf.Bytes()
}

func hapSample(texture []byte) []byte {
	l := len(texture)
	return append([]byte{byte(l), byte(l >> 8), byte(l >> 16), 0xAB}, texture...)
}

func TestReaderHap(t *testing.T) {
	ctx := context.Background()

	const width, height = 40, 24
	res := types.Resolution{Width: width, Height: height}
	var payloads [][]byte
	for i := 0; i < 3; i++ {
		texture := bytes.Repeat([]byte{byte(i + 1)}, 10*6*8)
		payloads = append(payloads, hapSample(texture))
	}

	r, err := NewReader(ctx, bytes.NewReader(buildMP4(t, "Hap1", width, height, payloads)))
	require.NoError(t, err)
	require.Equal(t, hap.CodecSubtypeHap, r.Track.CodecSubtype)
	require.Equal(t, res, r.Track.Resolution)
	require.Equal(t, uint32(testTimescale), r.Track.Timescale)

	samples, err := r.ReadSamples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, len(payloads))
	for idx, s := range samples {
		require.Equal(t, payloads[idx], s.Data())
		require.Equal(t, hap.CodecSubtypeHap, s.CodecSubtype())
		require.Equal(t, res, s.Resolution())
		require.Equal(t, time.Duration(idx)*time.Second/30, s.Timestamp)
		require.Equal(t, time.Second/30, s.Duration)
	}

	out := frame.NewOutput(hap.NewDecoder(0))
	for idx, s := range samples {
		f, err := out.DecodeSample(ctx, s)
		require.NoError(t, err)
		require.Equal(t, byte(idx+1), f.Bytes()[0])
		f.Release(ctx)
		s.Release(ctx)
		require.Zero(t, s.RefCount())
	}
}

func TestReaderUnsupportedCodec(t *testing.T) {
	ctx := context.Background()

	r, err := NewReader(ctx, bytes.NewReader(buildMP4(t, "HapA", 16, 16, [][]byte{{1, 2, 3, 4}})))
	require.NoError(t, err)
	require.Equal(t, hap.CodecSubtypeHapAlphaOnly, r.Track.CodecSubtype)

	err = r.ForEachSample(ctx, func(s *frame.RawSample) error {
		defer s.Release(ctx)
		_, err := frame.NewDescriptor(ctx, s)
		return err
	})
	require.ErrorAs(t, err, &frame.ErrUnsupportedCodec{})
}

func TestReaderCallbackError(t *testing.T) {
	ctx := context.Background()
	errStop := errors.New("stop")

	r, err := NewReader(ctx, bytes.NewReader(buildMP4(t, "Hap5", 16, 16, [][]byte{{1}, {2}, {3}})))
	require.NoError(t, err)

	count := 0
	err = r.ForEachSample(ctx, func(s *frame.RawSample) error {
		count++
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	require.Equal(t, 1, count)
}

func TestNewReaderGarbage(t *testing.T) {
	_, err := NewReader(context.Background(), bytes.NewReader([]byte("definitely not an MP4 file")))
	require.Error(t, err)
}
