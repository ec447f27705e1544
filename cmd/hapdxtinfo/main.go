package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/hapdxt/frame"
	"github.com/xaionaro-go/hapdxt/hap"
	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/hapdxt/mp4sample"
	"github.com/xaionaro-go/hapdxt/pool"
	"github.com/xaionaro-go/observability"
	"gopkg.in/yaml.v3"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags] <file.mp4>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "a YAML file with the decoding output configuration")
	workers := pflag.Uint("workers", 0, "the amount of frames decoded concurrently (0 means the amount of CPUs)")
	parallelism := pflag.Int("parallelism", runtime.NumCPU(), "the amount of chunks of one frame decompressed concurrently")
	dumpDir := pflag.String("dump-dir", "", "a directory to write the decoded DXT textures to")
	pflag.Parse()
	if len(pflag.Args()) != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	logger.SetDefault(func() logger.Logger {
		return l
	})
	defer belt.Flush(ctx)

	cfg := frame.DefaultOutputConfig()
	if *configPath != "" {
		b, err := os.ReadFile(*configPath)
		if err != nil {
			l.Fatal(err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			l.Fatalf("unable to parse config '%s': %v", *configPath, err)
		}
	}
	l.Debugf("config: %s", spew.Sdump(cfg))

	input, err := os.Open(pflag.Arg(0))
	if err != nil {
		l.Fatal(err)
	}
	defer input.Close()

	reader, err := mp4sample.NewReader(ctx, input)
	if err != nil {
		l.Fatal(err)
	}
	fmt.Printf("track: %s\n", reader.Track)

	samples, err := reader.ReadSamples(ctx)
	if err != nil {
		l.Fatal(err)
	}

	buffers := pool.NewBuffers()
	output := frame.NewOutput(
		hap.NewDecoder(*parallelism),
		frame.OptionConfig(cfg),
		frame.OptionWorkers(*workers),
		frame.OptionAllocFrameFunc(func(ctx context.Context, sample frame.Sample) (*frame.Frame, error) {
			return newPooledFrame(ctx, buffers, sample)
		}),
	)

	observability.Go(ctx, func(ctx context.Context) {
		for _, sample := range samples {
			if err := output.SendSample(ctx, sample); err != nil {
				l.Errorf("unable to send a sample: %v", err)
				cancelFn()
				return
			}
		}
	})
	observability.Go(ctx, func(ctx context.Context) {
		if err := output.Serve(ctx); err != nil {
			l.Error(err)
			cancelFn()
		}
	})

receiveLoop:
	for idx := range samples {
		var result frame.DecodeResult
		select {
		case <-ctx.Done():
			break receiveLoop
		case r, ok := <-output.OutputChan():
			if !ok {
				break receiveLoop
			}
			result = r
		}
		printResult(idx, result)
		if result.Frame != nil && *dumpDir != "" {
			if err := dumpFrame(*dumpDir, idx, result.Frame); err != nil {
				l.Error(err)
			}
		}
		if result.Frame != nil {
			result.Frame.Release(ctx)
		}
		if s, ok := result.Sample.(*frame.RawSample); ok {
			s.Release(ctx)
		}
	}
	if err := output.Close(ctx); err != nil {
		l.Error(err)
	}

	stats := output.GetStats()
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		l.Fatal(err)
	}
	fmt.Printf("stats: %s\n", statsJSON)
	fmt.Printf(
		"read %s, decoded %s into %d frames\n",
		humanize.Bytes(stats.BytesRead),
		humanize.Bytes(stats.BytesDecoded),
		stats.FramesDecoded,
	)
	bufStats := buffers.GetStats()
	fmt.Printf("buffers: allocated %d, requested %d, freed %d\n", bufStats.Allocated, bufStats.Requested, bufStats.Freed)
}

type pooledBuffer struct {
	buffers *pool.Buffers
	buf     []byte
}

func (p pooledBuffer) Release(ctx context.Context) {
	p.buffers.Free(ctx, p.buf)
}

func newPooledFrame(
	ctx context.Context,
	buffers *pool.Buffers,
	sample frame.Sample,
) (*frame.Frame, error) {
	f, err := frame.NewEmptyFrame(ctx, sample)
	if err != nil {
		return nil, err
	}
	buf := buffers.Alloc(ctx, f.MinBufferSize())
	if err := f.SetBuffer(ctx, buf, len(buf)); err != nil {
		buffers.Free(ctx, buf)
		f.Release(ctx)
		return nil, err
	}
	f.SetPayload(ctx, pooledBuffer{buffers: buffers, buf: buf})
	return f, nil
}

func printResult(idx int, result frame.DecodeResult) {
	var ts string
	if s, ok := result.Sample.(*frame.RawSample); ok {
		ts = s.Timestamp.String()
	}
	if result.Err != nil {
		fmt.Printf("#%d %s: error: %v\n", idx, ts, result.Err)
		return
	}
	f := result.Frame
	fmt.Printf(
		"#%d %s: %s %s -> %s (%s)\n",
		idx, ts,
		f.CodecSubtype(), f.Resolution(),
		f.TextureFormat(), humanize.Bytes(uint64(len(f.Bytes()))),
	)
}

func dumpFrame(dir string, idx int, f *frame.Frame) error {
	path := filepath.Join(dir, fmt.Sprintf("frame_%06d_%s.dxt", idx, f.PixelFormat()))
	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	return nil
}
