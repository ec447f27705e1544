// output.go implements the pipeline stage decoding samples into frames.

package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	"github.com/xaionaro-go/hapdxt/helpers/closuresignaler"
	"github.com/xaionaro-go/hapdxt/logger"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xsync"
)

// DecodeResult is a decoded frame, or the reason why the sample could not
// be decoded. The receiver owns Frame and must Release it.
type DecodeResult struct {
	Sample Sample
	Frame  *Frame
	Err    error
}

// Output turns compressed samples into decoded frames. It is the only
// place frames get decoded at.
//
// Samples may be decoded synchronously with DecodeSample/DecodeFrame, or
// asynchronously by Serve-ing the output and using SendSample and
// OutputChan.
type Output struct {
	Config  OutputConfig
	Decoder BitstreamDecoder

	locker     xsync.Mutex
	isServing  bool
	inputChan  chan Sample
	outputChan chan DecodeResult
	closer     *closuresignaler.ClosureSignaler

	CommonsOutputStatistics
}

func NewOutput(
	decoder BitstreamDecoder,
	opts ...Option,
) *Output {
	cfg := Options(opts).config()
	return &Output{
		Config:     cfg,
		Decoder:    decoder,
		inputChan:  make(chan Sample, cfg.QueueSizeInput),
		outputChan: make(chan DecodeResult, cfg.QueueSizeOutput),
		closer:     closuresignaler.New(),
	}
}

func (o *Output) String() string {
	return fmt.Sprintf("Output(%v)", o.Decoder)
}

func (o *Output) GetStats() *OutputStatistics {
	return ptr(o.CommonsOutputStatistics.Convert())
}

// NewFrame creates the frame to decode the sample into, using the
// configured AllocFrameFunc (or an owned buffer if none is set).
func (o *Output) NewFrame(
	ctx context.Context,
	sample Sample,
) (*Frame, error) {
	if o.Config.AllocFrameFunc == nil {
		return NewFrame(ctx, sample, OptionAllocator(o.Config.Allocator))
	}
	f, err := o.Config.AllocFrameFunc(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate a frame: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("the frame allocation function returned no frame")
	}
	return f, nil
}

// DecodeFrame decodes the frame into its buffer.
//
// Decoding is done once: repeated calls return the result of the first
// attempt. On error the caller must discard the frame.
func (o *Output) DecodeFrame(
	ctx context.Context,
	f *Frame,
) (_err error) {
	logger.Tracef(ctx, "DecodeFrame(ctx, %v)", f)
	defer func() { logger.Tracef(ctx, "/DecodeFrame(ctx, %v): %v", f, _err) }()

	if o.Decoder == nil {
		return fmt.Errorf("no bitstream decoder is set")
	}
	isDecodedNow, err := f.decode(ctx, o.Decoder)
	switch {
	case err == nil:
		if isDecodedNow {
			o.FramesDecoded.Add(1)
			o.BytesDecoded.Add(uint64(f.MinBufferSize()))
		}
	case errors.As(err, &ErrBitstreamDecode{}):
		o.FramesFailed.Add(1)
	default:
		o.FramesRejected.Add(1)
	}
	return err
}

// DecodeSample creates a frame for the sample and decodes it. If anything
// fails the frame is released and only the error is returned.
func (o *Output) DecodeSample(
	ctx context.Context,
	sample Sample,
) (_ret *Frame, _err error) {
	logger.Tracef(ctx, "DecodeSample(ctx, %v)", sample)
	defer func() { logger.Tracef(ctx, "/DecodeSample(ctx, %v): %v %v", sample, _ret, _err) }()

	o.SamplesReceived.Add(1)
	if sample != nil {
		o.BytesRead.Add(uint64(len(sample.Data())))
	}

	f, err := o.NewFrame(ctx, sample)
	if err != nil {
		o.FramesRejected.Add(1)
		return nil, err
	}
	if err := o.DecodeFrame(ctx, f); err != nil {
		f.Release(ctx)
		return nil, err
	}
	return f, nil
}

// SendSample queues the sample for decoding by Serve.
func (o *Output) SendSample(
	ctx context.Context,
	sample Sample,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.closer.CloseChan():
		return ErrClosed{}
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.closer.CloseChan():
		return ErrClosed{}
	case o.inputChan <- sample:
		return nil
	}
}

// OutputChan returns the channel decode results are sent to. It is closed
// when Serve returns.
func (o *Output) OutputChan() <-chan DecodeResult {
	return o.outputChan
}

// Serve decodes the queued samples with Config.Workers workers until
// the context is cancelled or the output is closed.
func (o *Output) Serve(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Serve")
	defer func() { logger.Debugf(ctx, "/Serve: %v", _err) }()

	alreadyServing := xsync.DoR1(noLoggingCtx(ctx), &o.locker, func() bool {
		if o.isServing {
			return true
		}
		o.isServing = true
		return false
	})
	if alreadyServing {
		return fmt.Errorf("%s is already being served", o)
	}
	if o.closer.IsClosed() {
		return ErrClosed{}
	}
	defer close(o.outputChan)

	var wg sync.WaitGroup
	for workerID := uint(0); workerID < o.Config.Workers; workerID++ {
		wg.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer wg.Done()
			o.worker(ctx, workerID)
		})
	}
	wg.Wait()

	select {
	case <-o.closer.CloseChan():
		return nil
	default:
		return ctx.Err()
	}
}

func (o *Output) worker(
	ctx context.Context,
	workerID uint,
) {
	logger.Debugf(ctx, "worker %d started", workerID)
	defer func() { logger.Debugf(ctx, "/worker %d", workerID) }()
	for {
		var sample Sample
		select {
		case <-ctx.Done():
			return
		case <-o.closer.CloseChan():
			return
		case sample = <-o.inputChan:
		}

		f, err := o.DecodeSample(ctx, sample)
		if err != nil {
			errmon.ObserveErrorCtx(ctx, err)
		}
		select {
		case <-ctx.Done():
		case <-o.closer.CloseChan():
		case o.outputChan <- DecodeResult{Sample: sample, Frame: f, Err: err}:
			continue
		}
		if f != nil {
			f.Release(ctx)
		}
		return
	}
}

// Close stops Serve. A frame decoded but not yet received is released
// and dropped.
func (o *Output) Close(ctx context.Context) error {
	if !o.closer.Close(ctx) {
		return ErrClosed{}
	}
	return nil
}
