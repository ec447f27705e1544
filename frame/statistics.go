package frame

import (
	"sync/atomic"
)

type OutputStatistics struct {
	SamplesReceived uint64 `json:",omitempty"`
	FramesDecoded   uint64 `json:",omitempty"`
	FramesFailed    uint64 `json:",omitempty"`
	FramesRejected  uint64 `json:",omitempty"`
	BytesRead       uint64 `json:",omitempty"`
	BytesDecoded    uint64 `json:",omitempty"`
}

type CommonsOutputStatistics struct {
	SamplesReceived atomic.Uint64
	FramesDecoded   atomic.Uint64
	FramesFailed    atomic.Uint64
	FramesRejected  atomic.Uint64
	BytesRead       atomic.Uint64
	BytesDecoded    atomic.Uint64
}

func (stats *CommonsOutputStatistics) Convert() OutputStatistics {
	return OutputStatistics{
		SamplesReceived: stats.SamplesReceived.Load(),
		FramesDecoded:   stats.FramesDecoded.Load(),
		FramesFailed:    stats.FramesFailed.Load(),
		FramesRejected:  stats.FramesRejected.Load(),
		BytesRead:       stats.BytesRead.Load(),
		BytesDecoded:    stats.BytesDecoded.Load(),
	}
}
