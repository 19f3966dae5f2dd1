// Copyright 2025 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package netsim

import (
	"time"

	"github.com/gammazero/deque"
	"github.com/go-logr/logr"
	protoLogger "github.com/livekit/protocol/logger"

	"github.com/livekit/netsim-go/pkg/stats"
)

const rateCounterWindowSize = time.Second

// RateCounterOption configures a RateCounterFilter.
type RateCounterOption func(f *RateCounterFilter)

func WithRateCounterLogger(l protoLogger.Logger) RateCounterOption {
	return func(f *RateCounterFilter) {
		f.logger = l
	}
}

// RateCounterFilter observes throughput over a one second sliding window.
// It never drops or delays packets.
type RateCounterFilter struct {
	processorBase
	name   string
	logger protoLogger.Logger

	packetsPerSecond uint32
	bytesPerSecond   uint32
	window           *deque.Deque[*Packet]

	ppsStats  *stats.Stats[float64]
	kbpsStats *stats.Stats[float64]
}

func NewRateCounterFilter(listener PacketProcessorListener, name string, opts ...RateCounterOption) *RateCounterFilter {
	f := &RateCounterFilter{
		name:      name,
		logger:    protoLogger.LogRLogger(logr.Discard()),
		window:    new(deque.Deque[*Packet]),
		ppsStats:  stats.New[float64](),
		kbpsStats: stats.New[float64](),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

func (f *RateCounterFilter) PacketsPerSecond() uint32 { return f.packetsPerSecond }

func (f *RateCounterFilter) BitsPerSecond() uint32 { return f.bytesPerSecond * 8 }

func (f *RateCounterFilter) RunFor(_ time.Duration, packets *Packets) {
	for _, packet := range *packets {
		f.window.PushBack(packet)
		f.packetsPerSecond++
		f.bytesPerSecond += packet.PayloadSize()
		for f.window.Len() > 0 && packet.SendTime()-f.window.Front().SendTime() > rateCounterWindowSize {
			evicted := f.window.PopFront()
			f.packetsPerSecond--
			f.bytesPerSecond -= evicted.PayloadSize()
		}
	}
}

// LogStats pushes the current window rates into the running accumulators and
// logs a summary line.
func (f *RateCounterFilter) LogStats() {
	f.ppsStats.Push(float64(f.packetsPerSecond))
	f.kbpsStats.Push(float64(f.BitsPerSecond()) / 1000.0)
	f.logger.Infow("rate counter stats",
		"name", f.name,
		"packetsPerSecond", f.packetsPerSecond,
		"bitsPerSecond", f.BitsPerSecond(),
		"meanKbps", f.kbpsStats.Mean(),
		"maxKbps", f.kbpsStats.Max(),
	)
}

func (f *RateCounterFilter) Close() {
	f.close(f)
}
