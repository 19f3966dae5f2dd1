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
	"slices"
	"time"
)

// PacketProcessor is one impairment stage of a simulation pipeline.
type PacketProcessor interface {
	// RunFor advances the stage by elapsed simulation time, consuming packets
	// from and producing packets into the shared sequence in place. The
	// outgoing sequence must be sorted on send time; ReorderFilter is the one
	// stage exempted from that contract. elapsed is advisory, stages driven
	// purely by packet timestamps ignore it.
	//
	// Stages are invoked strictly sequentially by a single driver goroutine
	// and are not safe for concurrent use.
	RunFor(elapsed time.Duration, packets *Packets)
}

// PacketProcessorListener is implemented by whatever owns the running
// pipeline. Processors announce themselves on construction so the owner can
// drive them without wiring each stage by hand.
type PacketProcessorListener interface {
	AddPacketProcessor(processor PacketProcessor)
	RemovePacketProcessor(processor PacketProcessor)
}

// Pipeline owns an ordered set of processors and drives them in series over
// one shared packet sequence. It implements PacketProcessorListener so stage
// constructors can register themselves directly.
type Pipeline struct {
	processors []PacketProcessor
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) AddPacketProcessor(processor PacketProcessor) {
	p.processors = append(p.processors, processor)
}

func (p *Pipeline) RemovePacketProcessor(processor PacketProcessor) {
	p.processors = slices.DeleteFunc(p.processors, func(existing PacketProcessor) bool {
		return existing == processor
	})
}

// RunFor runs one simulation step of elapsed time across all stages in
// registration order.
func (p *Pipeline) RunFor(elapsed time.Duration, packets *Packets) {
	for _, processor := range p.processors {
		processor.RunFor(elapsed, packets)
	}
}

type processorBase struct {
	listener PacketProcessorListener
}

func newProcessorBase(listener PacketProcessorListener, self PacketProcessor) processorBase {
	if listener != nil {
		listener.AddPacketProcessor(self)
	}
	return processorBase{listener: listener}
}

func (b *processorBase) close(self PacketProcessor) {
	if b.listener != nil {
		b.listener.RemovePacketProcessor(self)
	}
}
