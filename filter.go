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
)

// LossFilter drops packets at random with a configured probability. Surviving
// packets pass through untouched, in order.
type LossFilter struct {
	processorBase
	random       *Random
	lossFraction float32
}

func NewLossFilter(listener PacketProcessorListener, seed int64) *LossFilter {
	f := &LossFilter{
		random: NewRandom(seed),
	}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

// SetLoss sets the drop probability as a percentage, clamped to [0, 100].
func (f *LossFilter) SetLoss(lossPercent float32) {
	f.lossFraction = min(max(lossPercent, 0.0), 100.0) / 100.0
}

func (f *LossFilter) RunFor(_ time.Duration, packets *Packets) {
	survivors := (*packets)[:0]
	for _, packet := range *packets {
		if f.random.Float() >= f.lossFraction {
			survivors = append(survivors, packet)
		}
	}
	*packets = survivors
}

func (f *LossFilter) Close() {
	f.close(f)
}

// DelayFilter adds a fixed delay to every packet. Emitted send times are
// clamped to be non-decreasing, so a fixed delay alone can never reorder an
// already sorted sequence.
type DelayFilter struct {
	processorBase
	delay        time.Duration
	lastSendTime time.Duration
}

func NewDelayFilter(listener PacketProcessorListener) *DelayFilter {
	f := &DelayFilter{}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

func (f *DelayFilter) SetDelay(delay time.Duration) {
	f.delay = delay
}

func (f *DelayFilter) RunFor(_ time.Duration, packets *Packets) {
	for _, packet := range *packets {
		f.lastSendTime = max(f.lastSendTime, packet.SendTime()+f.delay)
		packet.SetSendTime(f.lastSendTime)
	}
}

func (f *DelayFilter) Close() {
	f.close(f)
}

// JitterFilter adds a normally distributed per-packet delay. Negative samples
// are absorbed by the same monotonic clamp DelayFilter uses, keeping the
// output time sorted at the cost of strict Gaussian fidelity.
type JitterFilter struct {
	processorBase
	random       *Random
	stddevJitter time.Duration
	lastSendTime time.Duration
}

func NewJitterFilter(listener PacketProcessorListener, seed int64) *JitterFilter {
	f := &JitterFilter{
		random: NewRandom(seed),
	}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

func (f *JitterFilter) SetJitter(stddevJitter time.Duration) {
	f.stddevJitter = stddevJitter
}

func (f *JitterFilter) RunFor(_ time.Duration, packets *Packets) {
	for _, packet := range *packets {
		jitter := f.random.Gaussian(0, f.stddevJitter)
		f.lastSendTime = max(f.lastSendTime, packet.SendTime()+jitter)
		packet.SetSendTime(f.lastSendTime)
	}
}

func (f *JitterFilter) Close() {
	f.close(f)
}

// ReorderFilter swaps adjacent packets with a configured probability. It is
// the only stage permitted to break the time sorted contract; downstream
// stages must tolerate locally unsorted input when reordering is enabled.
type ReorderFilter struct {
	processorBase
	random          *Random
	reorderFraction float32
}

func NewReorderFilter(listener PacketProcessorListener, seed int64) *ReorderFilter {
	f := &ReorderFilter{
		random: NewRandom(seed),
	}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

// SetReorder sets the probability that a packet swaps places with its
// immediate predecessor, as a percentage clamped to [0, 100].
func (f *ReorderFilter) SetReorder(reorderPercent float32) {
	f.reorderFraction = min(max(reorderPercent, 0.0), 100.0) / 100.0
}

func (f *ReorderFilter) RunFor(_ time.Duration, packets *Packets) {
	for i := 1; i < len(*packets); i++ {
		if f.random.Float() < f.reorderFraction {
			(*packets)[i-1], (*packets)[i] = (*packets)[i], (*packets)[i-1]
		}
	}
}

func (f *ReorderFilter) Close() {
	f.close(f)
}

// ChokeFilter models a capacity limited link with an infinite queue. Packets
// are serviced FIFO at the configured rate; a packet whose queuing delay
// would exceed the configured maximum is dropped instead of delayed further.
type ChokeFilter struct {
	processorBase
	capacityKbps   uint32
	maxDelay       time.Duration
	lastSendTime   time.Duration
	droppedPackets uint32
}

func NewChokeFilter(listener PacketProcessorListener) *ChokeFilter {
	f := &ChokeFilter{}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

func (f *ChokeFilter) SetCapacity(kbps uint32) {
	f.capacityKbps = kbps
}

// SetMaxDelay bounds the tolerable queuing delay. Zero means unbounded.
func (f *ChokeFilter) SetMaxDelay(maxDelay time.Duration) {
	f.maxDelay = maxDelay
}

// DroppedPackets returns the number of packets dropped for exceeding the
// maximum queuing delay.
func (f *ChokeFilter) DroppedPackets() uint32 {
	return f.droppedPackets
}

func (f *ChokeFilter) RunFor(_ time.Duration, packets *Packets) {
	if f.capacityKbps == 0 {
		// not configured, unlimited link
		return
	}
	survivors := (*packets)[:0]
	for _, packet := range *packets {
		// integer millisecond serialization time, floor division
		serviceTime := time.Duration(uint64(packet.PayloadSize())*8/uint64(f.capacityKbps)) * time.Millisecond
		newSendTime := max(packet.SendTime(), f.lastSendTime+serviceTime)
		f.lastSendTime = newSendTime
		if f.maxDelay > 0 && newSendTime-packet.SendTime() > f.maxDelay {
			f.droppedPackets++
			getLogger().Debug("choke filter dropped packet",
				"sequenceNumber", packet.Header().SequenceNumber,
				"queuingDelay", newSendTime-packet.SendTime(),
			)
			continue
		}
		packet.SetSendTime(newSendTime)
		survivors = append(survivors, packet)
	}
	*packets = survivors
}

func (f *ChokeFilter) Close() {
	f.close(f)
}
