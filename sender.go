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

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"go.uber.org/atomic"
)

const (
	maxPayloadSizeBytes = 1000
	videoClockRate      = 90000

	defaultFeedbackInterval = time.Second
)

// Feedback carries a bandwidth estimate back to a sender.
type Feedback struct {
	EstimatedBitrate uint32 // bits per second
}

// FeedbackFromREMB converts a receiver estimated maximum bitrate message
// into sender feedback.
func FeedbackFromREMB(remb *rtcp.ReceiverEstimatedMaximumBitrate) Feedback {
	return Feedback{EstimatedBitrate: uint32(remb.Bitrate)}
}

// PacketSender is a packet source. RunFor produces packets instead of
// transforming them; the incoming sequence is typically empty.
type PacketSender interface {
	PacketProcessor

	// CapacityKbps returns the sender's current emission rate, zero if unknown.
	CapacityKbps() uint32

	// FeedbackInterval is how often the harness should call GiveFeedback,
	// provided a new estimate is available.
	FeedbackInterval() time.Duration
	GiveFeedback(feedback Feedback)
}

// VideoSender emits a frame's worth of bytes every frame period, fragmented
// into packets no larger than maxPayloadSizeBytes, each carrying an RTP
// header with incrementing sequence numbers and a 90 kHz timestamp.
type VideoSender struct {
	processorBase
	fps            float64
	bytesPerSecond uint32
	ssrc           uint32

	framePeriod time.Duration
	nextFrame   time.Duration
	now         time.Duration

	sequenceNumber uint16
}

// NewVideoSender creates a sender running at fps frames per second and kbps
// kilobits per second. firstFrameOffset shifts the first frame into the
// initial frame period as a fraction in [0, 1).
func NewVideoSender(listener PacketProcessorListener, fps float64, kbps uint32, ssrc uint32, firstFrameOffset float64) *VideoSender {
	framePeriod := time.Duration(float64(time.Second) / fps)
	s := &VideoSender{
		fps:            fps,
		bytesPerSecond: 1000 * kbps / 8,
		ssrc:           ssrc,
		framePeriod:    framePeriod,
		nextFrame:      time.Duration(float64(framePeriod) * firstFrameOffset),
	}
	s.processorBase = newProcessorBase(listener, s)
	return s
}

func (s *VideoSender) MaxPayloadSizeBytes() uint32 { return maxPayloadSizeBytes }

func (s *VideoSender) BytesPerSecond() uint32 { return s.bytesPerSecond }

func (s *VideoSender) CapacityKbps() uint32 { return s.bytesPerSecond * 8 / 1000 }

func (s *VideoSender) FeedbackInterval() time.Duration { return defaultFeedbackInterval }

func (s *VideoSender) GiveFeedback(_ Feedback) {}

func (s *VideoSender) RunFor(elapsed time.Duration, packets *Packets) {
	s.now += elapsed
	for s.nextFrame <= s.now {
		s.emitFrame(s.nextFrame, packets)
		s.nextFrame += s.framePeriod
	}
}

func (s *VideoSender) emitFrame(sendTime time.Duration, packets *Packets) {
	remaining := uint32(float64(s.bytesPerSecond) / s.fps)
	timestamp := uint32(sendTime.Seconds() * videoClockRate)
	for remaining > 0 {
		payloadSize := min(remaining, maxPayloadSizeBytes)
		remaining -= payloadSize
		s.sequenceNumber++
		*packets = append(*packets, NewPacket(sendTime, payloadSize, rtp.Header{
			Version:        2,
			Marker:         remaining == 0,
			SSRC:           s.ssrc,
			SequenceNumber: s.sequenceNumber,
			Timestamp:      timestamp,
		}))
	}
}

func (s *VideoSender) Close() {
	s.close(s)
}

// AdaptiveVideoSender adjusts its emission rate from bandwidth estimate
// feedback. Feedback may arrive from a timer goroutine, so the pending
// estimate is held in an atomic and applied on the next RunFor.
type AdaptiveVideoSender struct {
	*VideoSender
	estimatedBitrate atomic.Uint32
}

func NewAdaptiveVideoSender(listener PacketProcessorListener, fps float64, kbps uint32, ssrc uint32, firstFrameOffset float64) *AdaptiveVideoSender {
	s := &AdaptiveVideoSender{
		VideoSender: NewVideoSender(nil, fps, kbps, ssrc, firstFrameOffset),
	}
	// register the wrapper so the pipeline dispatches to the adaptive RunFor
	s.processorBase = newProcessorBase(listener, s)
	return s
}

func (s *AdaptiveVideoSender) GiveFeedback(feedback Feedback) {
	s.estimatedBitrate.Store(feedback.EstimatedBitrate)
}

func (s *AdaptiveVideoSender) RunFor(elapsed time.Duration, packets *Packets) {
	if estimate := s.estimatedBitrate.Swap(0); estimate > 0 {
		s.bytesPerSecond = estimate / 8
	}
	s.VideoSender.RunFor(elapsed, packets)
}

func (s *AdaptiveVideoSender) Close() {
	// deregister the wrapper, it is what the pipeline holds
	s.close(s)
}
