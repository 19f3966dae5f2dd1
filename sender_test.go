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
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/stretchr/testify/require"
)

func TestVideoSenderFrameEmission(t *testing.T) {
	// 320 kbps at 25 fps is 1600 bytes per frame, two packets per frame
	s := NewVideoSender(nil, 25, 320, 0xCAFE, 0)
	require.Equal(t, uint32(40000), s.BytesPerSecond())
	require.Equal(t, uint32(320), s.CapacityKbps())

	var packets Packets
	s.RunFor(time.Second, &packets)

	// frames at 0ms, 40ms, ..., 1000ms inclusive
	require.Len(t, packets, 26*2)
	require.True(t, IsTimeSorted(packets))

	var frameBytes uint32
	for i, packet := range packets {
		require.LessOrEqual(t, packet.PayloadSize(), s.MaxPayloadSizeBytes())
		require.Equal(t, uint32(0xCAFE), packet.Header().SSRC)
		require.Equal(t, uint16(i+1), packet.Header().SequenceNumber)
		frameBytes += packet.PayloadSize()
		if packet.Header().Marker {
			require.Equal(t, uint32(1600), frameBytes)
			frameBytes = 0
		}
	}
}

func TestVideoSenderFragmentation(t *testing.T) {
	// 2500 bytes per frame fragments as 1000 + 1000 + 500
	s := NewVideoSender(nil, 10, 200, 1, 0)

	var packets Packets
	s.RunFor(0, &packets)

	require.Len(t, packets, 3)
	require.Equal(t, uint32(1000), packets[0].PayloadSize())
	require.Equal(t, uint32(1000), packets[1].PayloadSize())
	require.Equal(t, uint32(500), packets[2].PayloadSize())
	require.False(t, packets[0].Header().Marker)
	require.True(t, packets[2].Header().Marker)
}

func TestVideoSenderFirstFrameOffset(t *testing.T) {
	s := NewVideoSender(nil, 10, 80, 1, 0.5)

	// nothing before the offset first frame
	var packets Packets
	s.RunFor(40*time.Millisecond, &packets)
	require.Empty(t, packets)

	s.RunFor(20*time.Millisecond, &packets)
	require.NotEmpty(t, packets)
	require.Equal(t, 50*time.Millisecond, packets[0].SendTime())
}

func TestVideoSenderTimestamps(t *testing.T) {
	s := NewVideoSender(nil, 30, 300, 1, 0)

	var packets Packets
	s.RunFor(time.Second, &packets)
	require.NotEmpty(t, packets)

	// 90 kHz media clock
	last := packets[len(packets)-1]
	require.Equal(t, uint32(last.SendTime().Seconds()*90000), last.Header().Timestamp)
}

func TestAdaptiveVideoSenderFeedback(t *testing.T) {
	s := NewAdaptiveVideoSender(nil, 25, 500, 1, 0)
	require.Equal(t, uint32(500), s.CapacityKbps())
	require.Equal(t, time.Second, s.FeedbackInterval())

	s.GiveFeedback(Feedback{EstimatedBitrate: 80_000})

	var packets Packets
	s.RunFor(0, &packets)
	require.Equal(t, uint32(80), s.CapacityKbps())
}

func TestAdaptiveVideoSenderClose(t *testing.T) {
	pipeline := NewPipeline()
	s := NewAdaptiveVideoSender(pipeline, 25, 500, 1, 0)

	var packets Packets
	pipeline.RunFor(time.Second, &packets)
	require.NotEmpty(t, packets)

	// closing removes the registered wrapper, not the embedded sender
	s.Close()
	packets = packets[:0]
	pipeline.RunFor(time.Second, &packets)
	require.Empty(t, packets)
}

func TestFeedbackFromREMB(t *testing.T) {
	feedback := FeedbackFromREMB(&rtcp.ReceiverEstimatedMaximumBitrate{Bitrate: 250_000})
	require.Equal(t, uint32(250_000), feedback.EstimatedBitrate)
}
