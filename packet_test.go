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

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

func testHeader(sequenceNumber uint16) rtp.Header {
	return rtp.Header{
		Version:        2,
		SequenceNumber: sequenceNumber,
	}
}

func TestIsTimeSorted(t *testing.T) {
	require.True(t, IsTimeSorted(nil))
	require.True(t, IsTimeSorted(makeTestPackets(10, time.Millisecond)))

	packets := makeTestPackets(10, time.Millisecond)
	packets[3], packets[4] = packets[4], packets[3]
	require.False(t, IsTimeSorted(packets))

	// equal timestamps are still sorted
	packets = Packets{NewTestPacket(time.Millisecond, 0), NewTestPacket(time.Millisecond, 1)}
	require.True(t, IsTimeSorted(packets))
}

func TestPacketSendTime(t *testing.T) {
	packet := NewPacket(time.Second, 1200, testHeader(7))
	require.Equal(t, time.Second, packet.SendTime())
	require.Equal(t, uint32(1200), packet.PayloadSize())
	require.Equal(t, uint16(7), packet.Header().SequenceNumber)

	packet.SetSendTime(2 * time.Second)
	require.Equal(t, 2*time.Second, packet.SendTime())
}
