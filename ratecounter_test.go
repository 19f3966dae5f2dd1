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

	"github.com/stretchr/testify/require"
)

func TestRateCounterWindow(t *testing.T) {
	f := NewRateCounterFilter(nil, "test")

	packets := make(Packets, 0, 20)
	for i := 0; i < 20; i++ {
		packets = append(packets, NewPacket(time.Duration(i)*100*time.Millisecond, 500, testHeader(uint16(i))))
	}
	f.RunFor(0, &packets)

	// packets pass through untouched
	require.Len(t, packets, 20)
	require.True(t, IsTimeSorted(packets))

	// at t=1.9s the window spans [0.9s, 1.9s], eleven packets
	require.Equal(t, uint32(11), f.PacketsPerSecond())
	require.Equal(t, uint32(11*500*8), f.BitsPerSecond())
}

func TestRateCounterEviction(t *testing.T) {
	f := NewRateCounterFilter(nil, "test")

	packets := Packets{NewPacket(0, 100, testHeader(0))}
	f.RunFor(0, &packets)
	require.Equal(t, uint32(1), f.PacketsPerSecond())

	// a packet far in the future evicts everything before it
	packets = Packets{NewPacket(time.Minute, 100, testHeader(1))}
	f.RunFor(0, &packets)
	require.Equal(t, uint32(1), f.PacketsPerSecond())
	require.Equal(t, uint32(100*8), f.BitsPerSecond())
}

func TestRateCounterLogStats(t *testing.T) {
	f := NewRateCounterFilter(nil, "test")

	packets := makeTestPackets(10, 10*time.Millisecond)
	f.RunFor(0, &packets)

	// observability only, never mutates the stream
	f.LogStats()
	require.Len(t, packets, 10)
}
