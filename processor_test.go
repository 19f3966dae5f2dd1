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

func TestPipelineRegistration(t *testing.T) {
	pipeline := NewPipeline()

	delay := NewDelayFilter(pipeline)
	delay.SetDelay(10 * time.Millisecond)

	packets := makeTestPackets(5, time.Millisecond)
	pipeline.RunFor(0, &packets)
	require.Equal(t, 10*time.Millisecond, packets[0].SendTime())

	// a closed processor is no longer driven
	delay.Close()
	packets = makeTestPackets(5, time.Millisecond)
	pipeline.RunFor(0, &packets)
	require.Equal(t, time.Duration(0), packets[0].SendTime())
}

func TestPipelineOrdering(t *testing.T) {
	pipeline := NewPipeline()

	NewVideoSender(pipeline, 30, 500, 1, 0)
	choke := NewChokeFilter(pipeline)
	choke.SetCapacity(400)
	loss := NewLossFilter(pipeline, testSeed)
	loss.SetLoss(10)
	delay := NewDelayFilter(pipeline)
	delay.SetDelay(50 * time.Millisecond)
	jitter := NewJitterFilter(pipeline, testSeed+1)
	jitter.SetJitter(20 * time.Millisecond)

	var packets Packets
	for step := 0; step < 50; step++ {
		pipeline.RunFor(100*time.Millisecond, &packets)
		require.True(t, IsTimeSorted(packets))
		packets = packets[:0]
	}
}

func TestPipelineReorderException(t *testing.T) {
	pipeline := NewPipeline()

	NewVideoSender(pipeline, 30, 1000, 1, 0)
	reorder := NewReorderFilter(pipeline, testSeed)
	reorder.SetReorder(50)

	sorted := true
	var packets Packets
	for step := 0; step < 20; step++ {
		pipeline.RunFor(100*time.Millisecond, &packets)
		sorted = sorted && IsTimeSorted(packets)
		packets = packets[:0]
	}
	require.False(t, sorted)
}
