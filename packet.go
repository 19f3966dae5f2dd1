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

	"github.com/pion/rtp"
)

// Packet is a simulated media packet traveling through a pipeline of
// impairment stages. Only the send time, payload size and RTP header matter
// to the simulation; there is no payload data.
type Packet struct {
	sendTime    time.Duration
	payloadSize uint32
	header      rtp.Header
}

func NewPacket(sendTime time.Duration, payloadSize uint32, header rtp.Header) *Packet {
	return &Packet{
		sendTime:    sendTime,
		payloadSize: payloadSize,
		header:      header,
	}
}

// NewTestPacket creates a minimal packet carrying only a sequence number,
// for harness seeding.
func NewTestPacket(sendTime time.Duration, sequenceNumber uint16) *Packet {
	return &Packet{
		sendTime: sendTime,
		header: rtp.Header{
			Version:        2,
			SequenceNumber: sequenceNumber,
		},
	}
}

// SendTime is the time the packet left the last stage that touched it,
// relative to the start of the simulation.
func (p *Packet) SendTime() time.Duration { return p.sendTime }

func (p *Packet) SetSendTime(sendTime time.Duration) { p.sendTime = sendTime }

func (p *Packet) PayloadSize() uint32 { return p.payloadSize }

func (p *Packet) Header() rtp.Header { return p.header }

// Packets is an ordered packet sequence shared between pipeline stages.
// Stages consume from the front and append to the back in place.
type Packets []*Packet

// IsTimeSorted reports whether the sequence is non-decreasing in send time.
// Every stage except ReorderFilter must leave its output time sorted.
func IsTimeSorted(packets Packets) bool {
	for i := 1; i < len(packets); i++ {
		if packets[i].sendTime < packets[i-1].sendTime {
			return false
		}
	}
	return true
}
