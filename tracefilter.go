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
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrEmptyTrace = errors.New("trace contains no timestamps")

// TraceBasedDeliveryFilter schedules packet delivery from a recorded trace of
// link availability times instead of a formula. When the trace runs out it
// wraps around, offset by the elapsed simulated time, producing an unbounded
// periodic delivery schedule.
type TraceBasedDeliveryFilter struct {
	processorBase
	deliveryTimes []time.Duration
	next          int
	localTime     time.Duration
}

func NewTraceBasedDeliveryFilter(listener PacketProcessorListener) *TraceBasedDeliveryFilter {
	f := &TraceBasedDeliveryFilter{}
	f.processorBase = newProcessorBase(listener, f)
	return f
}

// Init loads a trace file containing ascending nanosecond timestamps, one per
// line, each marking a time the link becomes free to accept another packet.
// The filter is unusable until a valid trace has been loaded.
func (f *TraceBasedDeliveryFilter) Init(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open trace: %w", err)
	}
	defer file.Close()

	var deliveryTimes []time.Duration
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ns, err := strconv.ParseInt(line, 10, 64)
		if err != nil || ns < 0 {
			return fmt.Errorf("malformed trace entry %q", line)
		}
		deliveryTimes = append(deliveryTimes, time.Duration(ns))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read trace: %w", err)
	}
	if len(deliveryTimes) == 0 {
		return ErrEmptyTrace
	}

	f.deliveryTimes = deliveryTimes
	f.next = 0
	f.localTime = 0
	return nil
}

func (f *TraceBasedDeliveryFilter) RunFor(_ time.Duration, packets *Packets) {
	if len(f.deliveryTimes) == 0 {
		return
	}
	for _, packet := range *packets {
		f.proceedToNextSlot()
		packet.SetSendTime(f.localTime)
	}
}

func (f *TraceBasedDeliveryFilter) proceedToNextSlot() {
	if f.deliveryTimes[f.next] <= f.localTime {
		f.next++
		if f.next == len(f.deliveryTimes) {
			// trace exhausted, replay it offset by the elapsed simulated time
			for i := range f.deliveryTimes {
				f.deliveryTimes[i] += f.localTime
			}
			f.next = 0
		}
	}
	f.localTime = f.deliveryTimes[f.next]
}

func (f *TraceBasedDeliveryFilter) Close() {
	f.close(f)
}
