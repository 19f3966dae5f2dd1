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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/livekit/protocol/logger"
	"github.com/urfave/cli/v2"

	netsim "github.com/livekit/netsim-go"
)

func main() {
	app := &cli.App{
		Name:    "netsim-cli",
		Usage:   "run a parameterized network condition simulation",
		Version: netsim.Version,
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "duration", Value: 10 * time.Second, Usage: "simulated run time"},
			&cli.Float64Flag{Name: "fps", Value: 30, Usage: "sender frame rate"},
			&cli.UintFlag{Name: "bitrate", Value: 500, Usage: "sender bitrate in kbps"},
			&cli.Float64Flag{Name: "loss", Usage: "packet loss percent"},
			&cli.DurationFlag{Name: "delay", Usage: "fixed one-way delay"},
			&cli.DurationFlag{Name: "jitter", Usage: "delay standard deviation"},
			&cli.Float64Flag{Name: "reorder", Usage: "adjacent swap percent"},
			&cli.UintFlag{Name: "capacity", Usage: "link capacity in kbps, 0 for unlimited"},
			&cli.DurationFlag{Name: "max-delay", Usage: "choke queuing delay bound, 0 for unbounded"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed"},
		},
		Action: runSimulation,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
	}
}

func runSimulation(c *cli.Context) error {
	netsim.SetLogger(logger.GetLogger())

	seed := c.Int64("seed")
	pipeline := netsim.NewPipeline()

	netsim.NewVideoSender(pipeline, c.Float64("fps"), uint32(c.Uint("bitrate")), 0x1234, 0)

	var choke *netsim.ChokeFilter
	if capacity := c.Uint("capacity"); capacity > 0 {
		choke = netsim.NewChokeFilter(pipeline)
		choke.SetCapacity(uint32(capacity))
		choke.SetMaxDelay(c.Duration("max-delay"))
	}
	if loss := c.Float64("loss"); loss > 0 {
		f := netsim.NewLossFilter(pipeline, seed)
		f.SetLoss(float32(loss))
	}
	if delay := c.Duration("delay"); delay > 0 {
		f := netsim.NewDelayFilter(pipeline)
		f.SetDelay(delay)
	}
	if jitter := c.Duration("jitter"); jitter > 0 {
		f := netsim.NewJitterFilter(pipeline, seed+1)
		f.SetJitter(jitter)
	}
	if reorder := c.Float64("reorder"); reorder > 0 {
		f := netsim.NewReorderFilter(pipeline, seed+2)
		f.SetReorder(float32(reorder))
	}
	counter := netsim.NewRateCounterFilter(pipeline, "delivered", netsim.WithRateCounterLogger(logger.GetLogger()))

	const step = 100 * time.Millisecond
	duration := c.Duration("duration")

	var packets netsim.Packets
	delivered := 0
	for elapsed := time.Duration(0); elapsed < duration; elapsed += step {
		pipeline.RunFor(step, &packets)
		delivered += len(packets)
		packets = packets[:0]

		if (elapsed+step)%time.Second == 0 {
			counter.LogStats()
		}
	}

	fmt.Printf("delivered %d packets over %v\n", delivered, duration)
	if choke != nil {
		fmt.Printf("choke dropped %d packets\n", choke.DroppedPackets())
	}
	return nil
}
