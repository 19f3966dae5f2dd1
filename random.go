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
	"math/rand"
	"time"
)

// Random is a seeded pseudo random source. Each filter that needs randomness
// owns its own instance so simulation runs are reproducible per stage.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Float returns a uniform sample in [0, 1).
func (r *Random) Float() float32 {
	return r.rng.Float32()
}

// Gaussian returns a normally distributed duration with the given mean and
// standard deviation. The result may be negative.
func (r *Random) Gaussian(mean, stddev time.Duration) time.Duration {
	return mean + time.Duration(r.rng.NormFloat64()*float64(stddev))
}
