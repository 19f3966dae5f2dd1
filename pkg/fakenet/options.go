package fakenet

import (
	"github.com/benbjohnson/clock"

	"github.com/livekit/protocol/logger"
)

// An Option configures a Pipe
type Option func(p *Pipe)

func WithLogger(l logger.Logger) Option {
	return func(p *Pipe) {
		p.logger = l
	}
}

// WithClock replaces the pipe's time source, for deterministic tests.
func WithClock(c clock.Clock) Option {
	return func(p *Pipe) {
		p.clock = c
	}
}
