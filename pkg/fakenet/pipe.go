package fakenet

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/frostbyte73/core"
	"github.com/gammazero/deque"
	"github.com/go-logr/logr"

	"github.com/livekit/protocol/logger"
)

// ProcessInterval is the longest a driver should wait between calls to
// NetworkProcess for delivery to stay timely.
const ProcessInterval = 10 * time.Millisecond

var (
	ErrInvalidQueueLength  = errors.New("queue length must be positive")
	ErrInvalidLinkCapacity = errors.New("link capacity must be positive")
)

// PacketReceiver consumes packets delivered by the pipe. IncomingPacket is
// called while the pipe lock is held and must be fast and non-blocking.
type PacketReceiver interface {
	IncomingPacket(data []byte)
}

type Config struct {
	// QueueLength bounds the number of packets queued on the link. Further
	// sends are dropped, not blocked.
	QueueLength int
	// QueueDelay is a fixed extra delay added after capacity service.
	QueueDelay time.Duration
	// LinkCapacityKbps is the link rate used to compute serialization delay.
	LinkCapacityKbps int
}

type networkPacket struct {
	data        []byte
	sendTime    time.Time
	arrivalTime time.Time
}

// Pipe is a fake network link between a sender and a receiver. Packets pass
// through a capacity limited stage modeling link-rate serialization, then a
// fixed delay stage, before delivery. SendPacket may be called from a
// producer goroutine while NetworkProcess runs on a poll loop; one lock
// covers both queues and all counters.
type Pipe struct {
	receiver           PacketReceiver
	queueLength        int
	queueDelay         time.Duration
	capacityBytesPerMs int64
	clock              clock.Clock
	logger             logger.Logger

	stop core.Fuse

	mu               sync.Mutex
	capacityLink     deque.Deque[*networkPacket]
	delayLink        deque.Deque[*networkPacket]
	droppedPackets   int
	sentPackets      int
	deliveredPackets int
	totalDelay       time.Duration
}

func NewPipe(receiver PacketReceiver, conf Config, opts ...Option) (*Pipe, error) {
	if conf.QueueLength <= 0 {
		return nil, ErrInvalidQueueLength
	}
	capacityBytesPerMs := int64(conf.LinkCapacityKbps / 8)
	if capacityBytesPerMs <= 0 {
		return nil, ErrInvalidLinkCapacity
	}

	p := &Pipe{
		receiver:           receiver,
		queueLength:        conf.QueueLength,
		queueDelay:         conf.QueueDelay,
		capacityBytesPerMs: capacityBytesPerMs,
		clock:              clock.New(),
		logger:             logger.LogRLogger(logr.Discard()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SendPacket injects a packet into the pipe. The data is copied, the
// caller's buffer may be reused immediately. If the link queue is full the
// packet is silently dropped and counted.
func (p *Pipe) SendPacket(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacityLink.Len() >= p.queueLength {
		p.droppedPackets++
		p.logger.Debugw("link queue full, packet dropped", "queueLength", p.queueLength)
		return
	}

	now := p.clock.Now()

	// serialization delay introduced by the link capacity, floor milliseconds
	capacityDelay := time.Duration(int64(len(data))/p.capacityBytesPerMs) * time.Millisecond

	// the packet is not serviced until the link has finished with everything
	// ahead of it
	networkStartTime := now
	if p.capacityLink.Len() > 0 {
		if tail := p.capacityLink.Back().arrivalTime; tail.After(networkStartTime) {
			networkStartTime = tail
		}
	}

	p.sentPackets++
	owned := make([]byte, len(data))
	copy(owned, data)
	p.capacityLink.PushBack(&networkPacket{
		data:        owned,
		sendTime:    now,
		arrivalTime: networkStartTime.Add(capacityDelay),
	})
}

// NetworkProcess moves packets whose serialization time has passed into the
// delay stage, then delivers packets whose total delay has elapsed to the
// receiver. It must be driven externally, at least every ProcessInterval.
func (p *Pipe) NetworkProcess() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()

	for p.capacityLink.Len() > 0 && !p.capacityLink.Front().arrivalTime.After(now) {
		packet := p.capacityLink.PopFront()
		packet.arrivalTime = packet.arrivalTime.Add(p.queueDelay)
		p.delayLink.PushBack(packet)
	}

	for p.delayLink.Len() > 0 && !p.delayLink.Front().arrivalTime.After(now) {
		packet := p.delayLink.PopFront()
		p.receiver.IncomingPacket(packet.data)
		p.deliveredPackets++
		// now may be later than the packet's arrival time if NetworkProcess
		// ran late; stats use the time it should have left the link
		p.totalDelay += packet.arrivalTime.Sub(packet.sendTime)
	}
}

// PercentageLoss returns the fraction of injected packets dropped on
// overflow, in [0, 1].
func (p *Pipe) PercentageLoss() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sentPackets == 0 && p.droppedPackets == 0 {
		return 0
	}
	return float32(p.droppedPackets) / float32(p.sentPackets+p.droppedPackets)
}

// AverageDelay returns the mean time delivered packets spent in the pipe.
func (p *Pipe) AverageDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deliveredPackets == 0 {
		return 0
	}
	return p.totalDelay / time.Duration(p.deliveredPackets)
}

// Start launches an internal poll loop driving NetworkProcess every
// ProcessInterval. Optional; a harness may call NetworkProcess itself.
func (p *Pipe) Start() {
	go p.processLoop()
}

// Stop halts the poll loop. Still queued packets are discarded without
// delivery.
func (p *Pipe) Stop() {
	p.stop.Break()
}

func (p *Pipe) processLoop() {
	ticker := p.clock.Ticker(ProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.NetworkProcess()
		case <-p.stop.Watch():
			return
		}
	}
}
