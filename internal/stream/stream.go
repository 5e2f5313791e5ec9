// Package stream implements the multi-subscriber, replay-capable output
// stream that fans one execution's output out to its consumers (live viewer,
// log writer, alert evaluator, file extractor).
//
// A single producer appends chunks with Emit; any number of consumers
// subscribe, each backed by its own buffer and drain goroutine, so a slow
// consumer never blocks the producer or its peers. A consumer that attaches
// after output started receives the full history first, with no gap and no
// duplicate.
package stream

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Emit after Close. Emitting to a closed stream
// indicates a producer bug and must be reported by the caller, not dropped.
var ErrClosed = errors.New("output stream is closed")

// Consumer receives chunks from a Stream. OnChunk is called once per chunk in
// emission order; OnClose is called exactly once after the final chunk, when
// the stream has been closed and the consumer's buffer is drained.
type Consumer interface {
	OnChunk(chunk string)
	OnClose()
}

// Stream is the fan-out primitive for one execution's output.
type Stream struct {
	mu      sync.Mutex
	history []string
	subs    []*Subscription
	closed  bool
	done    chan struct{}
}

// New creates an open, empty Stream.
func New() *Stream {
	return &Stream{done: make(chan struct{})}
}

// Emit appends a chunk to the history and queues it for every subscriber.
// It never blocks on consumers. Returns ErrClosed if the stream was closed.
func (s *Stream) Emit(chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.history = append(s.history, chunk)
	for _, sub := range s.subs {
		sub.push(chunk)
	}
	return nil
}

// Subscribe registers a consumer. The consumer first receives every chunk
// emitted so far, then subsequent chunks as they arrive. If the stream is
// already closed, the consumer receives the full history followed by OnClose.
func (s *Stream) Subscribe(c Consumer) *Subscription {
	s.mu.Lock()

	sub := newSubscription(c)
	sub.queue = append(sub.queue, s.history...)
	if s.closed {
		sub.ended = true
	}
	s.subs = append(s.subs, sub)

	s.mu.Unlock()

	go sub.drain()
	return sub
}

// Unsubscribe detaches a subscription. Chunks still buffered for it are
// discarded and OnClose is not called. Unknown subscriptions are ignored.
func (s *Stream) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	sub.cancel()
}

// Close marks the stream complete. Idempotent. Subscribers receive OnClose
// once their buffers drain; the history stays readable for late subscribers.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	close(s.done)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.end()
	}
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done returns a channel closed when the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// History returns a copy of every chunk emitted so far, in order.
func (s *Stream) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Text returns the accumulated output as one string.
func (s *Stream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, chunk := range s.history {
		n += len(chunk)
	}
	buf := make([]byte, 0, n)
	for _, chunk := range s.history {
		buf = append(buf, chunk...)
	}
	return string(buf)
}

// Subscription is one consumer's attachment to a Stream.
type Subscription struct {
	consumer Consumer

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []string
	ended     bool // stream closed; deliver remaining queue then OnClose
	cancelled bool // unsubscribed; stop without OnClose
}

func newSubscription(c Consumer) *Subscription {
	sub := &Subscription{consumer: c}
	sub.cond = sync.NewCond(&sub.mu)
	return sub
}

func (sub *Subscription) push(chunk string) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, chunk)
	sub.mu.Unlock()
	sub.cond.Signal()
}

func (sub *Subscription) end() {
	sub.mu.Lock()
	sub.ended = true
	sub.mu.Unlock()
	sub.cond.Signal()
}

func (sub *Subscription) cancel() {
	sub.mu.Lock()
	sub.cancelled = true
	sub.mu.Unlock()
	sub.cond.Signal()
}

// drain delivers queued chunks to the consumer one at a time. Consumer
// callbacks run outside the lock so a blocked consumer only stalls itself.
func (sub *Subscription) drain() {
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.ended && !sub.cancelled {
			sub.cond.Wait()
		}
		if sub.cancelled {
			sub.mu.Unlock()
			return
		}
		if len(sub.queue) == 0 {
			sub.mu.Unlock()
			sub.consumer.OnClose()
			return
		}
		chunk := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		sub.consumer.OnChunk(chunk)
	}
}
