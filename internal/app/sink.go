package app

import (
	"sync"

	"github.com/dshills/keydrive/internal/protocol"
	"github.com/dshills/keydrive/internal/transport"
)

// defaultQueueSize bounds the commands waiting for the serial link.
const defaultQueueSize = 64

// linkSink feeds translator output to a transport.Conn on its own goroutine,
// so a slow port never holds up key handling longer than a full queue.
// The first write error stops the writer and is reported on Failed.
type linkSink struct {
	conn    transport.Conn
	metrics *Metrics

	queue  chan protocol.Command
	stop   chan struct{}
	failed chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	err      error
	stopOnce sync.Once
}

func newLinkSink(conn transport.Conn, metrics *Metrics, size int) *linkSink {
	if size <= 0 {
		size = defaultQueueSize
	}
	s := &linkSink{
		conn:    conn,
		metrics: metrics,
		queue:   make(chan protocol.Command, size),
		stop:    make(chan struct{}),
		failed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Send queues cmd, blocking while the queue is full.
// Commands sent after a failure or Close are dropped.
func (s *linkSink) Send(cmd protocol.Command) {
	select {
	case <-s.failed:
		return
	case <-s.stop:
		return
	default:
	}

	select {
	case s.queue <- cmd:
		s.metrics.RecordQueueDepth(len(s.queue))
	case <-s.failed:
	case <-s.stop:
	}
}

// Failed is closed when a write fails.
func (s *linkSink) Failed() <-chan struct{} {
	return s.failed
}

// Err returns the write error, if any.
func (s *linkSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close writes what is already queued, then stops the writer.
func (s *linkSink) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return s.Err()
}

func (s *linkSink) run() {
	defer close(s.done)

	for {
		select {
		case cmd := <-s.queue:
			if !s.write(cmd) {
				return
			}
		case <-s.stop:
			// Flush
			for {
				select {
				case cmd := <-s.queue:
					if !s.write(cmd) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *linkSink) write(cmd protocol.Command) bool {
	timer := StartTimer()
	err := s.conn.WriteCommand(cmd)
	s.metrics.RecordWrite(timer.Elapsed(), err)
	if err == nil {
		return true
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.failed)
	return false
}
