package device

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// streamDepth bounds the number of operations queued on a stream before enqueue blocks.
const streamDepth = 64

type streamOp struct {
	fn func() error
	// always ops (frees) run even after the stream has failed.
	always bool
}

// Stream is an in-order asynchronous work queue on a device. Operations enqueued on one
// stream execute one after another; operations on different streams may overlap.
//
// The first failing operation poisons the stream: later operations (other than frees)
// are skipped and Synchronize reports that first error.
type Stream struct {
	dev *Device
	ops chan streamOp

	pending sync.WaitGroup

	// sendMu guards closed and sends on ops.
	sendMu sync.RWMutex
	closed bool

	mu  sync.Mutex
	err error
}

// NewStream creates a stream on the device.
//
// Returns:
//   - *Stream: The stream.
//   - error: ErrClosed if the device is closed.
func (d *Device) NewStream() (*Stream, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, errors.Wrap(ErrClosed, "new stream")
	}

	s := &Stream{
		dev: d,
		ops: make(chan streamOp, streamDepth),
	}
	go s.run()
	return s, nil
}

func (s *Stream) run() {
	for op := range s.ops {
		if op.always || s.Err() == nil {
			if err := op.fn(); err != nil && !op.always {
				s.fail(err)
			}
		}
		s.pending.Done()
	}
}

func (s *Stream) enqueue(fn func() error, always bool) error {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		return errors.Wrap(ErrClosed, "stream closed")
	}
	s.pending.Add(1)
	s.ops <- streamOp{fn: fn, always: always}
	return nil
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error recorded on the stream.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Launch enqueues a kernel launch.
//
// Arguments:
//   - grid: The launch shape.
//   - kernel: The function executed once per worker.
//
// Returns:
//   - error: ErrClosed if the stream is closed. Execution errors surface on Synchronize.
func (s *Stream) Launch(grid Grid, kernel Kernel) error {
	return s.enqueue(func() error {
		return s.dev.Launch(grid, kernel)
	}, false)
}

// FreeAsync enqueues the release of r behind every operation already on the stream.
// If the stream no longer accepts work, r is released immediately.
func (s *Stream) FreeAsync(r Releaser) error {
	if err := s.enqueue(r.Free, true); err != nil {
		return r.Free()
	}
	return nil
}

// Synchronize blocks until every operation enqueued so far has finished or ctx is done.
//
// Arguments:
//   - ctx: Bounds the wait. Queued work keeps running when ctx expires.
//
// Returns:
//   - error: The stream's first error, or ctx.Err() when the wait was abandoned.
func (s *Stream) Synchronize(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every enqueued operation has finished, without a deadline.
func (s *Stream) Wait() {
	s.pending.Wait()
}

// Close stops the stream from accepting work. Operations already queued still run.
func (s *Stream) Close() error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ops)
	}
	return nil
}
