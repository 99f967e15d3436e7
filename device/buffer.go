package device

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// Releaser is anything holding device memory that must be given back.
type Releaser interface {
	Free() error
}

// Buffer is a typed allocation in device memory.
//
// A Buffer is owned by one caller. Its contents are reachable from the host only through
// the Copy methods; View exposes the device-side storage to kernels launched on the
// same device.
type Buffer[T any] struct {
	dev   *Device
	data  []T
	bytes int64
	once  sync.Once
}

// Alloc allocates n elements of T in device memory.
//
// Arguments:
//   - d: The device to allocate on.
//   - n: Number of elements.
//
// Returns:
//   - *Buffer[T]: The allocation.
//   - error: ErrOutOfMemory when the memory limit would be exceeded, ErrClosed when the
//     device is closed, or the fault hook's error.
func Alloc[T any](d *Device, n int) (*Buffer[T], error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "negative allocation length %d", n)
	}
	if err := d.check(OpAlloc); err != nil {
		return nil, err
	}

	var zero T
	bytes := int64(n) * int64(unsafe.Sizeof(zero))
	if err := d.reserve(bytes); err != nil {
		return nil, err
	}
	return &Buffer[T]{dev: d, data: make([]T, n), bytes: bytes}, nil
}

// Len returns the number of elements in the buffer.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Bytes returns the size of the allocation.
func (b *Buffer[T]) Bytes() int64 {
	return b.bytes
}

// View returns the device-side storage. It is only valid inside kernels launched on the
// owning device and must not be retained past Free.
func (b *Buffer[T]) View() []T {
	return b.data
}

// Free returns the allocation to the device. Calling Free more than once is a no-op.
func (b *Buffer[T]) Free() error {
	if b == nil {
		return nil
	}
	b.once.Do(func() {
		b.dev.release(b.bytes)
		b.data = nil
	})
	return nil
}

// CopyFromHost copies src into the start of the buffer and waits for completion.
func (b *Buffer[T]) CopyFromHost(src []T) error {
	if err := b.dev.check(OpCopyToDevice); err != nil {
		return err
	}
	return b.copyIn(src)
}

// CopyToHost copies the start of the buffer into dst and waits for completion.
func (b *Buffer[T]) CopyToHost(dst []T) error {
	if err := b.dev.check(OpCopyToHost); err != nil {
		return err
	}
	return b.copyOut(dst)
}

// CopyFromHostAsync enqueues a host to device copy on s. src must not be modified until
// the stream has been synchronized.
func (b *Buffer[T]) CopyFromHostAsync(s *Stream, src []T) error {
	return s.enqueue(func() error {
		if err := b.dev.check(OpCopyToDevice); err != nil {
			return err
		}
		return b.copyIn(src)
	}, false)
}

// CopyToHostAsync enqueues a device to host copy on s. dst is valid once the stream has
// been synchronized without error.
func (b *Buffer[T]) CopyToHostAsync(s *Stream, dst []T) error {
	return s.enqueue(func() error {
		if err := b.dev.check(OpCopyToHost); err != nil {
			return err
		}
		return b.copyOut(dst)
	}, false)
}

func (b *Buffer[T]) copyIn(src []T) error {
	if b.data == nil && len(src) > 0 {
		return errors.Wrap(ErrInvalidValue, "copy into freed buffer")
	}
	if len(src) > len(b.data) {
		return errors.Wrapf(ErrInvalidValue, "copy of %d elements into buffer of %d", len(src), len(b.data))
	}
	copy(b.data, src)
	return nil
}

func (b *Buffer[T]) copyOut(dst []T) error {
	if b.data == nil && len(dst) > 0 {
		return errors.Wrap(ErrInvalidValue, "copy from freed buffer")
	}
	if len(dst) > len(b.data) {
		return errors.Wrapf(ErrInvalidValue, "copy of %d elements from buffer of %d", len(dst), len(b.data))
	}
	copy(dst, b.data)
	return nil
}
