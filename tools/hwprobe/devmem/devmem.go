// Package devmem provides read-only access to physical memory through a
// memory device such as /dev/mem.
package devmem

import (
	"os"

	"bootprobe/kernel"
	"bootprobe/kernel/mm"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// windowSize is the granularity at which the device is mapped. Requests that
// fit inside an aligned window share a single mapping.
const windowSize = 1 << 20

var errOutOfBounds = &kernel.Error{Module: "devmem", Message: "physical memory access out of bounds"}

type window struct {
	base, length uintptr
}

// Memory is an mm.PhysMemory backed by shared read-only mappings of a memory
// device. Mappings are created on demand and stay valid until Close is
// called, so views returned by Bytes remain usable for the lifetime of the
// Memory.
type Memory struct {
	log  logr.Logger
	file *os.File

	// limit is the size of the backing file or 0 for character devices
	// whose size is unknown.
	limit uintptr

	mappings map[window][]byte
}

var _ mm.PhysMemory = (*Memory)(nil)

// Open opens the memory device at path for reading.
func Open(log logr.Logger, path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	m := &Memory{
		log:      log.WithValues("device", path),
		file:     f,
		mappings: make(map[window][]byte),
	}

	if info.Mode().IsRegular() {
		m.limit = uintptr(info.Size())
	}

	return m, nil
}

// Bytes implements mm.PhysMemory.
func (m *Memory) Bytes(addr, size uintptr) ([]byte, *kernel.Error) {
	end := addr + size
	if end < addr || (m.limit != 0 && end > m.limit) {
		return nil, errOutOfBounds
	}

	if size == 0 {
		return nil, nil
	}

	w := window{base: addr &^ (windowSize - 1), length: windowSize}
	if end-w.base > windowSize {
		w.base = mm.FrameFromAddress(addr).Address()
		w.length = mm.FramesSpanned(addr, size) * mm.PageSize
	}

	if m.limit != 0 && w.base+w.length > m.limit {
		w.length = m.limit - w.base
	}

	data, err := m.mapWindow(w)
	if err != nil {
		return nil, err
	}

	off := addr - w.base
	return data[off : off+size : off+size], nil
}

func (m *Memory) mapWindow(w window) ([]byte, *kernel.Error) {
	if data, ok := m.mappings[w]; ok {
		return data, nil
	}

	data, err := unix.Mmap(int(m.file.Fd()), int64(w.base), int(w.length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		m.log.V(1).Info("mmap failed", "base", w.base, "length", w.length, "error", err.Error())
		return nil, &kernel.Error{Module: "devmem", Message: err.Error()}
	}

	m.log.V(2).Info("mapped window", "base", w.base, "length", w.length)
	m.mappings[w] = data
	return data, nil
}

// Close unmaps all windows and closes the device. Slices returned by Bytes
// must not be used after Close.
func (m *Memory) Close() error {
	var firstErr error

	for w, data := range m.mappings {
		if err := unix.Munmap(data); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "munmap window at 0x%x", w.base)
		}
		delete(m.mappings, w)
	}

	if err := m.file.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "close memory device")
	}

	return firstErr
}
