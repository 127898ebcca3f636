package mm

import (
	"bootprobe/kernel"
	"unsafe"
)

var (
	errOutOfBounds = &kernel.Error{Module: "mm", Message: "physical memory access out of bounds"}
)

// PhysMemory provides read-only access to physical memory. The slices
// returned by Bytes alias the underlying memory and remain valid for the
// lifetime of the PhysMemory; callers must never write to them.
type PhysMemory interface {
	// Bytes returns a view of size bytes of physical memory starting at
	// the physical address addr.
	Bytes(addr, size uintptr) ([]byte, *kernel.Error)
}

// LinearWindow describes physical memory that the boot loader has mapped
// linearly into the kernel's address space: physical address p lives at
// virtual address Offset+p.
type LinearWindow struct {
	// Offset is the virtual address where physical address 0 is mapped.
	Offset uintptr

	// Limit is the first physical address past the mapped region. A zero
	// Limit means that the complete physical address space is mapped.
	Limit uintptr
}

// Bytes implements PhysMemory.
func (w LinearWindow) Bytes(addr, size uintptr) ([]byte, *kernel.Error) {
	end := addr + size
	if end < addr || w.Offset+end < w.Offset || (w.Limit != 0 && end > w.Limit) {
		return nil, errOutOfBounds
	}

	if size == 0 {
		return nil, nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(w.Offset+addr)), size), nil
}

// Image is a PhysMemory backed by a byte slice that holds a copy of the
// physical memory region starting at Base.
type Image struct {
	Base uintptr
	Data []byte
}

// Bytes implements PhysMemory.
func (img *Image) Bytes(addr, size uintptr) ([]byte, *kernel.Error) {
	if addr < img.Base {
		return nil, errOutOfBounds
	}

	off := addr - img.Base
	if off > uintptr(len(img.Data)) || size > uintptr(len(img.Data))-off {
		return nil, errOutOfBounds
	}

	return img.Data[off : off+size : off+size], nil
}

// View overlays the fixed layout T on top of the physical memory that starts
// at addr. This is the only place where raw physical memory is reinterpreted
// as a typed structure; the pointer is only handed out after the complete
// layout has been checked to lie inside mem.
//
// T must be a struct made of fixed-size fields whose Go layout matches the
// packed little-endian layout of the firmware structure it describes.
func View[T any](mem PhysMemory, addr uintptr) (*T, *kernel.Error) {
	var zero T

	b, err := mem.Bytes(addr, unsafe.Sizeof(zero))
	if err != nil {
		return nil, err
	}

	if len(b) == 0 {
		return &zero, nil
	}

	return (*T)(unsafe.Pointer(&b[0])), nil
}
