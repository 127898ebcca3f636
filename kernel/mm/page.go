package mm

// Frame describes a physical memory page index.
type Frame uintptr

// Address returns the physical address of the first byte in this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f << PageShift)
}

// FrameFromAddress returns a Frame that corresponds to the given physical
// address. This function can handle both page-aligned and not aligned
// addresses. In the latter case, the input address will be rounded down to
// the frame that contains it.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame((physAddr & ^(uintptr(PageSize - 1))) >> PageShift)
}

// PageOffset returns the offset of addr from the start of its page.
func PageOffset(addr uintptr) uintptr {
	return addr & (PageSize - 1)
}

// FramesSpanned returns the number of frames touched by the physical region
// [physAddr, physAddr+size).
func FramesSpanned(physAddr, size uintptr) uintptr {
	if size == 0 {
		return 0
	}

	return uintptr(FrameFromAddress(physAddr+size-1)-FrameFromAddress(physAddr)) + 1
}
