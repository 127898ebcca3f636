package acpi

import (
	"bootprobe/device/acpi/table"
	"bootprobe/kernel"
	"bootprobe/kernel/mm"
)

const (
	acpiRev1     uint8 = 0
	acpiRev2Plus uint8 = 2
)

var (
	errMissingRSDP = &kernel.Error{Module: "acpi", Message: "could not locate ACPI RSDP"}

	// The RSDP is searched for in the first MiB of physical memory, on
	// 16-byte boundaries.
	rsdpLocationLow uintptr = 0
	rsdpLocationHi  uintptr = 0x100000
	rsdpAlignment   uintptr = 16
)

// rootPointer describes a validated RSDP.
type rootPointer struct {
	// rsdpAddr is the physical address of the RSDP itself.
	rsdpAddr uintptr

	// sdtAddr is the physical address of the RSDT, or of the XSDT if
	// useXSDT is set.
	sdtAddr uintptr
	useXSDT bool

	revision uint8
	oemID    [6]byte
}

// locateRSDP scans every 16-byte slot of the physical memory region
// [rsdpLocationLow, rsdpLocationHi) looking for the signature of the root system descriptor
// pointer (RSDP). Candidates that match the signature but fail the checksum
// are skipped and the scan continues.
//
// If the RSDP reports ACPI 2.0+ and its extended checksum is valid the XSDT
// is selected; otherwise locateRSDP falls back to the 32-bit RSDT.
func locateRSDP(mem mm.PhysMemory) (rootPointer, *kernel.Error) {
checkNextBlock:
	for curPtr := rsdpLocationLow; curPtr < rsdpLocationHi; curPtr += rsdpAlignment {
		block, err := mem.Bytes(curPtr, table.SizeofRSDP)
		if err != nil {
			// The last slots of the region may hold a record that
			// extends past the end of accessible memory.
			if curPtr+table.SizeofRSDP > rsdpLocationHi {
				continue
			}
			return rootPointer{}, err
		}

		for i, b := range table.RSDPSignature {
			if block[i] != b {
				continue checkNextBlock
			}
		}

		if !validChecksum(block) {
			continue
		}

		rsdp, err := mm.View[table.RSDPDescriptor](mem, curPtr)
		if err != nil {
			return rootPointer{}, err
		}

		rp := rootPointer{
			rsdpAddr: curPtr,
			sdtAddr:  uintptr(rsdp.RSDTAddr),
			revision: rsdp.Revision,
			oemID:    rsdp.OEMID,
		}

		if rsdp.Revision >= acpiRev2Plus {
			if ext, ok := extendedRSDP(mem, curPtr); ok {
				rp.sdtAddr = uintptr(ext.XSDTAddr.Value())
				rp.useXSDT = true
			}
		}

		return rp, nil
	}

	return rootPointer{}, errMissingRSDP
}

// extendedRSDP returns the ACPI 2.0+ view of the RSDP at addr if its
// extended checksum is valid and it points to an XSDT.
func extendedRSDP(mem mm.PhysMemory, addr uintptr) (*table.ExtRSDPDescriptor, bool) {
	block, err := mem.Bytes(addr, table.SizeofExtRSDP)
	if err != nil || !validChecksum(block) {
		return nil, false
	}

	ext, err := mm.View[table.ExtRSDPDescriptor](mem, addr)
	if err != nil || ext.XSDTAddr.Value() == 0 {
		return nil, false
	}

	return ext, true
}

// validChecksum returns true if the sum of all bytes in b, including the
// embedded checksum byte, is 0 (mod 256).
func validChecksum(b []byte) bool {
	var sum uint8
	for _, v := range b {
		sum += v
	}

	return sum == 0
}
