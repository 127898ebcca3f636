// Package acpi locates the ACPI root system description pointer, walks the
// root table and keeps references to the tables that the kernel uses.
package acpi

import (
	"bootprobe/device"
	"bootprobe/device/acpi/table"
	"bootprobe/kernel"
	"bootprobe/kernel/kfmt"
	"bootprobe/kernel/mm"
	"io"
)

type acpiDriver struct {
	mem      mm.PhysMemory
	root     rootPointer
	registry *Registry
}

// DriverInit initializes this driver.
func (drv *acpiDriver) DriverInit(w io.Writer) *kernel.Error {
	kfmt.Fprintf(w, "RSDP at 0x%x (rev %d, OEM %6s)\n", drv.root.rsdpAddr, drv.root.revision, string(drv.root.oemID[:]))

	if err := drv.registry.enumerateTables(w, drv.mem, drv.root); err != nil {
		return err
	}

	WriteReport(w, drv.mem, drv.registry)

	return nil
}

// DriverName returns the name of this driver.
func (*acpiDriver) DriverName() string {
	return "ACPI"
}

// DriverVersion returns the version of this driver.
func (*acpiDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// WriteReport prints one line per table stored in registry followed by a
// short summary of the fields that the kernel uses. mem must be the memory
// the tables were discovered in.
func WriteReport(w io.Writer, mem mm.PhysMemory, registry *Registry) {
	if ref, ok := registry.Root(); ok {
		printHeader(w, ref.Table, ref.Addr, ref.Valid)
	}

	if ref, ok := registry.FADT(); ok {
		printHeader(w, &ref.Table.SDTHeader, ref.Addr, ref.Valid)
		if century, ok := registry.CenturyRegister(); ok {
			kfmt.Fprintf(w, "  RTC century register: 0x%2x\n", century)
		} else {
			kfmt.Fprintf(w, "  RTC century register: none\n")
		}
	}

	if ref, ok := registry.MADT(); ok {
		printHeader(w, &ref.Table.SDTHeader, ref.Addr, ref.Valid)
		kfmt.Fprintf(w, "  local APIC at 0x%8x, PC-AT compatible: %t\n",
			ref.Table.LocalControllerAddress,
			ref.Table.Flags&table.MADTFlagPCATCompat != 0,
		)

		if contents, err := mem.Bytes(ref.Addr, uintptr(ref.Table.Length)); err == nil {
			s := summarizeMADT(contents)
			kfmt.Fprintf(w, "  %d CPU(s), %d I/O APIC(s), %d interrupt override(s)\n", s.cpus, s.ioAPICs, s.overrides)
		}
	}

	if ref, ok := registry.HPET(); ok {
		printHeader(w, &ref.Table.SDTHeader, ref.Addr, ref.Valid)
		kfmt.Fprintf(w, "  %s at 0x%16x, %d comparator(s), 64-bit counter: %t, legacy replacement: %t\n",
			ref.Table.Address.Space.String(),
			ref.Table.Address.Address(),
			ref.Table.ComparatorCount(),
			ref.Table.CounterSize64(),
			ref.Table.LegacyReplacement(),
		)
	}
}

func printHeader(w io.Writer, header *table.SDTHeader, addr uintptr, valid bool) {
	kfmt.Fprintf(w, "%s at 0x%16x %6x (%6s %8s)",
		string(header.Signature[:]),
		addr,
		header.Length,
		string(header.OEMID[:]),
		string(header.OEMTableID[:]),
	)

	if !valid {
		kfmt.Fprintf(w, " [checksum mismatch]")
	}
	kfmt.Fprintf(w, "\n")
}

// madtSummary counts the interrupt controller records of a MADT.
type madtSummary struct {
	cpus      int
	ioAPICs   int
	overrides int
}

// madtLocalAPICEnabled is set in the flags of a local APIC record whose
// processor can be used.
const madtLocalAPICEnabled = 1 << 0

// summarizeMADT walks the variable sized records that follow the MADT
// header. The walk stops at the first malformed record.
func summarizeMADT(contents []byte) madtSummary {
	var s madtSummary

	for off := table.SizeofMADT; off+2 <= len(contents); {
		entryType, entryLen := table.MADTEntryType(contents[off]), int(contents[off+1])
		if entryLen < 2 || off+entryLen > len(contents) {
			break
		}

		switch entryType {
		case table.MADTEntryTypeLocalAPIC:
			if entryLen >= 8 && contents[off+4]&madtLocalAPICEnabled != 0 {
				s.cpus++
			}
		case table.MADTEntryTypeIOAPIC:
			s.ioAPICs++
		case table.MADTEntryTypeIntSrcOverride:
			s.overrides++
		}

		off += entryLen
	}

	return s
}

// Probe returns a probe function that locates the RSDP in mem. The driver
// created by the probe stores the discovered tables in registry.
func Probe(mem mm.PhysMemory, registry *Registry) device.ProbeFn {
	return func() (device.Driver, *kernel.Error) {
		rp, err := locateRSDP(mem)
		if err != nil {
			return nil, err
		}

		return &acpiDriver{
			mem:      mem,
			root:     rp,
			registry: registry,
		}, nil
	}
}

// Discover locates the RSDP in mem and populates registry with the tables it
// references. Diagnostics are written to w. It is used by callers that do not
// go through the hal driver probe sequence.
func Discover(w io.Writer, mem mm.PhysMemory, registry *Registry) *kernel.Error {
	drv, err := Probe(mem, registry)()
	if err != nil {
		return err
	}

	return drv.DriverInit(w)
}
