// Package kmain contains the kernel entrypoint.
package kmain

import (
	"bootprobe/device"
	"bootprobe/device/acpi"
	"bootprobe/device/pci"
	"bootprobe/kernel"
	"bootprobe/kernel/hal"
	"bootprobe/kernel/kfmt"
	"bootprobe/kernel/mm"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
)

// Kmain is invoked by the rt0 assembly code after it has set up paging and a
// minimal Go runtime environment. physOffset is the virtual address where the
// boot code mapped physical address 0; the complete physical address space
// is reachable through this linear mapping.
//
// Kmain runs hardware discovery on the boot CPU before interrupts are
// enabled. Kmain is not expected to return. If it does, the rt0 code will
// halt the CPU.
//
//go:noinline
func Kmain(physOffset uintptr) {
	var (
		mem    = mm.LinearWindow{Offset: physOffset}
		tables = acpi.NewRegistry()
	)

	hal.DetectHardware(bootDrivers(mem, tables, pci.NewPortConfigSpace()))

	if century, ok := tables.CenturyRegister(); ok {
		kfmt.Printf("[kmain] RTC century register: 0x%2x\n", century)
	}

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// bootDrivers returns the drivers probed during boot. ACPI is mandatory; PCI
// enumeration failures only disable PCI support.
func bootDrivers(mem mm.PhysMemory, tables *acpi.Registry, cs pci.ConfigSpace) device.DriverInfoList {
	return device.DriverInfoList{
		{Order: device.DetectOrderBeforeACPI, Probe: acpi.Probe(mem, tables), Required: true},
		{Order: device.DetectOrderACPI, Probe: pci.Probe(cs)},
	}
}
