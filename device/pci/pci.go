package pci

import (
	"bootprobe/device"
	"bootprobe/kernel"
	"bootprobe/kernel/kfmt"
	"io"
)

type pciDriver struct {
	cs ConfigSpace
}

// DriverInit enumerates all present functions and writes a summary for each
// one to w. Functions with an unknown class code are reported and skipped
// over like any other function.
func (drv *pciDriver) DriverInit(w io.Writer) *kernel.Error {
	var found, unknown int

	for s := NewScanner(drv.cs); s.Next(); {
		addr, header := s.Address(), s.Header()
		if _, err := header.Class(); err != nil {
			unknown++
		}

		kfmt.Fprintf(w, "%2x:%2x.%d %4x:%4x ", addr.Bus, addr.Device, addr.Function, header.VendorID(), header.DeviceID())
		header.Render(w)
		found++
	}

	kfmt.Fprintf(w, "%d function(s) found", found)
	if unknown != 0 {
		kfmt.Fprintf(w, ", %d with unknown class", unknown)
	}
	kfmt.Fprintf(w, "\n")

	return nil
}

// DriverName returns the name of this driver.
func (*pciDriver) DriverName() string {
	return "PCI"
}

// DriverVersion returns the version of this driver.
func (*pciDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// Probe returns a probe function for a PCI driver that enumerates the
// functions visible through cs.
func Probe(cs ConfigSpace) device.ProbeFn {
	return func() (device.Driver, *kernel.Error) {
		return &pciDriver{cs: cs}, nil
	}
}
