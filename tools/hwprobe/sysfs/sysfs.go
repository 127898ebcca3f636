// Package sysfs exposes the ACPI tables and PCI configuration space that
// Linux publishes under /sys in the shape expected by the kernel parsers.
package sysfs

import (
	"path"

	"bootprobe/device/pci"
	"bootprobe/kernel/mm"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	procsysfs "github.com/prometheus/procfs/sysfs"
	"github.com/spf13/afero"
)

const (
	acpiTablesDir = "firmware/acpi/tables"
	pciDevicesDir = "bus/pci/devices"

	// tableAlignment is the alignment of each table inside the image
	// built by ACPITables.
	tableAlignment = 16
)

// Source reads hardware descriptions from a sysfs tree.
type Source struct {
	log logr.Logger

	// fs is rooted at the sysfs mount point.
	fs afero.Fs

	sys procsysfs.FS
}

// NewSource returns a Source for the sysfs tree mounted at mountPoint.
func NewSource(log logr.Logger, mountPoint string) (*Source, error) {
	sys, err := procsysfs.NewFS(mountPoint)
	if err != nil {
		return nil, errors.Wrapf(err, "open sysfs at %s", mountPoint)
	}

	return &Source{
		log: log,
		fs:  afero.NewBasePathFs(afero.NewOsFs(), mountPoint),
		sys: sys,
	}, nil
}

// ACPITables copies every table found in the ACPI tables directory into a
// memory image. Linux does not publish the physical table addresses so the
// tables are laid out back to back, each one at a 16-byte aligned offset.
// ACPITables returns the image together with the address of each table.
func (s *Source) ACPITables() (*mm.Image, []uintptr, error) {
	entries, err := afero.ReadDir(s.fs, acpiTablesDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "list %s", acpiTablesDir)
	}

	var (
		tables [][]byte
		size   uintptr
	)

	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			s.log.V(2).Info("Skipping non-table entry", "name", entry.Name())
			continue
		}

		data, err := afero.ReadFile(s.fs, path.Join(acpiTablesDir, entry.Name()))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "read ACPI table %s", entry.Name())
		}

		s.log.V(1).Info("Read ACPI table", "name", entry.Name(), "length", len(data))
		tables = append(tables, data)
		size += alignUp(uintptr(len(data)))
	}

	img := &mm.Image{Data: make([]byte, size)}
	addrs := make([]uintptr, 0, len(tables))

	var off uintptr
	for _, data := range tables {
		copy(img.Data[off:], data)
		addrs = append(addrs, img.Base+off)
		off += alignUp(uintptr(len(data)))
	}

	return img, addrs, nil
}

func alignUp(v uintptr) uintptr {
	return (v + tableAlignment - 1) &^ (tableAlignment - 1)
}

// PCIConfigSpace returns a pci.ConfigSpace for the PCI functions that sysfs
// reports in PCI segment 0.
func (s *Source) PCIConfigSpace() (*ConfigSpace, error) {
	devices, err := s.sys.PciDevices()
	if err != nil {
		return nil, errors.Wrap(err, "read pci devices")
	}

	cs := &ConfigSpace{
		log:       s.log,
		fs:        s.fs,
		functions: make(map[pci.Address]*function, len(devices)),
	}

	for _, device := range devices {
		if device.Location.Segment != 0 {
			s.log.V(2).Info("Skipping device outside of segment 0", "device", device.Name())
			continue
		}

		addr := pci.Address{
			Bus:      uint8(device.Location.Bus),
			Device:   uint8(device.Location.Device),
			Function: uint8(device.Location.Function),
		}

		s.log.V(1).Info("Found pci device", "device", device.Name(), "class", device.Class, "vendor", device.Vendor)
		cs.functions[addr] = &function{
			name:     device.Name(),
			fallback: fallbackHeader(device),
		}
	}

	return cs, nil
}

// fallbackHeader builds the identification words of a header from the
// attributes that sysfs exposes for every device.
func fallbackHeader(device procsysfs.PciDevice) pci.Header {
	var h pci.Header

	h.Raw[0] = uint32(device.Device)<<16 | uint32(device.Vendor)&0xffff
	h.Raw[2] = uint32(device.Class)<<8 | uint32(device.Revision)&0xff
	h.Raw[11] = uint32(device.SubsystemDevice)<<16 | uint32(device.SubsystemVendor)&0xffff

	return h
}
