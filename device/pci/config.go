// Package pci enumerates PCI functions through the legacy configuration
// space access mechanism and decodes their headers.
package pci

import (
	"bootprobe/kernel/cpu"
	"bootprobe/kernel/sync"
)

const configEnable = 0x80000000

var (
	// The address/data port pair of configuration mechanism #1.
	configAddressPort uint16 = 0xcf8
	configDataPort    uint16 = 0xcfc

	portWriteDwordFn = cpu.PortWriteDword
	portReadDwordFn  = cpu.PortReadDword
)

// ConfigSpace provides read access to the configuration space of PCI
// functions. The offset is in bytes; its low 2 bits are ignored.
type ConfigSpace interface {
	ReadDword(bus, device, function, offset uint8) uint32
}

// PortConfigSpace accesses configuration space through the CONFIG_ADDRESS
// and CONFIG_DATA I/O ports. The port pair is shared by all callers so each
// address write and the data read that follows it are performed while
// holding a lock.
type PortConfigSpace struct {
	lock sync.Spinlock
}

// NewPortConfigSpace returns a ConfigSpace that uses the legacy port pair.
func NewPortConfigSpace() *PortConfigSpace {
	return &PortConfigSpace{}
}

// ReadDword implements ConfigSpace.
func (cs *PortConfigSpace) ReadDword(bus, device, function, offset uint8) uint32 {
	cs.lock.Acquire()
	portWriteDwordFn(configAddressPort, configAddress(bus, device, function, offset))
	v := portReadDwordFn(configDataPort)
	cs.lock.Release()

	return v
}

// configAddress builds the value written to the CONFIG_ADDRESS port.
func configAddress(bus, device, function, offset uint8) uint32 {
	return configEnable |
		uint32(bus)<<16 |
		uint32(device&0x1f)<<11 |
		uint32(function&0x7)<<8 |
		uint32(offset&0xfc)
}
