package sysfs

import (
	"encoding/binary"
	"path"

	"bootprobe/device/pci"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
)

// absentFunction is the value read from functions that do not exist.
const absentFunction = 0xffffffff

type function struct {
	name string

	// config holds the raw configuration space; it is nil until the
	// config file is read and stays nil if it cannot be read.
	config []byte
	loaded bool

	// fallback is used for offsets not covered by config.
	fallback pci.Header
}

// ConfigSpace implements pci.ConfigSpace on top of the per-device config
// files in sysfs. Unprivileged users can typically only read the first 64
// bytes of each file; when the file cannot be read the identification words
// are synthesized from the device attributes.
type ConfigSpace struct {
	log       logr.Logger
	fs        afero.Fs
	functions map[pci.Address]*function
}

var _ pci.ConfigSpace = (*ConfigSpace)(nil)

// ReadDword implements pci.ConfigSpace.
func (cs *ConfigSpace) ReadDword(bus, device, function, offset uint8) uint32 {
	fn, ok := cs.functions[pci.Address{Bus: bus, Device: device, Function: function}]
	if !ok {
		return absentFunction
	}

	if !fn.loaded {
		cs.load(fn)
	}

	off := int(offset &^ 0x3)
	if off+4 <= len(fn.config) {
		return binary.LittleEndian.Uint32(fn.config[off:])
	}

	if off/4 < len(fn.fallback.Raw) {
		return fn.fallback.Raw[off/4]
	}

	return 0
}

func (cs *ConfigSpace) load(fn *function) {
	fn.loaded = true

	data, err := afero.ReadFile(cs.fs, path.Join(pciDevicesDir, fn.name, "config"))
	if err != nil {
		cs.log.V(1).Info("Using device attributes instead of config space", "device", fn.name, "error", err.Error())
		return
	}

	fn.config = data
}
