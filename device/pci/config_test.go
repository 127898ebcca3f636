package pci

import (
	"bootprobe/kernel/cpu"
	"testing"
)

func TestConfigAddress(t *testing.T) {
	specs := []struct {
		bus, device, function, offset uint8
		exp                           uint32
	}{
		{0, 0, 0, 0, 0x80000000},
		{0, 0x1f, 2, 0x08, 0x8000fa08},
		{0xff, 31, 7, 0x3c, 0x80ffff3c},
		{1, 2, 3, 0x0b, 0x80011308},
	}

	for specIndex, spec := range specs {
		if got := configAddress(spec.bus, spec.device, spec.function, spec.offset); got != spec.exp {
			t.Errorf("[spec %d] expected address 0x%x; got 0x%x", specIndex, spec.exp, got)
		}
	}
}

func TestPortConfigSpace(t *testing.T) {
	defer func() {
		portWriteDwordFn = cpu.PortWriteDword
		portReadDwordFn = cpu.PortReadDword
	}()

	var (
		selected uint32
		cs       = NewPortConfigSpace()
	)

	portWriteDwordFn = func(port uint16, val uint32) {
		if port != configAddressPort {
			t.Fatalf("expected write to port 0x%x; got 0x%x", configAddressPort, port)
		}
		selected = val
	}

	portReadDwordFn = func(port uint16) uint32 {
		if port != configDataPort {
			t.Fatalf("expected read from port 0x%x; got 0x%x", configDataPort, port)
		}

		if !cs.lock.TryToAcquire() {
			// lock is held during the address/data port sequence
			return selected
		}
		cs.lock.Release()
		t.Fatal("expected config space lock to be held while reading the data port")
		return 0
	}

	if exp, got := uint32(0x8000fa08), cs.ReadDword(0, 0x1f, 2, 0x08); got != exp {
		t.Fatalf("expected to read back address 0x%x; got 0x%x", exp, got)
	}

	if !cs.lock.TryToAcquire() {
		t.Fatal("expected config space lock to be released")
	}
}
