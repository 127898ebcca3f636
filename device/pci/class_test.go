package pci

import "testing"

func TestDecodeClass(t *testing.T) {
	specs := []struct {
		code    uint8
		exp     DeviceClass
		expName string
		expErr  bool
	}{
		{0x00, ClassUnclassified, "Unclassified", false},
		{0x01, ClassMassStorage, "MassStorage", false},
		{0x02, ClassNetwork, "Network", false},
		{0x0c, ClassSerialBus, "SerialBus", false},
		{0x13, ClassNonEssential, "NonEssential", false},
		{0x40, ClassCoProcessor, "CoProcessor", false},
		{0xff, ClassUnassigned, "Unassigned", false},
		{0x14, DeviceClass(0x14), "Unknown", true},
		{0x80, DeviceClass(0x80), "Unknown", true},
	}

	for _, spec := range specs {
		got, err := DecodeClass(spec.code)
		if spec.expErr {
			if err != errUnknownClass {
				t.Errorf("expected class 0x%x to yield errUnknownClass; got %v", spec.code, err)
			}
		} else if err != nil {
			t.Errorf("unexpected error decoding class 0x%x: %v", spec.code, err)
		}

		if got != spec.exp {
			t.Errorf("expected class 0x%x to decode to %d; got %d", spec.code, spec.exp, got)
		}

		if name := got.String(); name != spec.expName {
			t.Errorf("expected class 0x%x to be named %q; got %q", spec.code, spec.expName, name)
		}
	}
}

func TestRefinement(t *testing.T) {
	specs := []struct {
		class            DeviceClass
		subclass, progIF uint8
		exp              string
	}{
		{ClassMassStorage, 0x01, 0x80, "IDE"},
		{ClassMassStorage, 0x06, 0x01, "SATA"},
		{ClassMassStorage, 0x08, 0x02, "NVMe"},
		{ClassMassStorage, 0x00, 0x00, ""},
		{ClassSerialBus, 0x03, 0x00, "UHCI"},
		{ClassSerialBus, 0x03, 0x10, "OHCI"},
		{ClassSerialBus, 0x03, 0x20, "EHCI"},
		{ClassSerialBus, 0x03, 0x30, "XHCI"},
		{ClassSerialBus, 0x03, 0xfe, ""},
		{ClassSerialBus, 0x05, 0x30, ""},
		{ClassNetwork, 0x06, 0x30, ""},
	}

	for specIndex, spec := range specs {
		if got := refinement(spec.class, spec.subclass, spec.progIF); got != spec.exp {
			t.Errorf("[spec %d] expected refinement %q; got %q", specIndex, spec.exp, got)
		}
	}
}
