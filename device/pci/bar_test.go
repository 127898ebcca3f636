package pci

import "testing"

func TestDecodeBAR(t *testing.T) {
	specs := []struct {
		raw uint32
		exp BaseAddress
	}{
		{0x00000000, BaseAddress{Kind: BARAbsent}},
		{0x00000001, BaseAddress{Kind: BARAbsent}},
		{0x00000002, BaseAddress{Kind: BARAbsent}},
		{0xfe000008, BaseAddress{Kind: BARMemory, Base: 0xfe000000, Prefetchable: true}},
		{0xfebf0000, BaseAddress{Kind: BARMemory, Base: 0xfebf0000}},
		{0xfebf1004, BaseAddress{Kind: BARMemory, Base: 0xfebf1000}},
		{0x0000c001, BaseAddress{Kind: BARPort, Base: 0xc000}},
		{0x0000c0a1, BaseAddress{Kind: BARPort, Base: 0xc0a0}},
		{0x0001c001, BaseAddress{Kind: BARPort, Base: 0xc000}},
	}

	for specIndex, spec := range specs {
		if got := DecodeBAR(spec.raw); got != spec.exp {
			t.Errorf("[spec %d] expected 0x%x to decode to %+v; got %+v", specIndex, spec.raw, spec.exp, got)
		}
	}

	if exp, got := uint16(0xc000), DecodeBAR(0xc001).Port(); got != exp {
		t.Errorf("expected port 0x%x; got 0x%x", exp, got)
	}
}
