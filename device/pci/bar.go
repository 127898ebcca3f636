package pci

// BARKind describes the address space of a decoded base address register.
type BARKind uint8

// The list of base address register kinds.
const (
	BARAbsent BARKind = iota
	BARMemory
	BARPort
)

// BaseAddress is the decoded form of a base address register.
type BaseAddress struct {
	Kind BARKind

	// Base is the start of the memory window for BARMemory or the I/O
	// port for BARPort.
	Base uint32

	// Prefetchable is only meaningful for BARMemory.
	Prefetchable bool
}

// Port returns the base I/O port of a BARPort register.
func (b BaseAddress) Port() uint16 {
	return uint16(b.Base)
}

// DecodeBAR decodes the raw value of a base address register.
func DecodeBAR(v uint32) BaseAddress {
	switch {
	case v&0xfffffffc == 0:
		return BaseAddress{Kind: BARAbsent}
	case v&0x1 == 0:
		return BaseAddress{Kind: BARMemory, Base: v & 0xfffffff0, Prefetchable: v&0x8 != 0}
	default:
		return BaseAddress{Kind: BARPort, Base: uint32(uint16(v & 0xfffc))}
	}
}
