package pci

import (
	"bootprobe/kernel"
	"bootprobe/kernel/kfmt"
	"io"
)

const (
	// headerDwords is the number of 32-bit words read for each function.
	headerDwords = 16

	// numBARs is the number of base address registers in a type 0 header.
	numBARs = 6

	headerTypeMultiFunction = 0x80
)

// Header is a snapshot of the first 64 bytes of a function's configuration
// space as read through the config space access mechanism.
type Header struct {
	Raw [headerDwords]uint32
}

// VendorID returns the vendor id of the function.
func (h *Header) VendorID() uint16 { return uint16(h.Raw[0]) }

// DeviceID returns the device id of the function.
func (h *Header) DeviceID() uint16 { return uint16(h.Raw[0] >> 16) }

// Command returns the command register.
func (h *Header) Command() uint16 { return uint16(h.Raw[1]) }

// Status returns the status register.
func (h *Header) Status() uint16 { return uint16(h.Raw[1] >> 16) }

// RevisionID returns the revision id of the function.
func (h *Header) RevisionID() uint8 { return uint8(h.Raw[2]) }

// ProgIF returns the programming interface byte.
func (h *Header) ProgIF() uint8 { return uint8(h.Raw[2] >> 8) }

// Subclass returns the subclass code.
func (h *Header) Subclass() uint8 { return uint8(h.Raw[2] >> 16) }

// ClassCode returns the raw class code byte.
func (h *Header) ClassCode() uint8 { return uint8(h.Raw[2] >> 24) }

// Class decodes the class code. Unknown codes yield errUnknownClass; the
// raw value is still available through ClassCode.
func (h *Header) Class() (DeviceClass, *kernel.Error) {
	return DecodeClass(h.ClassCode())
}

// CacheLineSize returns the cache line size register.
func (h *Header) CacheLineSize() uint8 { return uint8(h.Raw[3]) }

// LatencyTimer returns the latency timer register.
func (h *Header) LatencyTimer() uint8 { return uint8(h.Raw[3] >> 8) }

// HeaderType returns the layout of the header with the multi-function bit
// cleared.
func (h *Header) HeaderType() uint8 { return uint8(h.Raw[3]>>16) &^ headerTypeMultiFunction }

// MultiFunction returns true if the device implements more than one
// function.
func (h *Header) MultiFunction() bool { return uint8(h.Raw[3]>>16)&headerTypeMultiFunction != 0 }

// BIST returns the built-in self test register.
func (h *Header) BIST() uint8 { return uint8(h.Raw[3] >> 24) }

// BAR decodes the i-th base address register. It panics if i is not in
// the range [0, 6).
func (h *Header) BAR(i int) BaseAddress { return DecodeBAR(h.Raw[4+i]) }

// CardbusCIS returns the cardbus CIS pointer.
func (h *Header) CardbusCIS() uint32 { return h.Raw[10] }

// SubsystemVendorID returns the subsystem vendor id.
func (h *Header) SubsystemVendorID() uint16 { return uint16(h.Raw[11]) }

// SubsystemID returns the subsystem id.
func (h *Header) SubsystemID() uint16 { return uint16(h.Raw[11] >> 16) }

// ExpansionROM returns the expansion ROM base address.
func (h *Header) ExpansionROM() uint32 { return h.Raw[12] }

// CapabilitiesPtr returns the offset of the first capability.
func (h *Header) CapabilitiesPtr() uint8 { return uint8(h.Raw[13]) }

// InterruptLine returns the IRQ line the function is routed to.
func (h *Header) InterruptLine() uint8 { return uint8(h.Raw[15]) }

// InterruptPin returns the interrupt pin used by the function.
func (h *Header) InterruptPin() uint8 { return uint8(h.Raw[15] >> 8) }

// MinGrant returns the min grant register.
func (h *Header) MinGrant() uint8 { return uint8(h.Raw[15] >> 16) }

// MaxLatency returns the max latency register.
func (h *Header) MaxLatency() uint8 { return uint8(h.Raw[15] >> 24) }

// Render writes a short description of the function to w: the class name
// with a refinement for well-known subclasses, the latency and IRQ line and
// one line per populated base address register.
func (h *Header) Render(w io.Writer) {
	class, err := DecodeClass(h.ClassCode())
	if err != nil {
		kfmt.Fprintf(w, "Unknown(0x%2x)", h.ClassCode())
	} else {
		kfmt.Fprintf(w, "%s", class.String())
		if ref := refinement(class, h.Subclass(), h.ProgIF()); ref != "" {
			kfmt.Fprintf(w, " %s", ref)
		}
	}
	kfmt.Fprintf(w, "\n")

	kfmt.Fprintf(w, "latency: %d, IRQ:%d\n", h.MaxLatency(), h.InterruptLine())

	for i := 0; i < numBARs; i++ {
		switch bar := h.BAR(i); bar.Kind {
		case BARMemory:
			kfmt.Fprintf(w, "BAR[%d]:%8X(memory)\n", i, bar.Base)
		case BARPort:
			kfmt.Fprintf(w, "BAR[%d]:%4X(port)\n", i, bar.Port())
		}
	}
}
