package pci

const (
	maxBuses     = 256
	maxDevices   = 32
	maxFunctions = 8

	// absentFunction is returned by reads of functions that do not exist.
	absentFunction = 0xffffffff
)

// Address identifies a PCI function.
type Address struct {
	Bus      uint8
	Device   uint8
	Function uint8
}

// ReadHeader probes the function at addr. It returns false if the function
// is absent; otherwise it reads all 16 words of its configuration space
// header in order, starting again from offset 0.
func ReadHeader(cs ConfigSpace, addr Address) (Header, bool) {
	var h Header

	if cs.ReadDword(addr.Bus, addr.Device, addr.Function, 0) == absentFunction {
		return h, false
	}

	for i := 0; i < headerDwords; i++ {
		h.Raw[i] = cs.ReadDword(addr.Bus, addr.Device, addr.Function, uint8(i*4))
	}

	return h, true
}

// Scanner walks every bus/device/function combination and stops at each
// function that is present. Functions are probed lazily as Next is called.
//
//	s := pci.NewScanner(cs)
//	for s.Next() {
//		addr, header := s.Address(), s.Header()
//		...
//	}
type Scanner struct {
	cs ConfigSpace

	// next is the linear index of the next function to probe.
	next   int
	addr   Address
	header Header
}

// NewScanner returns a Scanner that reads configuration space through cs.
func NewScanner(cs ConfigSpace) *Scanner {
	return &Scanner{cs: cs}
}

// Next advances the scanner to the next present function. It returns false
// once the complete address space has been probed.
func (s *Scanner) Next() bool {
	for s.next < maxBuses*maxDevices*maxFunctions {
		addr := Address{
			Bus:      uint8(s.next / (maxDevices * maxFunctions)),
			Device:   uint8(s.next / maxFunctions % maxDevices),
			Function: uint8(s.next % maxFunctions),
		}
		s.next++

		if header, present := ReadHeader(s.cs, addr); present {
			s.addr, s.header = addr, header
			return true
		}
	}

	return false
}

// Address returns the address of the function found by the last call to
// Next.
func (s *Scanner) Address() Address {
	return s.addr
}

// Header returns the header of the function found by the last call to Next.
func (s *Scanner) Header() *Header {
	return &s.header
}
