// Package cpu exposes the privileged x86 instructions used by the hardware
// discovery code. The function bodies live in cpu_amd64.s.
package cpu

// Halt stops instruction execution.
func Halt()

// PortWriteDword writes a uint32 value to the requested port.
func PortWriteDword(port uint16, val uint32)

// PortReadDword reads a uint32 value from the requested port.
func PortReadDword(port uint16) uint32
