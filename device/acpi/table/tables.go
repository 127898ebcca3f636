// Package table defines the in-memory layout of the ACPI structures that the
// kernel parses during boot.
//
// All ACPI structures are packed and little-endian. The Go structs below are
// laid out so that the compiler does not insert any padding: fields that would
// end up at an offset that is not a multiple of their natural alignment are
// declared as byte arrays (or PackedUint64) and exposed through accessors.
package table

import "encoding/binary"

// Sizes of the fixed layouts, in bytes.
const (
	SizeofRSDP           = 20
	SizeofExtRSDP        = 36
	SizeofSDTHeader      = 36
	SizeofGenericAddress = 12
	SizeofFADT           = 244
	SizeofMADT           = 44
	SizeofHPET           = 56
)

// Table signatures.
var (
	RSDPSignature = [8]byte{'R', 'S', 'D', ' ', 'P', 'T', 'R', ' '}
	RSDTSignature = [4]byte{'R', 'S', 'D', 'T'}
	XSDTSignature = [4]byte{'X', 'S', 'D', 'T'}
	FADTSignature = [4]byte{'F', 'A', 'C', 'P'}
	MADTSignature = [4]byte{'A', 'P', 'I', 'C'}
	HPETSignature = [4]byte{'H', 'P', 'E', 'T'}
)

// PackedUint64 holds a little-endian 64-bit value stored at an offset that is
// only guaranteed to be 4-byte aligned.
type PackedUint64 [2]uint32

// Value returns the 64-bit value.
func (v PackedUint64) Value() uint64 {
	return uint64(v[1])<<32 | uint64(v[0])
}

// RSDPDescriptor defines the root system descriptor pointer for ACPI 1.0. This
// is used as the entry-point for parsing ACPI data.
type RSDPDescriptor struct {
	// The signature must contain "RSD PTR " (last byte is a space).
	Signature [8]byte

	// A value that when added to the sum of all other bytes contained in
	// this descriptor should result in the value 0.
	Checksum uint8

	OEMID [6]byte

	// ACPI revision number. It is 0 for ACPI1.0 and 2 for versions 2.0+.
	Revision uint8

	// Physical address of 32-bit root system descriptor table.
	RSDTAddr uint32
}

// ExtRSDPDescriptor extends RSDPDescriptor with additional fields. It is used
// when RSDPDescriptor.Revision >= 2.
type ExtRSDPDescriptor struct {
	RSDPDescriptor

	// The size of the complete extended descriptor.
	Length uint32

	// Physical address of 64-bit extended system descriptor table.
	XSDTAddr PackedUint64

	// A value that when added to the sum of all bytes of the extended
	// descriptor should result in the value 0.
	ExtendedChecksum uint8

	reserved [3]byte
}

// SDTHeader defines the common header for all ACPI-related tables.
type SDTHeader struct {
	// The signature defines the table type.
	Signature [4]byte

	// The length of the table including this header.
	Length uint32

	Revision uint8

	// A value that when added to the sum of all other bytes in the table
	// should result in the value 0.
	Checksum uint8

	// OEM specific information
	OEMID       [6]byte
	OEMTableID  [8]byte
	OEMRevision uint32

	// Information about the ASL compiler that generated this table
	CreatorID       uint32
	CreatorRevision uint32
}

// AddressSpace defines the location where a set of registers resides.
type AddressSpace uint8

// The list of supported address space types.
const (
	AddressSpaceSysMemory AddressSpace = iota
	AddressSpaceSysIO
	AddressSpacePCI
	AddressSpaceEmbController
	AddressSpaceSMBus
	AddressSpaceFuncFixedHW AddressSpace = 0x7f
)

// String returns a short name for the address space.
func (s AddressSpace) String() string {
	switch s {
	case AddressSpaceSysMemory:
		return "memory"
	case AddressSpaceSysIO:
		return "io"
	case AddressSpacePCI:
		return "pci"
	case AddressSpaceEmbController:
		return "ec"
	case AddressSpaceSMBus:
		return "smbus"
	case AddressSpaceFuncFixedHW:
		return "ffh"
	default:
		return "unknown"
	}
}

// GenericAddress specifies a register range located in a particular address
// space.
type GenericAddress struct {
	Space      AddressSpace
	BitWidth   uint8
	BitOffset  uint8
	AccessSize uint8
	RawAddress PackedUint64
}

// Address returns the 64-bit register address.
func (ga *GenericAddress) Address() uint64 {
	return ga.RawAddress.Value()
}

// PowerProfileType describes a power profile referenced by the FADT table.
type PowerProfileType uint8

// The list of supported power profile types
const (
	PowerProfileUnspecified PowerProfileType = iota
	PowerProfileDesktop
	PowerProfileMobile
	PowerProfileWorkstation
	PowerProfileEnterpriseServer
	PowerProfileSOHOServer
	PowerProfileAppliancePC
	PowerProfilePerformanceServer
)

// FADT64 contains the 64-bit FADT extensions which are used by ACPI2+
type FADT64 struct {
	FirmwareControl PackedUint64
	Dsdt            PackedUint64

	PM1aEventBlock   GenericAddress
	PM1bEventBlock   GenericAddress
	PM1aControlBlock GenericAddress
	PM1bControlBlock GenericAddress
	PM2ControlBlock  GenericAddress
	PMTimerBlock     GenericAddress
	GPE0Block        GenericAddress
	GPE1Block        GenericAddress
}

// FADT (Fixed ACPI Description Table) is an ACPI table containing information
// about fixed register blocks used for power management.
type FADT struct {
	SDTHeader

	FirmwareCtrl uint32
	Dsdt         uint32

	reserved uint8

	PreferredPowerManagementProfile PowerProfileType
	SCIInterrupt                    uint16
	SMICommandPort                  uint32
	AcpiEnable                      uint8
	AcpiDisable                     uint8
	S4BIOSReq                       uint8
	PSTATEControl                   uint8
	PM1aEventBlock                  uint32
	PM1bEventBlock                  uint32
	PM1aControlBlock                uint32
	PM1bControlBlock                uint32
	PM2ControlBlock                 uint32
	PMTimerBlock                    uint32
	GPE0Block                       uint32
	GPE1Block                       uint32
	PM1EventLength                  uint8
	PM1ControlLength                uint8
	PM2ControlLength                uint8
	PMTimerLength                   uint8
	GPE0Length                      uint8
	GPE1Length                      uint8
	GPE1Base                        uint8
	CStateControl                   uint8
	WorstC2Latency                  uint16
	WorstC3Latency                  uint16
	FlushSize                       uint16
	FlushStride                     uint16
	DutyOffset                      uint8
	DutyWidth                       uint8
	DayAlarm                        uint8
	MonthAlarm                      uint8

	// Century holds the index of the RTC CMOS register that stores the
	// century. A zero value indicates that the RTC has no century register.
	Century uint8

	// Reserved in ACPI 1.0; used since ACPI 2.0+. Use BootArchFlags().
	RawBootArchitectureFlags [2]byte

	reserved2 uint8
	Flags     uint32

	ResetReg GenericAddress

	ResetValue uint8
	reserved3  [3]uint8

	// 64-bit pointers to the above structures used by ACPI 2.0+
	Ext FADT64
}

// BootArchFlags returns the IA-PC boot architecture flags.
func (f *FADT) BootArchFlags() uint16 {
	return binary.LittleEndian.Uint16(f.RawBootArchitectureFlags[:])
}

// MADT (Multiple APIC Description Table) is an ACPI table containing
// information about the interrupt controllers and the number of installed
// CPUs. Following the table header are a series of variable sized records
// which contain additional information.
type MADT struct {
	SDTHeader

	LocalControllerAddress uint32
	Flags                  uint32
}

// MADTFlagPCATCompat is set in MADT.Flags when the system also has a
// PC-AT-compatible dual-8259 setup.
const MADTFlagPCATCompat = 1 << 0

// MADTEntryType describes the type of a MADT record.
type MADTEntryType uint8

// The list of MADT entry types that the kernel decodes.
const (
	MADTEntryTypeLocalAPIC MADTEntryType = iota
	MADTEntryTypeIOAPIC
	MADTEntryTypeIntSrcOverride
	MADTEntryTypeNMISource
	MADTEntryTypeLocalAPICNMI
)

// MADTEntry is the 2-byte header that prefixes every MADT record.
type MADTEntry struct {
	Type   MADTEntryType
	Length uint8
}

// HPET (High Precision Event Timer) describes the location and capabilities
// of an event timer block.
type HPET struct {
	SDTHeader

	HardwareRevID uint8

	// Attributes packs the following fields (LSB first):
	// comparator count (5 bits), counter size (1 bit), reserved (1 bit),
	// legacy replacement IRQ routing capable (1 bit).
	Attributes uint8

	PCIVendorID uint16
	Address     GenericAddress
	HPETNumber  uint8

	// Use MinimumTick().
	RawMinimumTick [2]byte

	PageProtection uint8
}

// ComparatorCount returns the number of comparators in the timer block.
func (h *HPET) ComparatorCount() uint8 {
	return h.Attributes & 0x1f
}

// CounterSize64 returns true if the main counter is 64 bits wide.
func (h *HPET) CounterSize64() bool {
	return h.Attributes&(1<<5) != 0
}

// LegacyReplacement returns true if the timer can replace the legacy PIT and
// RTC interrupt routing.
func (h *HPET) LegacyReplacement() bool {
	return h.Attributes&(1<<7) != 0
}

// MinimumTick returns the minimum clock tick in periodic mode.
func (h *HPET) MinimumTick() uint16 {
	return binary.LittleEndian.Uint16(h.RawMinimumTick[:])
}
