package acpi

import (
	"bootprobe/device/acpi/table"
	"bootprobe/kernel/sync"
)

// Ref is a reference to an ACPI table that lives in firmware-owned physical
// memory. Tables are never copied; Table points directly into the memory
// that was scanned during discovery.
type Ref[T any] struct {
	// Table is a read-only view of the table contents.
	Table *T

	// Addr is the physical address of the table.
	Addr uintptr

	// Valid is false if the table checksum did not add up to zero or the
	// complete table could not be accessed. Such tables are still exposed
	// so callers can decide whether to trust them.
	Valid bool
}

// slot holds a single write-once table reference.
type slot[T any] struct {
	lock sync.RWSpinlock
	ref  Ref[T]
	set  bool
}

// store saves ref in the slot unless the slot is already populated. It
// returns false if the slot was left untouched.
func (s *slot[T]) store(ref Ref[T]) bool {
	s.lock.Acquire()
	defer s.lock.Release()

	if s.set {
		return false
	}

	s.ref, s.set = ref, true
	return true
}

func (s *slot[T]) load() (Ref[T], bool) {
	s.lock.RAcquire()
	ref, set := s.ref, s.set
	s.lock.RRelease()

	return ref, set
}

// Registry holds references to the ACPI tables discovered during boot. It
// has one slot per supported table kind; each slot is populated at most once
// and read concurrently afterwards. An unpopulated slot is a normal state
// that callers must check for.
//
// The zero value is an empty registry ready to use.
type Registry struct {
	root slot[table.SDTHeader]
	fadt slot[table.FADT]
	madt slot[table.MADT]
	hpet slot[table.HPET]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Root returns the root system description table (RSDT or XSDT).
func (r *Registry) Root() (Ref[table.SDTHeader], bool) { return r.root.load() }

// FADT returns the fixed ACPI description table.
func (r *Registry) FADT() (Ref[table.FADT], bool) { return r.fadt.load() }

// MADT returns the multiple APIC description table.
func (r *Registry) MADT() (Ref[table.MADT], bool) { return r.madt.load() }

// HPET returns the high precision event timer table.
func (r *Registry) HPET() (Ref[table.HPET], bool) { return r.hpet.load() }

// fadtCenturyEnd is the offset past the century field of the FADT; tables
// shorter than this predate the field.
const fadtCenturyEnd = 109

// CenturyRegister returns the index of the RTC CMOS register that holds the
// century. It returns false if no FADT was found or if the FADT reports
// that the RTC has no century register.
func (r *Registry) CenturyRegister() (uint8, bool) {
	ref, ok := r.fadt.load()
	if !ok || ref.Table.Length < fadtCenturyEnd || ref.Table.Century == 0 {
		return 0, false
	}

	return ref.Table.Century, true
}
