package acpi

import (
	"bootprobe/device/acpi/table"
	"bootprobe/kernel"
	"bootprobe/kernel/kfmt"
	"bootprobe/kernel/mm"
	"encoding/binary"
	"io"
)

var errBadRootLength = &kernel.Error{Module: "acpi", Message: "root table length is smaller than its header"}

// tableKind identifies the tables that the registry keeps track of.
type tableKind uint8

const (
	kindUnknown tableKind = iota
	kindFADT
	kindMADT
	kindHPET
)

// knownTables lists the signatures of the tables that are classified into
// the registry in the order they are matched.
var knownTables = [...]struct {
	signature [4]byte
	kind      tableKind
}{
	{table.FADTSignature, kindFADT},
	{table.MADTSignature, kindMADT},
	{table.HPETSignature, kindHPET},
}

// classify returns the kind of the table with the supplied signature. Only
// exact byte matches are recognized.
func classify(signature [4]byte) tableKind {
	for _, known := range knownTables {
		if known.signature == signature {
			return known.kind
		}
	}

	return kindUnknown
}

// rootTable provides access to the pointer array that follows the header of
// an RSDT (4-byte entries) or XSDT (8-byte entries).
type rootTable struct {
	payload []byte
	ptrSize int
}

// newRootTable wraps the complete contents of a root table, header included.
func newRootTable(contents []byte, useXSDT bool) rootTable {
	rt := rootTable{payload: contents[table.SizeofSDTHeader:], ptrSize: 4}
	if useXSDT {
		rt.ptrSize = 8
	}

	return rt
}

// Len returns the number of sub-table pointers. Trailing bytes that do not
// form a complete pointer are ignored.
func (rt rootTable) Len() int {
	return len(rt.payload) / rt.ptrSize
}

// Entry returns the physical address stored in the i-th pointer.
func (rt rootTable) Entry(i int) uintptr {
	off := i * rt.ptrSize
	if rt.ptrSize == 8 {
		return uintptr(binary.LittleEndian.Uint64(rt.payload[off:]))
	}

	return uintptr(binary.LittleEndian.Uint32(rt.payload[off:]))
}

// enumerateTables reads the root table referenced by rp, stores it in the
// registry and classifies every sub-table it points to. Checksum failures
// and unknown signatures are reported to w but do not stop the walk.
func (r *Registry) enumerateTables(w io.Writer, mem mm.PhysMemory, rp rootPointer) *kernel.Error {
	rootHeader, err := mm.View[table.SDTHeader](mem, rp.sdtAddr)
	if err != nil {
		return err
	}

	if rootHeader.Length < table.SizeofSDTHeader {
		return errBadRootLength
	}

	contents, err := mem.Bytes(rp.sdtAddr, uintptr(rootHeader.Length))
	if err != nil {
		return err
	}

	rootValid := validChecksum(contents)
	if !rootValid {
		kfmt.Fprintf(w, "%s at 0x%16x: checksum mismatch; parsing anyway\n",
			string(rootHeader.Signature[:]),
			rp.sdtAddr,
		)
	}
	r.root.store(Ref[table.SDTHeader]{Table: rootHeader, Addr: rp.sdtAddr, Valid: rootValid})

	rt := newRootTable(contents, rp.useXSDT)
	for i := 0; i < rt.Len(); i++ {
		r.classifyTable(w, mem, rt.Entry(i))
	}

	return nil
}

// AddTable classifies the table at addr and stores it in the registry. It
// is used for tables that are obtained without walking a root table.
func (r *Registry) AddTable(w io.Writer, mem mm.PhysMemory, addr uintptr) {
	r.classifyTable(w, mem, addr)
}

// classifyTable inspects the table header at addr and, if the signature is
// one of the known tables, stores a typed reference in the matching slot.
func (r *Registry) classifyTable(w io.Writer, mem mm.PhysMemory, addr uintptr) {
	header, err := mm.View[table.SDTHeader](mem, addr)
	if err != nil {
		kfmt.Fprintf(w, "table at 0x%16x: %s; skipping\n", addr, err.Message)
		return
	}

	kind := classify(header.Signature)
	if kind == kindUnknown {
		kfmt.Fprintf(w, "%s at 0x%16x: not used; skipping\n", string(header.Signature[:]), addr)
		return
	}

	contents, err := mem.Bytes(addr, uintptr(header.Length))
	valid := err == nil && header.Length >= table.SizeofSDTHeader && validChecksum(contents)
	if !valid {
		kfmt.Fprintf(w, "%s at 0x%16x: checksum mismatch\n", string(header.Signature[:]), addr)
	}

	var stored bool
	switch kind {
	case kindFADT:
		stored, err = storeTable(&r.fadt, mem, addr, valid)
	case kindMADT:
		stored, err = storeTable(&r.madt, mem, addr, valid)
	case kindHPET:
		stored, err = storeTable(&r.hpet, mem, addr, valid)
	}

	switch {
	case err != nil:
		kfmt.Fprintf(w, "%s at 0x%16x: %s; skipping\n", string(header.Signature[:]), addr, err.Message)
	case !stored:
		kfmt.Fprintf(w, "%s at 0x%16x: duplicate table; skipping\n", string(header.Signature[:]), addr)
	}
}

// storeTable overlays the typed layout T at addr and stores it in s.
func storeTable[T any](s *slot[T], mem mm.PhysMemory, addr uintptr, valid bool) (bool, *kernel.Error) {
	tbl, err := mm.View[T](mem, addr)
	if err != nil {
		return false, err
	}

	return s.store(Ref[T]{Table: tbl, Addr: addr, Valid: valid}), nil
}
