package acpi

import (
	"bootprobe/device/acpi/table"
	"bootprobe/kernel/mm"
	"bytes"
	"strings"
	"testing"
)

func TestRootTableEntries(t *testing.T) {
	specs := []struct {
		xsdt bool
		ptrs []uintptr
	}{
		{false, nil},
		{false, []uintptr{0x1000}},
		{false, []uintptr{0xdeadb000, 0x10, 0x7fff0000, 0x20}},
		{true, []uintptr{0x1000, 0xfeedface00, 0x30}},
	}

	for specIndex, spec := range specs {
		img := &mm.Image{Data: make([]byte, 0x100)}
		putRootTable(img, 0, spec.xsdt, spec.ptrs...)

		header := img.Data[:table.SizeofSDTHeader]
		length := int(header[4]) | int(header[5])<<8
		rt := newRootTable(img.Data[:length], spec.xsdt)

		if got := rt.Len(); got != len(spec.ptrs) {
			t.Errorf("[spec %d] expected %d entries; got %d", specIndex, len(spec.ptrs), got)
			continue
		}

		for i, exp := range spec.ptrs {
			if got := rt.Entry(i); got != exp {
				t.Errorf("[spec %d] expected entry %d to be 0x%x; got 0x%x", specIndex, i, exp, got)
			}
		}
	}

	t.Run("trailing bytes", func(t *testing.T) {
		contents := make([]byte, table.SizeofSDTHeader+4*2+3)
		if got := newRootTable(contents, false).Len(); got != 2 {
			t.Fatalf("expected incomplete pointers to be ignored; got %d entries", got)
		}
	})
}

func TestClassify(t *testing.T) {
	specs := []struct {
		signature string
		exp       tableKind
	}{
		{"FACP", kindFADT},
		{"APIC", kindMADT},
		{"HPET", kindHPET},
		{"FACQ", kindUnknown},
		{"apic", kindUnknown},
		{"HPE ", kindUnknown},
		{"SSDT", kindUnknown},
		{"DSDT", kindUnknown},
	}

	for _, spec := range specs {
		var sig [4]byte
		copy(sig[:], spec.signature)

		if got := classify(sig); got != spec.exp {
			t.Errorf("expected signature %q to be classified as %d; got %d", spec.signature, spec.exp, got)
		}
	}
}

func TestEnumerateTables(t *testing.T) {
	rootAt := func(addr uintptr, xsdt bool) rootPointer {
		return rootPointer{sdtAddr: addr, useXSDT: xsdt}
	}

	t.Run("root checksum mismatch", func(t *testing.T) {
		img := genTestTables(t, acpiRev1)
		img.Data[testRSDTAddr+9]++

		var buf bytes.Buffer
		reg := NewRegistry()
		if err := reg.enumerateTables(&buf, img, rootAt(testRSDTAddr, false)); err != nil {
			t.Fatal(err)
		}

		root, ok := reg.Root()
		if !ok || root.Valid {
			t.Fatalf("expected root to be registered as not valid; got %+v (set: %t)", root, ok)
		}

		for _, get := range []func() bool{
			func() bool { _, ok := reg.FADT(); return ok },
			func() bool { _, ok := reg.MADT(); return ok },
			func() bool { _, ok := reg.HPET(); return ok },
		} {
			if !get() {
				t.Fatal("expected sub-tables to be classified despite root checksum mismatch")
			}
		}

		if exp := "RSDT at 0x0000000000000100: checksum mismatch; parsing anyway\n"; !strings.Contains(buf.String(), exp) {
			t.Fatalf("expected output to contain %q; got:\n%s", exp, buf.String())
		}
	})

	t.Run("inaccessible and duplicate tables", func(t *testing.T) {
		img := genTestTables(t, acpiRev1)
		putRootTable(img, testRSDTAddr, false, testFADTAddr, 0xfff00000, testFADTAddr)

		var buf bytes.Buffer
		reg := NewRegistry()
		if err := reg.enumerateTables(&buf, img, rootAt(testRSDTAddr, false)); err != nil {
			t.Fatal(err)
		}

		if ref, ok := reg.FADT(); !ok || !ref.Valid || ref.Addr != testFADTAddr {
			t.Fatalf("expected valid FADT at 0x%x; got %+v (set: %t)", testFADTAddr, ref, ok)
		}

		if _, ok := reg.MADT(); ok {
			t.Fatal("expected MADT slot to be empty")
		}

		for _, exp := range []string{
			"table at 0x00000000fff00000: physical memory access out of bounds; skipping\n",
			"FACP at 0x0000000000000200: duplicate table; skipping\n",
		} {
			if !strings.Contains(buf.String(), exp) {
				t.Errorf("expected output to contain %q; got:\n%s", exp, buf.String())
			}
		}
	})

	t.Run("truncated table", func(t *testing.T) {
		img := genTestTables(t, acpiRev1)
		putTable(img, 0x7d0, table.HPETSignature, table.SizeofHPET)
		putRootTable(img, testRSDTAddr, false, 0x7d0)

		var buf bytes.Buffer
		reg := NewRegistry()
		if err := reg.enumerateTables(&buf, img, rootAt(testRSDTAddr, false)); err != nil {
			t.Fatal(err)
		}

		if _, ok := reg.HPET(); ok {
			t.Fatal("expected truncated HPET not to be registered")
		}

		if exp := "HPET at 0x00000000000007d0: physical memory access out of bounds; skipping\n"; !strings.Contains(buf.String(), exp) {
			t.Fatalf("expected output to contain %q; got:\n%s", exp, buf.String())
		}
	})

	t.Run("bad root length", func(t *testing.T) {
		img := genTestTables(t, acpiRev1)
		putTable(img, testRSDTAddr, table.RSDTSignature, 8)

		if err := NewRegistry().enumerateTables(&bytes.Buffer{}, img, rootAt(testRSDTAddr, false)); err != errBadRootLength {
			t.Fatalf("expected to get errBadRootLength; got %v", err)
		}
	})

	t.Run("root not accessible", func(t *testing.T) {
		img := genTestTables(t, acpiRev1)

		if err := NewRegistry().enumerateTables(&bytes.Buffer{}, img, rootAt(0x10000, false)); err == nil {
			t.Fatal("expected to get an error")
		}
	})

	t.Run("table added outside of a root walk", func(t *testing.T) {
		img := genTestTables(t, acpiRev1)

		reg := NewRegistry()
		reg.AddTable(&bytes.Buffer{}, img, testHPETAddr)

		ref, ok := reg.HPET()
		if !ok || !ref.Valid || ref.Table.ComparatorCount() != 3 {
			t.Fatalf("expected HPET to be registered; got %+v (set: %t)", ref, ok)
		}

		if _, ok := reg.Root(); ok {
			t.Fatal("expected root slot to be empty")
		}
	})
}
