package kfmt

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestRingBuffer(t *testing.T) {
	t.Run("read/write", func(t *testing.T) {
		var rb ringBuffer
		exp := "FACP at 0x7fe1484 len 244"

		n, err := rb.Write([]byte(exp))
		if err != nil {
			t.Fatal(err)
		}

		if n != len(exp) {
			t.Fatalf("expected to write %d bytes; wrote %d", len(exp), n)
		}

		if got := readAll(t, &rb); got != exp {
			t.Fatalf("expected to read %q; got %q", exp, got)
		}

		if _, err = rb.Read(make([]byte, 1)); err != io.EOF {
			t.Fatalf("expected io.EOF after draining the buffer; got %v", err)
		}
	})

	t.Run("overflow keeps the most recent bytes", func(t *testing.T) {
		var rb ringBuffer

		rb.Write([]byte(strings.Repeat("a", ringBufferSize)))
		rb.Write([]byte("tail"))

		got := readAll(t, &rb)
		if len(got) != ringBufferSize {
			t.Fatalf("expected to read %d bytes; got %d", ringBufferSize, len(got))
		}

		if !strings.HasSuffix(got, "tail") || !strings.HasPrefix(got, "aaaa") {
			t.Fatalf("expected oldest bytes to be overwritten; got ...%q", got[len(got)-8:])
		}
	})

	t.Run("read in small chunks across the wrap point", func(t *testing.T) {
		var rb ringBuffer
		rb.rIndex, rb.wIndex = ringBufferSize-3, ringBufferSize-3

		exp := "wrapping"
		rb.Write([]byte(exp))

		var buf bytes.Buffer
		chunk := make([]byte, 3)
		for {
			n, err := rb.Read(chunk)
			buf.Write(chunk[:n])
			if err == io.EOF {
				break
			}
		}

		if got := buf.String(); got != exp {
			t.Fatalf("expected to read %q; got %q", exp, got)
		}
	})
}

func readAll(t *testing.T, rb *ringBuffer) string {
	t.Helper()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rb); err != nil {
		t.Fatal(err)
	}

	return buf.String()
}
