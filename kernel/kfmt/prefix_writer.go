package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// A writer where all writes get sent to. If nil, output is stored
	// in the early print ring buffer until an output sink is attached.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set when the last write did not end with a line feed.
	midLine bool
}

// Write forwards p to the sink, emitting the prefix before the first byte of
// every line. The injected prefix is not included in the returned count.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var (
		written, start int
		sink           = w.Sink
	)

	if sink == nil {
		sink = &earlyPrintBuffer
	}

	for start < len(p) {
		if !w.midLine {
			sink.Write(w.Prefix)
			w.midLine = true
		}

		end := start
		for end < len(p) && p[end] != '\n' {
			end++
		}

		if end < len(p) {
			// include the line feed and start a new line on the next byte
			end++
			w.midLine = false
		}

		n, err := sink.Write(p[start:end])
		written += n
		if err != nil {
			return written, err
		}

		start = end
	}

	return written, nil
}
