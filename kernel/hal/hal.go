// Package hal runs the boot-time hardware detection sequence.
package hal

import (
	"bootprobe/device"
	"bootprobe/kernel/kfmt"
	"bytes"
	"sort"
)

var (
	// panicFn halts the boot sequence when a required driver fails. It
	// is mocked by tests.
	panicFn = kfmt.Panic

	strBuf bytes.Buffer
)

// DetectHardware sorts drivers by detection priority, probes them and
// initializes the drivers whose hardware is present. It returns the list of
// successfully initialized drivers.
//
// A failing probe or init aborts the boot sequence via kfmt.Panic if the
// driver is marked as required; otherwise the failure is logged and the
// driver is skipped.
func DetectHardware(drivers device.DriverInfoList) []device.Driver {
	sort.Stable(drivers)

	return probe(drivers)
}

// probe executes the probe function for each driver and initializes the
// drivers it returns.
func probe(driverInfoList device.DriverInfoList) []device.Driver {
	var (
		w             = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}
		activeDrivers []device.Driver
	)

	for _, info := range driverInfoList {
		// each driver starts on a fresh line
		w = kfmt.PrefixWriter{Sink: w.Sink}

		drv, err := info.Probe()
		if err != nil {
			if info.Required {
				panicFn(err)
				continue
			}

			w.Prefix = []byte("[hal] ")
			kfmt.Fprintf(&w, "probe failed: %s\n", err.Message)
			continue
		}

		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err = drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			if info.Required {
				panicFn(err)
			}
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		activeDrivers = append(activeDrivers, drv)
	}

	return activeDrivers
}
