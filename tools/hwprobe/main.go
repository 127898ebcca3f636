// Command hwprobe runs the kernel's ACPI and PCI discovery code against the
// machine it runs on and prints the same report the kernel prints at boot.
package main

import (
	"fmt"
	"io"
	"os"

	"bootprobe/device/acpi"
	"bootprobe/device/pci"
	"bootprobe/tools/hwprobe/devmem"
	"bootprobe/tools/hwprobe/sysfs"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	sourceMem   = "mem"
	sourceSysfs = "sysfs"
)

type options struct {
	memPath   string
	sysfsPath string
	source    string
	acpi      bool
	pci       bool
	verbose   int
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("hwprobe", flag.ContinueOnError)
	fs.StringVar(&opts.memPath, "mem", "/dev/mem", "physical memory device scanned for the ACPI RSDP")
	fs.StringVar(&opts.sysfsPath, "sysfs", "/sys", "sysfs mount point")
	fs.StringVar(&opts.source, "source", sourceSysfs, "where to read ACPI tables from: mem or sysfs")
	fs.BoolVar(&opts.acpi, "acpi", true, "report ACPI tables")
	fs.BoolVar(&opts.pci, "pci", true, "report PCI functions")
	fs.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.source != sourceMem && opts.source != sourceSysfs {
		return opts, errors.Errorf("unsupported source %q", opts.source)
	}

	return opts, nil
}

func newLogger(verbose int) (logr.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbose))
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), errors.Wrap(err, "build logger")
	}

	return zapr.NewLogger(zl), nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(log, opts, os.Stdout); err != nil {
		log.Error(err, "Hardware probe failed")
		os.Exit(1)
	}
}

func run(log logr.Logger, opts options, out io.Writer) error {
	if opts.acpi {
		if err := reportACPI(log, opts, out); err != nil {
			return err
		}
	}

	if opts.pci {
		if err := reportPCI(log, opts, out); err != nil {
			return err
		}
	}

	return nil
}

func reportACPI(log logr.Logger, opts options, out io.Writer) error {
	fmt.Fprintln(out, "ACPI:")
	tables := acpi.NewRegistry()

	if opts.source == sourceMem {
		mem, err := devmem.Open(log, opts.memPath)
		if err != nil {
			return err
		}
		defer mem.Close()

		if kerr := acpi.Discover(out, mem, tables); kerr != nil {
			return errors.Wrapf(kerr, "discover ACPI tables in %s", opts.memPath)
		}

		return nil
	}

	src, err := sysfs.NewSource(log, opts.sysfsPath)
	if err != nil {
		return err
	}

	img, addrs, err := src.ACPITables()
	if err != nil {
		return err
	}

	for _, addr := range addrs {
		tables.AddTable(out, img, addr)
	}
	acpi.WriteReport(out, img, tables)

	if _, ok := tables.FADT(); !ok {
		log.Info("No FADT found", "sysfs", opts.sysfsPath)
	}

	return nil
}

// reportPCI enumerates PCI functions through sysfs; the legacy port pair is
// not accessible to user processes.
func reportPCI(log logr.Logger, opts options, out io.Writer) error {
	fmt.Fprintln(out, "PCI:")

	src, err := sysfs.NewSource(log, opts.sysfsPath)
	if err != nil {
		return err
	}

	cs, err := src.PCIConfigSpace()
	if err != nil {
		return err
	}

	drv, kerr := pci.Probe(cs)()
	if kerr != nil {
		return errors.Wrap(kerr, "probe PCI")
	}

	if kerr = drv.DriverInit(out); kerr != nil {
		return errors.Wrap(kerr, "enumerate PCI functions")
	}

	return nil
}
