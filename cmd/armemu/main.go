// Package main provides the armemu command-line emulator.
//
// Usage:
//
//	armemu [options] <image.bin>
//
// The image is copied to address 0 and executed until the all-zero word is
// fetched. The register and memory state is dumped to stdout on exit.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armemu/emu"
	"github.com/sarchlab/armemu/loader"
	"github.com/sarchlab/armemu/timing/core"
	"github.com/sarchlab/armemu/timing/latency"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	timing     bool
	configPath string
	maxInsts   uint64
	verbose    bool
	imagePath  string
}

func parseArgs(args []string, stderr io.Writer) (*options, bool) {
	opts := &options{}

	flags := flag.NewFlagSet("armemu", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&opts.timing, "timing", false, "Enable timing estimation mode")
	flags.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	flags.Uint64Var(&opts.maxInsts, "max", 0, "Maximum instructions to execute (0 = no limit)")
	flags.BoolVar(&opts.verbose, "v", false, "Verbose output (per-instruction trace)")
	flags.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: armemu [options] <image.bin>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, false
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return nil, false
	}
	opts.imagePath = flags.Arg(0)

	return opts, true
}

func newLogger(stderr io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// run executes the command and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	opts, ok := parseArgs(args, stderr)
	if !ok {
		return 1
	}

	logger := newLogger(stderr, opts.verbose)

	timingConfig := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
			return 1
		}
	}

	img, err := loader.Load(opts.imagePath, emu.MemorySize)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading image: %v\n", err)
		return 1
	}

	emulator := emu.NewEmulator(
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
		emu.WithLogger(logger),
		emu.WithMaxInstructions(opts.maxInsts),
	)
	if err := emulator.LoadProgram(img.Data); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading image: %v\n", err)
		return 1
	}

	logger.WithFields(logrus.Fields{
		"image": img.Path,
		"bytes": img.Size(),
	}).Debug("loaded")

	var timingCore *core.Core
	if opts.timing {
		timingCore, err = core.NewCore(emulator,
			core.WithTimingConfig(timingConfig),
			core.WithLogger(logger),
		)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		err = timingCore.Run()
	} else {
		err = emulator.Run()
	}

	status := 0
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		status = 1
	}

	emulator.DumpState(stdout)
	if timingCore != nil {
		_, _ = fmt.Fprintln(stdout)
		timingCore.Stats().WriteReport(stdout)
	}

	return status
}
