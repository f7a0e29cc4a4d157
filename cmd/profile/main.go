// Package main provides a profiling wrapper for armemu to identify performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armemu/emu"
	"github.com/sarchlab/armemu/loader"
	"github.com/sarchlab/armemu/timing/core"
)

var (
	timing      = flag.Bool("timing", false, "Enable timing estimation mode")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <image.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	imagePath := flag.Arg(0)

	img, err := loader.Load(imagePath, emu.MemorySize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s (%d bytes)\n", img.Path, img.Size())

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// GPIO output would dominate the profile, so it is discarded.
	emulator := emu.NewEmulator(
		emu.WithStdout(io.Discard),
		emu.WithLogger(logger),
		emu.WithMaxInstructions(*instruction),
	)
	if err := emulator.LoadProgram(img.Data); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()

	var runErr error
	var stats core.Stats
	if *timing {
		timingCore, err := core.NewCore(emulator, core.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		runErr = timingCore.Run()
		stats = timingCore.Stats()
	} else {
		runErr = emulator.Run()
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	instrCount := emulator.InstructionCount()

	fmt.Printf("\nProfiling Results:\n")
	if runErr != nil {
		fmt.Printf("Stopped: %v\n", runErr)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	if *timing {
		fmt.Printf("Estimated cycles: %d (CPI %.3f)\n", stats.Cycles, stats.CPI())
	}
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}
