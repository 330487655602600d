package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/google/subcommands"

	"github.com/ahmedtd/kvgen/harness"
)

type RunCommand struct {
	configFile string
	count      int
	yield      bool

	reportFile  string
	samplesFile string

	cpuProfileFile string
}

var _ subcommands.Command = (*RunCommand)(nil)

func (*RunCommand) Name() string {
	return "run"
}

func (*RunCommand) Synopsis() string {
	return "Verify and benchmark every dispatch variant"
}

func (*RunCommand) Usage() string {
	return ``
}

func (c *RunCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "Path to a TOML benchmark plan (built-in plan if empty)")
	f.IntVar(&c.count, "count", 0, "Override the number of measurements per variant")
	f.BoolVar(&c.yield, "yield", false, "Yield the processor at every suspension point")

	f.StringVar(&c.reportFile, "report", "", "Write the run as a CBOR report")
	f.StringVar(&c.samplesFile, "samples", "", "Write ns/op samples as an npz archive")

	f.StringVar(&c.cpuProfileFile, "cpu-profile", "", "Write a CPU profile")
}

func (c *RunCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *RunCommand) executeErr(ctx context.Context) error {
	if c.cpuProfileFile != "" {
		f, err := os.Create(c.cpuProfileFile)
		if err != nil {
			return fmt.Errorf("while creating CPU profile file: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("while starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	plan := harness.DefaultPlan()
	if c.configFile != "" {
		var err error
		plan, err = harness.LoadPlan(c.configFile)
		if err != nil {
			return fmt.Errorf("while loading plan: %w", err)
		}
	}
	for i := range plan.Benchmarks {
		if c.count > 0 {
			plan.Benchmarks[i].Count = c.count
		}
		if c.yield {
			plan.Benchmarks[i].Yield = true
		}
	}

	report, err := harness.Run(ctx, plan)
	if err != nil {
		return fmt.Errorf("while running benchmarks: %w", err)
	}

	if err := report.PrintTable(os.Stdout); err != nil {
		return err
	}

	if c.reportFile != "" {
		if err := writeFile(c.reportFile, report.WriteCBOR); err != nil {
			return fmt.Errorf("while writing report: %w", err)
		}
		log.Printf("Report written to %s", c.reportFile)
	}

	if c.samplesFile != "" {
		if err := writeFile(c.samplesFile, report.WriteSamples); err != nil {
			return fmt.Errorf("while writing samples: %w", err)
		}
		log.Printf("Samples written to %s", c.samplesFile)
	}

	return nil
}
