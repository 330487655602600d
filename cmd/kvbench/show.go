package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"

	"github.com/ahmedtd/kvgen/harness"
)

type ShowCommand struct {
	reportFile string
}

var _ subcommands.Command = (*ShowCommand)(nil)

func (*ShowCommand) Name() string {
	return "show"
}

func (*ShowCommand) Synopsis() string {
	return "Print a saved benchmark report"
}

func (*ShowCommand) Usage() string {
	return ``
}

func (c *ShowCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.reportFile, "report", "kvbench.cbor", "Path to a report written by the run command")
}

func (c *ShowCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *ShowCommand) executeErr(ctx context.Context) error {
	f, err := os.Open(c.reportFile)
	if err != nil {
		return fmt.Errorf("while opening report file: %w", err)
	}
	defer f.Close()

	report, err := harness.ReadReport(f)
	if err != nil {
		return fmt.Errorf("while reading %s: %w", c.reportFile, err)
	}

	return report.PrintTable(os.Stdout)
}
