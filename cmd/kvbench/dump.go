package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/ahmedtd/kvgen/harness"
)

type DumpCommand struct {
	from     int
	to       int
	variant  string
	segments string
	yield    bool
}

var _ subcommands.Command = (*DumpCommand)(nil)

func (*DumpCommand) Name() string {
	return "dump"
}

func (*DumpCommand) Synopsis() string {
	return "Print the pairs a variant produces"
}

func (*DumpCommand) Usage() string {
	return ``
}

func (c *DumpCommand) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.from, "from", 0, "First index (ignored when --segments is set)")
	f.IntVar(&c.to, "to", 10, "End index, exclusive (ignored when --segments is set)")
	f.StringVar(&c.variant, "variant", "native", "Dispatch variant: native, boxed, static, seq, stream or concat")
	f.StringVar(&c.segments, "segments", "", "Comma-separated from:to ranges, e.g. 0:2,0:0,5:7")
	f.BoolVar(&c.yield, "yield", false, "Yield the processor at every suspension point")
}

func (c *DumpCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx, os.Stdout); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *DumpCommand) executeErr(ctx context.Context, out io.Writer) error {
	v, err := harness.ParseVariant(c.variant)
	if err != nil {
		return err
	}

	segs := []harness.Segment{{From: c.from, To: c.to}}
	if c.segments != "" {
		segs, err = parseSegments(c.segments)
		if err != nil {
			return fmt.Errorf("while parsing --segments: %w", err)
		}
	}
	for _, s := range segs {
		if s.From < 0 {
			return fmt.Errorf("segment %d:%d starts below zero", s.From, s.To)
		}
	}

	it, release, err := harness.Open(v, segs, c.yield)
	if err != nil {
		return err
	}
	defer release()

	w := bufio.NewWriter(out)
	for {
		k, val, ok := it.Next()
		if !ok {
			break
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", k, val); err != nil {
			return fmt.Errorf("while writing output: %w", err)
		}
	}
	return w.Flush()
}

// parseSegments parses "from:to" ranges separated by commas.
func parseSegments(s string) ([]harness.Segment, error) {
	var segs []harness.Segment
	for _, part := range strings.Split(s, ",") {
		fromStr, toStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("segment %q is not of the form from:to", part)
		}
		from, err := strconv.Atoi(fromStr)
		if err != nil {
			return nil, fmt.Errorf("while parsing start of %q: %w", part, err)
		}
		to, err := strconv.Atoi(toStr)
		if err != nil {
			return nil, fmt.Errorf("while parsing end of %q: %w", part, err)
		}
		segs = append(segs, harness.Segment{From: from, To: to})
	}
	return segs, nil
}
