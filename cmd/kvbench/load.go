package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"

	"github.com/ahmedtd/kvgen/kvgen"
	"github.com/ahmedtd/kvgen/store"
)

type LoadCommand struct {
	dir    string
	bucket string
	from   int
	to     int
	batch  int
}

var _ subcommands.Command = (*LoadCommand)(nil)

func (*LoadCommand) Name() string {
	return "load"
}

func (*LoadCommand) Synopsis() string {
	return "Load generated pairs into a nutsdb bucket"
}

func (*LoadCommand) Usage() string {
	return ``
}

func (c *LoadCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "nutsdb directory")
	f.StringVar(&c.bucket, "bucket", "pairs", "Bucket to load into")
	f.IntVar(&c.from, "from", 0, "First index")
	f.IntVar(&c.to, "to", 100000, "End index, exclusive")
	f.IntVar(&c.batch, "batch", store.DefaultBatch, "Puts per transaction")
}

func (c *LoadCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *LoadCommand) executeErr(ctx context.Context) error {
	if c.dir == "" {
		return fmt.Errorf("--dir is required")
	}
	if c.from < 0 {
		return fmt.Errorf("--from must not be negative")
	}

	s, err := store.Open(c.dir, c.bucket)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Load(kvgen.New(c.from, c.to), c.batch)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d pairs into %s/%s", n, c.dir, c.bucket)

	it, err := s.Iterator()
	if err != nil {
		return err
	}
	stored := 0
	for {
		if _, _, ok := it.Next(); !ok {
			break
		}
		stored++
	}
	// The bucket may hold pairs from earlier loads.
	if stored < n {
		return fmt.Errorf("bucket holds %d pairs after loading %d", stored, n)
	}
	log.Printf("Bucket %s holds %d pairs", c.bucket, stored)

	return nil
}
