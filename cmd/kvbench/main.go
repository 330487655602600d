// Command kvbench compares the cost of advancing a key/value generator
// through different dispatch mechanisms.
//
// To benchmark: `go run ./cmd/kvbench run --report=kvbench.cbor`
//
// To inspect a saved run: `go run ./cmd/kvbench show --report=kvbench.cbor`
//
// To print a sequence: `go run ./cmd/kvbench dump --segments=0:2,0:0,5:7`
//
// To store a sequence: `go run ./cmd/kvbench load --dir=/tmp/kvbench-db --to=100000`
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&RunCommand{}, "")
	subcommands.Register(&ShowCommand{}, "")
	subcommands.Register(&DumpCommand{}, "")
	subcommands.Register(&LoadCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
