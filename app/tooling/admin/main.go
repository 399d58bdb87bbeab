// This program performs administrative tasks against a running node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/powchain/app/tooling/admin/commands"
	"github.com/ardanlabs/powchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	log.Infow("startup", "version", build)

	return processCommands(os.Args, log)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, log *zap.SugaredLogger) error {
	if len(args) < 3 {
		return errors.New("usage: admin <validate|bals> <node-url> [account]")
	}

	chain, err := commands.FetchChain(args[2])
	if err != nil {
		return fmt.Errorf("fetching chain: %w", err)
	}
	log.Infow("fetched chain", "url", args[2], "length", chain.Len(), "latest", chain.LatestBlock().Hash)

	switch args[1] {
	case "validate":
		if err := commands.Validate(os.Stdout, chain); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	case "bals":
		var account string
		if len(args) == 4 {
			account = args[3]
		}

		if err := commands.Balances(os.Stdout, chain, account); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
