// worldsign produces the off-chain authorizations used by the world
// contracts: registration terms grants, vector claims and jump approvals.
// It prints the canonical digest and the 65-byte signature so they can be
// handed to whoever submits the transaction.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

func commands() []command {
	return []command{
		{name: "terms", summary: "grant registration terms to an owner", run: runTerms},
		{name: "vector", summary: "authorize a vector claim for an owner", run: runVector},
		{name: "jump", summary: "approve a jump through a portal", run: runJump},
		{name: "recover", summary: "recover the signer of a digest", run: runRecover},
	}
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return fmt.Errorf("a subcommand is required")
		}
		return pflag.ErrHelp
	}
	for _, cmd := range commands() {
		if cmd.name == args[0] {
			return cmd.run(args[1:], stdout)
		}
	}
	printUsage(stderr)
	return fmt.Errorf("unknown subcommand %q", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  worldsign <subcommand> [flags]\n\nSubcommands:\n")
	for _, cmd := range commands() {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nThe signing key is read from --key or WORLD_PRIVATE_KEY.\n")
}

type keyFlags struct {
	key string
}

func (k *keyFlags) add(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&k.key, "key", "", "hex or DER-encoded secp256k1 private key (default: $WORLD_PRIVATE_KEY)")
}

func (k *keyFlags) signer() (*signing.KeySigner, error) {
	raw := strings.TrimSpace(k.key)
	if raw == "" {
		config, err := shared.OperatorConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("no --key given: %w", err)
		}
		raw = config.PrivateKey
	}
	return signing.KeySignerFromString(raw)
}

func newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("worldsign "+name, pflag.ContinueOnError)
	flagSet.SortFlags = false
	return flagSet
}
