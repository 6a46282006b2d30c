// seedsim walks through building a Bitcoin wallet by hand: coin tosses
// become entropy, entropy becomes a BIP-39 mnemonic, the mnemonic becomes
// a seed, and the seed becomes BIP-44/BIP-84 receiving addresses.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/Klingon-tech/seedsim/config"
	"github.com/Klingon-tech/seedsim/internal/log"
	"github.com/Klingon-tech/seedsim/pkg/crypto"
)

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if flags.Help {
		config.PrintUsage(os.Stdout)
		return
	}
	if flags.Version {
		fmt.Printf("seedsim %s\n", config.Version)
		return
	}
	if len(flags.Args) == 0 {
		config.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, crypto.NewSecp256k1(), bufio.NewReader(os.Stdin), os.Stdout)
	if term.IsTerminal(int(syscall.Stdin)) {
		a.readSecret = readPassword
	}
	defer func() { a.flow.Restart() }()

	log.CLI.Debug().
		Str("network", string(cfg.Network)).
		Str("type", cfg.AddressType().String()).
		Int("words", cfg.Mnemonic.Words).
		Msg("Starting")

	if err := a.run(ctx, flags.Args[0], flags.Args[1:]); err != nil {
		a.flow.Restart()
		fatal("%v", err)
	}
}

// readPassword prompts on stderr and reads without echo.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
