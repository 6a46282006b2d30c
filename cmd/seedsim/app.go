package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/seedsim/config"
	"github.com/Klingon-tech/seedsim/internal/log"
	"github.com/Klingon-tech/seedsim/internal/wallet"
	"github.com/Klingon-tech/seedsim/pkg/crypto"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// milestoneEvery is how often the toss loop reports progress in words.
const milestoneEvery = 10

// progressWidth is the number of cells in the toss progress bar.
const progressWidth = 32

// app is one CLI invocation: configuration, the wallet pipeline and the
// terminal it talks to.
type app struct {
	cfg     *config.Config
	deriver *wallet.Deriver
	flow    *wallet.Flow
	in      *bufio.Reader
	out     io.Writer
	logger  zerolog.Logger

	// readSecret reads a line without echo. When nil, secrets are read
	// from in like any other line.
	readSecret func(prompt string) (string, error)
}

func newApp(cfg *config.Config, curve crypto.Curve, in *bufio.Reader, out io.Writer) *app {
	deriver := wallet.NewDeriver(curve, cfg.NetParams(),
		wallet.WithWorkers(cfg.Derive.Workers),
		wallet.WithLogger(log.Wallet),
	)
	a := &app{
		cfg:     cfg,
		deriver: deriver,
		in:      in,
		out:     out,
		logger:  log.CLI,
	}
	a.flow = wallet.NewFlow(a.codec(cfg.Mnemonic.Checksum), deriver)
	return a
}

func (a *app) codec(checksum bool) *wallet.Codec {
	return wallet.NewCodec(wallet.English(), wallet.WithChecksumVerification(checksum))
}

// run dispatches one command.
func (a *app) run(ctx context.Context, cmd string, args []string) error {
	a.logger.Debug().Str("command", cmd).Msg("Running command")

	switch cmd {
	case "toss":
		return a.cmdToss(ctx, args)
	case "random":
		return a.cmdRandom(ctx, args)
	case "import":
		return a.cmdImport(ctx, args)
	case "addresses":
		return a.cmdAddresses(ctx, args)
	case "xpub":
		return a.cmdXpub(ctx, args)
	case "watch":
		return a.cmdWatch(ctx, args)
	case "find":
		return a.cmdFind(ctx, args)
	case "help", "--help", "-h":
		config.PrintUsage(a.out)
		return nil
	default:
		return fmt.Errorf("unknown command: %s (see 'seedsim help')", cmd)
	}
}

// ── Input helpers ───────────────────────────────────────────────────────

// prompt prints label and returns the trimmed reply. A closed input with
// nothing typed yields io.EOF.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) secret(label string) (string, error) {
	if a.readSecret != nil {
		return a.readSecret(label)
	}
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return trimNewline(line), nil
}

// confirm asks a yes/no question; anything but y/yes is no.
func (a *app) confirm(label string) (bool, error) {
	reply, err := a.prompt(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(reply) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// promptAddressType asks for segwit or legacy, keeping the configured type
// on an empty reply.
func (a *app) promptAddressType() (types.AddressType, error) {
	def := a.cfg.AddressType()
	for {
		reply, err := a.prompt(fmt.Sprintf("Address type [segwit/legacy] (default %s): ", def))
		if err != nil {
			return 0, err
		}
		if reply == "" {
			return def, nil
		}
		typ, err := types.ParseAddressType(reply)
		if err == nil {
			return typ, nil
		}
		fmt.Fprintln(a.out, "Please enter segwit or legacy.")
	}
}

// promptCount asks for a batch size within the configured limits.
func (a *app) promptCount(label string, def int) (uint32, error) {
	for {
		reply, err := a.prompt(fmt.Sprintf("%s [%d-%d] (default %d): ", label,
			config.MinAddressCount, config.MaxAddressCount, def))
		if err != nil {
			return 0, err
		}
		if reply == "" {
			return uint32(def), nil
		}
		n, err := strconv.Atoi(reply)
		if err == nil && n >= config.MinAddressCount && n <= config.MaxAddressCount {
			return uint32(n), nil
		}
		fmt.Fprintf(a.out, "Please enter a number from %d to %d.\n",
			config.MinAddressCount, config.MaxAddressCount)
	}
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// ── Output helpers ──────────────────────────────────────────────────────

func progressBar(state wallet.EntropyState) string {
	filled := state.Len * progressWidth / state.Target
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + "]"
}

func (a *app) printMnemonic(m wallet.Mnemonic) {
	fmt.Fprintf(a.out, "\nYour %d-word mnemonic (write this down!):\n", m.Len())
	for i, w := range m.Words() {
		fmt.Fprintf(a.out, "  %2d. %s\n", i+1, w)
	}
	fmt.Fprintln(a.out)
}

func (a *app) printAddresses(addrs []types.Address) {
	for _, addr := range addrs {
		fmt.Fprintf(a.out, "  %4d  %-20s  %s\n", addr.Index, addr.Path, addr.Text)
	}
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

// ── Session loop ────────────────────────────────────────────────────────

// deriveInteractive asks for a passphrase, address type and count, unlocks
// the flow's mnemonic into a session and offers more batches until the
// user declines.
func (a *app) deriveInteractive(ctx context.Context) error {
	pass, err := a.secret("Passphrase (optional, press Enter for none): ")
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	typ, err := a.promptAddressType()
	if err != nil {
		return err
	}
	count, err := a.promptCount("How many addresses", a.cfg.Address.Count)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Stretching the mnemonic into a seed (2048 rounds of PBKDF2)...")
	sess, err := a.flow.Unlock(ctx, pass, typ)
	if err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	defer a.flow.Restart()

	if key, err := sess.AccountKey(); err == nil {
		fmt.Fprintf(a.out, "\nAccount public key:\n  %s\n", key)
	}

	batch := count
	for {
		// A restart between batches ends the loop with ErrNoSession.
		sess, err := a.flow.Session()
		if err != nil {
			return err
		}
		addrs, err := sess.More(ctx, batch)
		if err != nil {
			return fmt.Errorf("derive addresses: %w", err)
		}
		fmt.Fprintf(a.out, "\n%s addresses:\n", sess.Type())
		a.printAddresses(addrs)

		more, err := a.confirm(fmt.Sprintf("\nGenerate %d more? [y/N]: ", a.cfg.Address.More))
		if err != nil || !more {
			return nil
		}
		batch = uint32(a.cfg.Address.More)
	}
}
