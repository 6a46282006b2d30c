package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/Klingon-tech/seedsim/config"
	"github.com/Klingon-tech/seedsim/internal/wallet"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// defaultFindLimit is how many indices find scans without --limit.
const defaultFindLimit = 1000

// ── toss ────────────────────────────────────────────────────────────────

func (a *app) cmdToss(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("toss", flag.ContinueOnError)
	fs.SetOutput(a.out)
	paste := fs.Bool("paste", false, "Paste all tosses as one line of 0/1")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bits := a.cfg.EntropyBits()
	state, err := a.flow.Begin(bits)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Toss a coin %d times for a %d-word mnemonic.\n",
		bits, wallet.WordsForBits(bits))

	if *paste {
		line, err := a.prompt(fmt.Sprintf("Paste %d tosses (1 = heads, 0 = tails): ", bits))
		if err != nil {
			return fmt.Errorf("read tosses: %w", err)
		}
		tosses := strings.Join(strings.Fields(line), "")
		if len(tosses) != bits {
			return fmt.Errorf("%w: expected %d tosses, got %d", wallet.ErrValidation, bits, len(tosses))
		}
		if _, err := a.flow.AppendEntropyBits(tosses); err != nil {
			return err
		}
	} else {
		for !state.Complete {
			reply, err := a.prompt(fmt.Sprintf("Toss %d/%d [1 = heads, 0 = tails]: ", state.Len+1, state.Target))
			if err != nil {
				return fmt.Errorf("read toss: %w", err)
			}
			if reply != "0" && reply != "1" {
				fmt.Fprintln(a.out, "Enter 1 for heads or 0 for tails.")
				continue
			}
			state, err = a.flow.AppendEntropyBit(reply[0] - '0')
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %d/%d\n", progressBar(state), state.Len, state.Target)
			if state.Len%milestoneEvery == 0 && !state.Complete {
				fmt.Fprintf(a.out, "%d tosses done, %d to go.\n", state.Len, state.Remaining())
			}
		}
	}

	m, err := a.flow.Finalize()
	if err != nil {
		return err
	}
	a.printMnemonic(m)
	return a.deriveInteractive(ctx)
}

// ── random ──────────────────────────────────────────────────────────────

func (a *app) cmdRandom(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("random", flag.ContinueOnError)
	fs.SetOutput(a.out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "WARNING: this mnemonic comes from your computer's random source, not")
	fmt.Fprintln(a.out, "from coin tosses. Use it to learn how the steps fit together, never to")
	fmt.Fprintln(a.out, "hold real funds.")
	reply, err := a.prompt("Type LEARNING to continue: ")
	if err != nil {
		return err
	}
	if reply != "LEARNING" {
		return errors.New("random entropy declined")
	}

	m, err := a.flow.UseRandomEntropy(a.cfg.EntropyBits())
	if err != nil {
		return err
	}
	a.printMnemonic(m)
	return a.deriveInteractive(ctx)
}

// ── import ──────────────────────────────────────────────────────────────

func (a *app) cmdImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(a.out)
	text := fs.String("mnemonic", "", "Mnemonic phrase (prompted word by word if empty)")
	noChecksum := fs.Bool("no-checksum", false, "Accept a phrase whose checksum does not match")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *noChecksum {
		a.flow = wallet.NewFlow(a.codec(false), a.deriver)
	}

	var (
		m   wallet.Mnemonic
		err error
	)
	if *text != "" {
		m, err = a.flow.Import(*text)
	} else {
		m, err = a.importWords()
	}
	if errors.Is(err, wallet.ErrChecksum) {
		return fmt.Errorf("%w (use --no-checksum to accept it anyway)", err)
	}
	if err != nil {
		return err
	}
	if !a.flow.Codec().VerifiesChecksum() {
		fmt.Fprintln(a.out, "Checksum verification is off.")
	}
	fmt.Fprintf(a.out, "Mnemonic accepted (%d words).\n", m.Len())
	return a.deriveInteractive(ctx)
}

// importWords reads a phrase word by word, offering another attempt while
// the checksum does not match.
func (a *app) importWords() (wallet.Mnemonic, error) {
	for {
		words, err := a.readWords()
		if err != nil {
			return wallet.Mnemonic{}, err
		}
		m, err := a.flow.Import(strings.Join(words, " "))
		if !errors.Is(err, wallet.ErrChecksum) {
			return m, err
		}
		again, cerr := a.confirm("The checksum does not match. Try again? [y/N]: ")
		if cerr != nil || !again {
			return wallet.Mnemonic{}, err
		}
	}
}

// readWords asks for the phrase length and then each word, re-prompting
// on words outside the dictionary.
func (a *app) readWords() ([]string, error) {
	n := a.cfg.Mnemonic.Words
	for {
		reply, err := a.prompt(fmt.Sprintf("Number of words [12/24] (default %d): ", n))
		if err != nil {
			return nil, err
		}
		if reply == "" {
			break
		}
		if v, err := strconv.Atoi(reply); err == nil && (v == wallet.Words12 || v == wallet.Words24) {
			n = v
			break
		}
		fmt.Fprintln(a.out, "Please enter 12 or 24.")
	}

	dict := a.flow.Codec().Dictionary()
	words := make([]string, 0, n)
	for len(words) < n {
		reply, err := a.prompt(fmt.Sprintf("Word %d/%d: ", len(words)+1, n))
		if err != nil {
			return nil, err
		}
		word := strings.ToLower(reply)
		if dict.Contains(word) {
			words = append(words, word)
			continue
		}
		fmt.Fprintf(a.out, "%q is not in the word list.\n", word)
		if hints := suggest(dict, word); len(hints) > 0 {
			fmt.Fprintf(a.out, "Did you mean: %s\n", strings.Join(hints, ", "))
		}
	}
	return words, nil
}

// suggest returns up to 10 dictionary words sharing the longest available
// prefix with word.
func suggest(dict *wallet.Dictionary, word string) []string {
	for n := len(word); n > 0; n-- {
		if hints := dict.WithPrefix(word[:n], 10); len(hints) > 0 {
			return hints
		}
	}
	return nil
}

// ── addresses / xpub / watch / find ─────────────────────────────────────

// seedOptions are the flags shared by commands that need a seed.
type seedOptions struct {
	mnemonic     *string
	typ          *string
	noPassphrase *bool
	noChecksum   *bool
}

func addSeedFlags(fs *flag.FlagSet, cfg *config.Config) seedOptions {
	return seedOptions{
		mnemonic:     fs.String("mnemonic", "", "Mnemonic phrase (prompted if empty)"),
		typ:          fs.String("type", cfg.Address.Type, "Address type: segwit or legacy"),
		noPassphrase: fs.Bool("no-passphrase", false, "Skip the passphrase prompt"),
		noChecksum:   fs.Bool("no-checksum", !cfg.Mnemonic.Checksum, "Accept a phrase whose checksum does not match"),
	}
}

// seed parses the mnemonic, asks for the passphrase and stretches them
// into a seed. The caller must Zero the result.
func (a *app) seed(ctx context.Context, opts seedOptions) (wallet.Seed, error) {
	phrase := *opts.mnemonic
	if phrase == "" {
		var err error
		phrase, err = a.secret("Mnemonic: ")
		if err != nil {
			return wallet.Seed{}, fmt.Errorf("read mnemonic: %w", err)
		}
	}
	m, err := a.codec(!*opts.noChecksum).Parse(phrase)
	if err != nil {
		return wallet.Seed{}, err
	}

	pass := ""
	if !*opts.noPassphrase {
		pass, err = a.secret("Passphrase (optional, press Enter for none): ")
		if err != nil {
			return wallet.Seed{}, fmt.Errorf("read passphrase: %w", err)
		}
	}
	return wallet.SeedFromMnemonic(ctx, m, pass).Wait(ctx)
}

func (a *app) cmdAddresses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("addresses", flag.ContinueOnError)
	fs.SetOutput(a.out)
	opts := addSeedFlags(fs, a.cfg)
	start := fs.Uint("start", 0, "First address index")
	count := fs.Int("count", a.cfg.Address.Count, "Number of addresses")
	asJSON := fs.Bool("json", false, "Print addresses as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	typ, err := types.ParseAddressType(*opts.typ)
	if err != nil {
		return err
	}
	if err := checkRange(*start, *count); err != nil {
		return err
	}

	seed, err := a.seed(ctx, opts)
	if err != nil {
		return err
	}
	defer seed.Zero()

	addrs, err := a.deriver.AddressesForRange(ctx, seed, typ, uint32(*start), uint32(*count))
	if err != nil {
		return fmt.Errorf("derive addresses: %w", err)
	}
	if *asJSON {
		return a.printJSON(addrs)
	}
	fmt.Fprintf(a.out, "%s addresses:\n", typ)
	a.printAddresses(addrs)
	return nil
}

func (a *app) cmdXpub(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("xpub", flag.ContinueOnError)
	fs.SetOutput(a.out)
	opts := addSeedFlags(fs, a.cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	typ, err := types.ParseAddressType(*opts.typ)
	if err != nil {
		return err
	}
	path, err := wallet.AccountPath(typ, a.deriver.Network(), 0)
	if err != nil {
		return err
	}

	seed, err := a.seed(ctx, opts)
	if err != nil {
		return err
	}
	defer seed.Zero()

	key, err := a.deriver.AccountKey(seed, typ)
	if err != nil {
		return fmt.Errorf("account key: %w", err)
	}
	fmt.Fprintf(a.out, "Account key (%s):\n  %s\n", path, key)
	return nil
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(a.out)
	start := fs.Uint("start", 0, "First address index")
	count := fs.Int("count", a.cfg.Address.Count, "Number of addresses")
	asJSON := fs.Bool("json", false, "Print addresses as JSON")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: seedsim watch <account key> [--start N] [--count N] [--json]")
	}
	if err := checkRange(*start, *count); err != nil {
		return err
	}

	addrs, err := a.deriver.WatchRange(ctx, pos[0], uint32(*start), uint32(*count))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if *asJSON {
		return a.printJSON(addrs)
	}
	if len(addrs) > 0 {
		fmt.Fprintf(a.out, "%s addresses (watch-only):\n", addrs[0].Type)
	}
	a.printAddresses(addrs)
	return nil
}

func (a *app) cmdFind(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	fs.SetOutput(a.out)
	opts := addSeedFlags(fs, a.cfg)
	limit := fs.Int("limit", defaultFindLimit, "Number of indices to scan")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: seedsim find <address> [--limit N] [--json] [--mnemonic ...]")
	}
	if *limit < 1 || *limit > wallet.MaxFindRange {
		return fmt.Errorf("%w: limit must be in range [1, %d]", wallet.ErrInvalidCount, wallet.MaxFindRange)
	}
	// Reject a malformed address before asking for secrets.
	if a.deriver.Available() {
		if _, _, err := a.deriver.Encoder().Decode(pos[0]); err != nil {
			return err
		}
	}

	seed, err := a.seed(ctx, opts)
	if err != nil {
		return err
	}
	defer seed.Zero()

	addr, ok, err := a.deriver.Find(ctx, seed, pos[0], uint32(*limit))
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	if *asJSON {
		res := findResult{Found: ok, Limit: *limit}
		if ok {
			res.Address = &addr
		}
		return a.printJSON(res)
	}
	if !ok {
		fmt.Fprintf(a.out, "Not found among the first %d addresses.\n", *limit)
		return nil
	}
	fmt.Fprintf(a.out, "Found %s at index %d (%s).\n", addr.Text, addr.Index, addr.Path)
	return nil
}

// findResult is the JSON form of a find.
type findResult struct {
	Found   bool           `json:"found"`
	Limit   int            `json:"limit"`
	Address *types.Address `json:"address,omitempty"`
}

// parseInterspersed parses flags that may follow positional arguments and
// returns the positional ones.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return pos, nil
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func checkRange(start uint, n int) error {
	if start >= uint(wallet.HardenedOffset) {
		return fmt.Errorf("%w: start must be below %d", wallet.ErrInvalidCount, wallet.HardenedOffset)
	}
	if n < config.MinAddressCount || n > config.MaxAddressCount {
		return fmt.Errorf("%w: count must be in range [%d, %d]",
			wallet.ErrInvalidCount, config.MinAddressCount, config.MaxAddressCount)
	}
	return nil
}
