package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Version is the seedsim release version.
const Version = "0.1.0"

// Flags holds parsed global command-line flags.
type Flags struct {
	Help    bool
	Version bool

	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string

	// Mnemonic
	Words      int
	NoChecksum bool

	// Addresses
	Type    string
	Count   int
	More    int
	Workers int

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args: the command and its own arguments.
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON    bool
	SetNoChecksum bool
}

// ParseFlags parses global flags from args (without the program name).
// Parsing stops at the first non-flag argument, which is the command.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("seedsim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Mnemonic
	fs.IntVar(&f.Words, "words", 0, "Mnemonic length: 12 or 24")
	fs.BoolVar(&f.NoChecksum, "no-checksum", false, "Accept imported phrases with a wrong checksum")

	// Addresses
	fs.StringVar(&f.Type, "type", "", "Address type: segwit or legacy")
	fs.IntVar(&f.Count, "count", 0, "Number of addresses to derive")
	fs.IntVar(&f.More, "more", 0, "Batch size for generating more addresses")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent derivations")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			f.Help = true
			return f, nil
		}
		return nil, err
	}

	if f.Testnet {
		f.Network = string(Testnet)
	}
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.SetNoChecksum = isFlagSet(fs, "no-checksum")
	f.Args = fs.Args()

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Mnemonic
	if f.Words != 0 {
		cfg.Mnemonic.Words = f.Words
	}
	if f.SetNoChecksum {
		cfg.Mnemonic.Checksum = !f.NoChecksum
	}

	// Addresses
	if f.Type != "" {
		cfg.Address.Type = strings.ToLower(f.Type)
	}
	if f.Count != 0 {
		cfg.Address.Count = f.Count
	}
	if f.More != 0 {
		cfg.Address.More = f.More
	}
	if f.Workers != 0 {
		cfg.Derive.Workers = f.Workers
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	usage := `seedsim - coin-toss mnemonic, seed and address derivation

Usage:
  seedsim [options] <command> [command options]

Commands:
  toss        Build a mnemonic from coin tosses (1 = heads, 0 = tails)
  random      Build a mnemonic from random entropy (for learning only)
  import      Import an existing 12 or 24 word mnemonic
  addresses   Derive receiving addresses from a mnemonic
  xpub        Export the account extended public key
  watch       Derive addresses from an account public key (watch-only)
  find        Look for an address among the first N indices
  help        Show this help message

Core Options:
  --network       Network type: mainnet (default) or testnet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.seedsim)
  --config, -c    Config file path (default: <datadir>/seedsim.conf)

Mnemonic Options:
  --words         Mnemonic length: 12 or 24 (default: 24)
  --no-checksum   Accept imported phrases whose checksum does not match

Address Options:
  --type          Address type: segwit (default) or legacy
  --count         Addresses in the first batch, 1-100 (default: 10)
  --more          Addresses per "generate more" batch, 1-100 (default: 10)
  --workers       Concurrent derivations (default: 4)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: warn)
  --log-file      Log file path (JSON)
  --log-json      Output logs as JSON

Examples:
  # Toss a coin 256 times and derive segwit addresses
  seedsim toss

  # Paste 128 tosses at once, legacy addresses on testnet
  seedsim --testnet --words 12 --type legacy toss --paste

  # Derive addresses for an existing phrase
  seedsim addresses --mnemonic "abandon abandon ... about" --start 0

  # Watch-only derivation from an account key
  seedsim watch zpub6rFR7y4Q2AijBEqTUquhVz...

  # Print addresses as JSON for scripts (addresses, watch and find)
  seedsim addresses --mnemonic "abandon abandon ... about" --json

Note:
  Logs go to stderr. Mnemonics, passphrases and keys are never logged or
  written to disk.
`
	fmt.Fprint(w, usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Config file (read only, optional)
// 3. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}

	// Determine network first (needed for defaults)
	network := Mainnet
	if strings.ToLower(flags.Network) == string(Testnet) {
		network = Testnet
	}

	cfg := Default(network)
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}
