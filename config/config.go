// Package config handles seedsim configuration.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, an optional key = value file, and command-line flags. The
// file is only ever read.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/Klingon-tech/seedsim/pkg/types"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Address count limits for one batch.
const (
	MinAddressCount = 1
	MaxAddressCount = 100
)

// MaxWorkers caps concurrent per-index derivations.
const MaxWorkers = 64

// Config holds runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Mnemonic MnemonicConfig
	Address  AddressConfig
	Derive   DeriveConfig
	Log      LogConfig
}

// MnemonicConfig holds mnemonic generation and import settings.
type MnemonicConfig struct {
	Words    int  `conf:"words"`             // 12 or 24
	Checksum bool `conf:"mnemonic.checksum"` // verify checksum on import
}

// AddressConfig holds address derivation settings.
type AddressConfig struct {
	Type  string `conf:"address.type"`  // segwit or legacy
	Count int    `conf:"address.count"` // first batch size
	More  int    `conf:"address.more"`  // "generate more" batch size
}

// DeriveConfig holds derivation tuning.
type DeriveConfig struct {
	Workers int `conf:"derive.workers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.seedsim
//	macOS:   ~/Library/Application Support/Seedsim
//	Windows: %APPDATA%\Seedsim
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seedsim"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Seedsim")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Seedsim")
		}
		return filepath.Join(home, "AppData", "Roaming", "Seedsim")
	default:
		return filepath.Join(home, ".seedsim")
	}
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "seedsim.conf")
}

// NetParams returns the chain parameters for the configured network.
func (c *Config) NetParams() *chaincfg.Params {
	if c.Network == Testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// AddressType returns the configured address type, defaulting to segwit.
func (c *Config) AddressType() types.AddressType {
	typ, err := types.ParseAddressType(c.Address.Type)
	if err != nil {
		return types.AddressSegwit
	}
	return typ
}

// EntropyBits returns the entropy size for the configured word count.
func (c *Config) EntropyBits() int {
	if c.Mnemonic.Words == 24 {
		return 256
	}
	return 128
}
