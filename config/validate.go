package config

import (
	"fmt"

	"github.com/Klingon-tech/seedsim/internal/log"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.Mnemonic.Words != 12 && cfg.Mnemonic.Words != 24 {
		return fmt.Errorf("words must be 12 or 24, got %d", cfg.Mnemonic.Words)
	}
	if _, err := types.ParseAddressType(cfg.Address.Type); err != nil {
		return fmt.Errorf("address.type: %w", err)
	}
	if cfg.Address.Count < MinAddressCount || cfg.Address.Count > MaxAddressCount {
		return fmt.Errorf("address.count must be in range [%d, %d]", MinAddressCount, MaxAddressCount)
	}
	if cfg.Address.More < MinAddressCount || cfg.Address.More > MaxAddressCount {
		return fmt.Errorf("address.more must be in range [%d, %d]", MinAddressCount, MaxAddressCount)
	}
	if cfg.Derive.Workers < 1 || cfg.Derive.Workers > MaxWorkers {
		return fmt.Errorf("derive.workers must be in range [1, %d]", MaxWorkers)
	}
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}
