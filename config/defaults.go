package config

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Mnemonic: MnemonicConfig{
			Words:    24,
			Checksum: true,
		},
		Address: AddressConfig{
			Type:  "segwit",
			Count: 10,
			More:  10,
		},
		Derive: DeriveConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
