package config

// B3TR token contract deployments per network.
const (
	// MainnetB3TRContract is the B3TR token contract on VeChain mainnet.
	MainnetB3TRContract = "0x5ef79995FE8a89e0812330E4378eB2660ceDe699"

	// TestnetB3TRContract is the mock B3TR token contract on VeChain testnet.
	TestnetB3TRContract = "0xbf64cf86894Ee0877C4e7d03936e35Ee8D8b864F"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.veconnect",
		App: AppConfig{
			Name: "ReCircle",
		},
		Network: "mainnet",
		Networks: map[string]NetworkConfig{
			"mainnet": {
				TokenContract: MainnetB3TRContract,
				TokenSymbol:   "B3TR",
				Decimals:      18,
				Explorer:      "https://explore.vechain.org",
			},
			"testnet": {
				TokenContract: TestnetB3TRContract,
				TokenSymbol:   "B3TR",
				Decimals:      18,
				Explorer:      "https://explore-testnet.vechain.org",
			},
		},
		Probe: ProbeConfig{
			MaxAttempts:      10,
			IntervalMs:       500,
			OverallTimeoutMs: 6000,
		},
		// Storage.AddressFile defaults to <home>/connection.json.
		Storage: StorageConfig{},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.veconnect/veconnect.log",
		},
	}
}
