package configloader

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wallet_dashboard/internal/domain/entity"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port" env:"DASHBOARD_PORT"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DASHBOARD_LOG_LEVEL"` // debug, info, warn, error
	Format string `yaml:"format" env:"DASHBOARD_LOG_FORMAT"` // json or console
}

// WalletConfig describes how to reach the external wallet.
type WalletConfig struct {
	// Endpoint is the JSON-RPC URL of the wallet bridge. Empty means no wallet is present.
	Endpoint              string `yaml:"endpoint" env:"DASHBOARD_WALLET_URL"`
	ProbeTimeoutMillis    int64  `yaml:"probeTimeoutMillis"`
	RequestTimeoutSeconds int    `yaml:"requestTimeoutSeconds"` // bounds eth_requestAccounts, which waits on the user
}

// NetworkConfig selects the network to read from. Unset fields are taken from the
// predefined definition named by Identifier.
type NetworkConfig struct {
	Identifier      string   `yaml:"identifier" env:"DASHBOARD_NETWORK"`
	ChainID         uint64   `yaml:"chainID"`
	Name            string   `yaml:"name"`
	NativeSymbol    string   `yaml:"nativeSymbol"`
	Decimals        int32    `yaml:"decimals"`
	RPCURL          string   `yaml:"rpcURL" env:"DASHBOARD_RPC_URL"`
	FallbackRPCURLs []string `yaml:"fallbackRpcURLs" env:"DASHBOARD_FALLBACK_RPC_URLS" envSeparator:","`
}

// CacheConfig holds configuration for the token metadata cache.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// RPCClientConfig holds limits applied to every JSON-RPC call.
type RPCClientConfig struct {
	CallTimeoutSeconds int     `yaml:"callTimeoutSeconds"`
	RateLimit          float64 `yaml:"rateLimit"` // calls per second
	BurstLimit         int     `yaml:"burstLimit"`
}

// PerformanceConfig holds performance-related configuration.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig             `yaml:"server"`
	Logging     LoggingConfig            `yaml:"logging"`
	Wallet      WalletConfig             `yaml:"wallet"`
	Network     NetworkConfig            `yaml:"network"`
	Tokens      []entity.TokenDescriptor `yaml:"tokens"`
	TokensFile  string                   `yaml:"tokensFile" env:"DASHBOARD_TOKENS_FILE"`
	Cache       CacheConfig              `yaml:"cache"`
	RPCClient   RPCClientConfig          `yaml:"rpcClient"`
	Performance PerformanceConfig        `yaml:"performance"`
}

// Load reads the YAML configuration file from path, applies environment overrides
// and fills defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes, applies environment overrides and fills defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		// eth_requestAccounts may wait for the user, keep the write timeout above the request timeout.
		cfg.Server.WriteTimeout = 150
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Wallet.ProbeTimeoutMillis <= 0 {
		cfg.Wallet.ProbeTimeoutMillis = 2000
		logrus.Infof("Wallet.ProbeTimeoutMillis not set, defaulting to %d ms", cfg.Wallet.ProbeTimeoutMillis)
	}
	if cfg.Wallet.RequestTimeoutSeconds <= 0 {
		cfg.Wallet.RequestTimeoutSeconds = 120
		logrus.Infof("Wallet.RequestTimeoutSeconds not set, defaulting to %d s", cfg.Wallet.RequestTimeoutSeconds)
	}
	if cfg.Network.Identifier == "" && cfg.Network.ChainID == 0 {
		cfg.Network.Identifier = "ethereum"
		logrus.Infof("Network.Identifier not set, defaulting to %s", cfg.Network.Identifier)
	}
	if cfg.Cache.DefaultExpirationMinutes <= 0 {
		cfg.Cache.DefaultExpirationMinutes = 60
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}
	if cfg.RPCClient.CallTimeoutSeconds <= 0 {
		cfg.RPCClient.CallTimeoutSeconds = 10
	}
	if cfg.RPCClient.RateLimit <= 0 {
		cfg.RPCClient.RateLimit = 20
	}
	if cfg.RPCClient.BurstLimit <= 0 {
		cfg.RPCClient.BurstLimit = 10
	}
	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
}

func validate(cfg *Config) error {
	if cfg.Network.Decimals < 0 || cfg.Network.Decimals > 77 {
		return fmt.Errorf("network.decimals out of range: %d", cfg.Network.Decimals)
	}
	for i, token := range cfg.Tokens {
		if token.ContractAddress == "" {
			return fmt.Errorf("tokens[%d]: contractAddress is required", i)
		}
		if token.DisplayName == "" {
			logrus.Warnf("tokens[%d] (%s) has no displayName; failures will be shown without a name", i, token.ContractAddress)
		}
	}
	if cfg.Wallet.Endpoint == "" {
		logrus.Warn("Wallet.Endpoint not set; connect requests will report that no wallet provider is present")
	}
	return nil
}
