// Package config loads the process configuration from the environment.
// Core components never read the environment themselves; they receive the
// values they need from the assembled Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config is the full configuration of the pulse backend.
type Config struct {
	// Node RPC endpoint of the single configured network.
	RPCURL  string `mapstructure:"rpc_url"`
	ChainID int64  `mapstructure:"chain_id"`

	// Deployed contract addresses, produced by the deployment scripts.
	NFTAddress    string `mapstructure:"nft_address"`
	MinterAddress string `mapstructure:"minter_address"`
	TokenAddress  string `mapstructure:"token_address"`

	// Ordered IPFS gateway base URLs, tried first to last.
	Gateways       []string      `mapstructure:"gateways"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`

	// Trigger-state document store.
	RedisAddress  string `mapstructure:"redis_address"`
	RedisPassword string `mapstructure:"redis_password"`
	TriggerKey    string `mapstructure:"trigger_key"`

	// Hex-encoded private key of the purchasing account. Optional: when
	// empty the backend runs read-only and buy intents fail with a
	// wallet-absent condition.
	WalletKey string `mapstructure:"wallet_key"`

	SyncInterval      time.Duration `mapstructure:"sync_interval"`
	ProbeInterval     time.Duration `mapstructure:"probe_interval"`
	CountdownInterval time.Duration `mapstructure:"countdown_interval"`
	SyncWorkers       int           `mapstructure:"sync_workers"`

	ListenAddress string `mapstructure:"listen_address"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Load reads configuration from PULSE_* environment variables, applying
// defaults that match a local hardhat deployment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("chain_id", 31337)
	v.SetDefault("gateways", []string{
		"https://ipfs.io/ipfs/",
		"https://w3s.link/ipfs/",
		"https://gateway.pinata.cloud/ipfs/",
	})
	v.SetDefault("gateway_timeout", 8*time.Second)
	v.SetDefault("redis_address", "127.0.0.1:6379")
	v.SetDefault("trigger_key", "system_state:trigger_state")
	v.SetDefault("sync_interval", 60*time.Second)
	v.SetDefault("probe_interval", 10*time.Second)
	v.SetDefault("countdown_interval", time.Second)
	v.SetDefault("sync_workers", 8)
	v.SetDefault("listen_address", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Bind explicitly: AutomaticEnv alone does not surface keys that are
	// absent from both defaults and config files during Unmarshal.
	for _, key := range []string{
		"nft_address", "minter_address", "token_address",
		"redis_password", "wallet_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is internally usable.
func (c *Config) Validate() error {
	for name, addr := range map[string]string{
		"nft_address":    c.NFTAddress,
		"minter_address": c.MinterAddress,
		"token_address":  c.TokenAddress,
	} {
		if addr == "" {
			return fmt.Errorf("config: %s is required", name)
		}
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("config: %s is not a valid address: %s", name, addr)
		}
	}
	if len(c.Gateways) == 0 {
		return fmt.Errorf("config: at least one gateway is required")
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("config: gateway_timeout must be positive")
	}
	if c.SyncWorkers <= 0 {
		return fmt.Errorf("config: sync_workers must be positive")
	}
	return nil
}
