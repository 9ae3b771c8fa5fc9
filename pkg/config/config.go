// Package config loads the daemon's runtime configuration from a YAML
// file with environment-variable overrides, via viper, wired to the root
// command's --config flag.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
)

// APIConfig controls the HTTP API server (pkg/api).
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// MetricsConfig controls the Prometheus exporter (pkg/metrics).
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// StreamingConfig controls the websocket ranking-event hub (pkg/streaming).
type StreamingConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig names the sqlite database backing pkg/hostadapter/sqlstate.
type StorageConfig struct {
	DSN string `mapstructure:"dsn"`
}

// GuardConfig parameterizes pkg/guard's per-operation compute budget.
type GuardConfig struct {
	OpsPerSecond float64 `mapstructure:"ops_per_second"`
	Burst        int     `mapstructure:"burst"`
}

// GenesisConfig supplies the parameters Initialize needs once, at first run.
type GenesisConfig struct {
	InitialSupplyGMC uint64        `mapstructure:"initial_supply_gmc"`
	Admin            HexIdentity   `mapstructure:"admin"`
	Wallets          WalletsConfig `mapstructure:"wallets"`
}

// WalletsConfig names the seven ecosystem wallet identities, hex-encoded
// in the config file.
type WalletsConfig struct {
	Team        HexIdentity `mapstructure:"team"`
	Treasury    HexIdentity `mapstructure:"treasury"`
	Marketing   HexIdentity `mapstructure:"marketing"`
	Airdrop     HexIdentity `mapstructure:"airdrop"`
	Presale     HexIdentity `mapstructure:"presale"`
	StakingFund HexIdentity `mapstructure:"staking_fund"`
	RankingFund HexIdentity `mapstructure:"ranking_fund"`
}

// ToEcosystemWallets converts the parsed config into ledger.EcosystemWallets.
func (w WalletsConfig) ToEcosystemWallets() ledger.EcosystemWallets {
	return ledger.EcosystemWallets{
		Team:        host.Identity(w.Team),
		Treasury:    host.Identity(w.Treasury),
		Marketing:   host.Identity(w.Marketing),
		Airdrop:     host.Identity(w.Airdrop),
		Presale:     host.Identity(w.Presale),
		StakingFund: host.Identity(w.StakingFund),
		RankingFund: host.Identity(w.RankingFund),
	}
}

// Config is the daemon's full runtime configuration, loaded once at
// startup by LoadConfig.
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	API       APIConfig       `mapstructure:"api"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Streaming StreamingConfig `mapstructure:"streaming"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Guard     GuardConfig     `mapstructure:"guard"`
	Genesis   GenesisConfig   `mapstructure:"genesis"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("api.port", 8080)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("streaming.port", 8090)
	v.SetDefault("storage.dsn", "gmctoken.db")
	v.SetDefault("guard.ops_per_second", 50)
	v.SetDefault("guard.burst", 100)
	v.SetDefault("genesis.initial_supply_gmc", 100_000_000)
}

// LoadConfig reads path (a YAML file) into a Config, applying defaults for
// anything absent and allowing GMC_-prefixed environment variables to
// override any key (GMC_API_PORT overrides api.port).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("GMC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults plus env overrides apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		decodeHexIdentity(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
