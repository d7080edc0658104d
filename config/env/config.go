package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultNetwork         = "devnet"
	DefaultContractAddress = "erd1qqqqqqqqqqqqqpgqehrq4xr838lrlv0h4ht20fnl9ywsw3v7sjus85qv7x"
	DefaultListenAddr      = ":8080"
	DefaultRefetchDelay    = 3 * time.Second
	DefaultLogLevel        = "info"
)

// NetworkConfig selects the MultiversX network and optionally overrides its gateway URL.
type NetworkConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`       // The network name, one of devnet, testnet or mainnet.
	APIURL string `mapstructure:"api_url" yaml:"api_url"` // Overrides the primary gateway URL of the network.
}

// ContractConfig is the configuration of the voting contract.
type ContractConfig struct {
	Address string `mapstructure:"address" yaml:"address"` // The bech32 address of the voting contract.
}

// ServerConfig is the configuration of the dashboard HTTP server.
//
// WARNING: This data type contains sensitive fields and should not be logged or set in file
// configuration.
type ServerConfig struct {
	ListenAddr   string        `mapstructure:"listen_addr" yaml:"listen_addr"`     // The address the server listens on, e.g. ":8080".
	SessionKey   string        `mapstructure:"session_key" yaml:"session_key"`     // Secret: The key used to authenticate the wallet session cookie.
	PublicURL    string        `mapstructure:"public_url" yaml:"public_url"`       // The externally reachable URL, used for wallet callbacks.
	RefetchDelay time.Duration `mapstructure:"refetch_delay" yaml:"refetch_delay"` // The delay before data is refetched after a transaction.
}

// LogConfig is the configuration of the logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Config wraps the entire configuration of the dashboard and the CLI.
type Config struct {
	Network      NetworkConfig  `mapstructure:"network" yaml:"network"`
	Contract     ContractConfig `mapstructure:"contract" yaml:"contract"`
	Server       ServerConfig   `mapstructure:"server" yaml:"server"`
	Log          LogConfig      `mapstructure:"log" yaml:"log"`
	NetworksFile string         `mapstructure:"networks_file" yaml:"networks_file"` // Optional path to a network manifest.
}

// Validate checks the values that have no usable default.
func (c *Config) Validate() error {
	if c.Network.Name == "" {
		return errors.New("network name is required")
	}
	if c.Contract.Address == "" {
		return errors.New("contract address is required")
	}
	if c.Server.RefetchDelay < 0 {
		return fmt.Errorf("refetch delay must not be negative, got %s", c.Server.RefetchDelay)
	}

	return nil
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	// A missing file is not an error, the environment and the defaults still apply
	if _, err := os.Stat(filePath); filePath != "" && !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("network.name", DefaultNetwork)
	v.SetDefault("contract.address", DefaultContractAddress)
	v.SetDefault("server.listen_addr", DefaultListenAddr)
	v.SetDefault("server.refetch_delay", DefaultRefetchDelay)
	v.SetDefault("log.level", DefaultLogLevel)

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

var (
	// envBindings maps a config key to the environment variables that can provide its value.
	//
	// The first name is the preferred one. The second, when present, is the legacy name used by
	// the previous web frontend deployment so that existing .env files keep working. Viper uses
	// the first variable in the list that is set.
	envBindings = map[string][]string{
		"network.name":         {"CHAINBALLOTX_NETWORK", "NEXT_PUBLIC_NETWORK"},
		"network.api_url":      {"CHAINBALLOTX_API_URL", "NEXT_PUBLIC_NETWORK_API"},
		"contract.address":     {"CHAINBALLOTX_CONTRACT_ADDRESS", "NEXT_PUBLIC_CONTRACT_ADDRESS"},
		"server.listen_addr":   {"CHAINBALLOTX_SERVER_LISTEN_ADDR"},
		"server.session_key":   {"CHAINBALLOTX_SERVER_SESSION_KEY", "SESSION_SECRET"},
		"server.public_url":    {"CHAINBALLOTX_SERVER_PUBLIC_URL", "NEXT_PUBLIC_APP_URL"},
		"server.refetch_delay": {"CHAINBALLOTX_SERVER_REFETCH_DELAY"},
		"log.level":            {"CHAINBALLOTX_LOG_LEVEL", "LOG_LEVEL"},
		"networks_file":        {"CHAINBALLOTX_NETWORKS_FILE"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the config key to the env names
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
