package network

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk form of a networks file:
//
//	networks:
//	  - name: devnet
//	    type: devnet
//	    chain_id: D
//	    gateways:
//	      - name: multiversx
//	        url: https://devnet-gateway.multiversx.com
type Manifest struct {
	Networks []Network `yaml:"networks"`
}

// Config is a set of networks with unique names.
type Config struct {
	networks map[string]Network
}

// NewConfig indexes networks by name. A later network replaces an earlier one with the same
// name.
func NewConfig(networks []Network) *Config {
	byName := make(map[string]Network, len(networks))
	for _, n := range networks {
		byName[n.Name] = n
	}

	return &Config{networks: byName}
}

// DefaultConfig returns a config holding the built-in public networks.
func DefaultConfig() *Config {
	return NewConfig(Builtin())
}

func (c *Config) Validate() error {
	for _, n := range c.Networks() {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("network %q: %w", n.Name, err)
		}
	}

	return nil
}

// Networks returns all networks sorted by name.
func (c *Config) Networks() []Network {
	out := make([]Network, 0, len(c.networks))
	for _, name := range c.Names() {
		out = append(out, c.networks[name])
	}

	return out
}

// NetworkByName returns the named network.
func (c *Config) NetworkByName(name string) (Network, error) {
	n, ok := c.networks[name]
	if !ok {
		return Network{}, fmt.Errorf("network %q not found in configuration", name)
	}

	return n, nil
}

// Names returns the sorted network names.
func (c *Config) Names() []string {
	return slices.Sorted(maps.Keys(c.networks))
}

// Merge adds the networks of other, replacing networks with the same name.
func (c *Config) Merge(other *Config) {
	maps.Copy(c.networks, other.networks)
}

func (c *Config) MarshalYAML() (any, error) {
	return Manifest{Networks: c.Networks()}, nil
}

func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var m Manifest
	if err := value.Decode(&m); err != nil {
		return err
	}
	*c = *NewConfig(m.Networks)

	return nil
}

type loadConfig struct {
	withBuiltin bool
}

// LoadOption customizes Load.
type LoadOption func(*loadConfig)

// WithBuiltinNetworks seeds the config with the public networks before the files are merged.
func WithBuiltinNetworks() LoadOption {
	return func(c *loadConfig) {
		c.withBuiltin = true
	}
}

// Load reads the networks files in order and merges them. Networks from later files replace
// networks with the same name from earlier files and from the built-in set.
func Load(filePaths []string, opts ...LoadOption) (*Config, error) {
	var lc loadConfig
	for _, opt := range opts {
		opt(&lc)
	}

	cfg := NewConfig(nil)
	if lc.withBuiltin {
		cfg = DefaultConfig()
	}

	for _, fp := range filePaths {
		data, err := os.ReadFile(fp)
		if err != nil {
			return nil, fmt.Errorf("failed to read networks file: %w", err)
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal networks YAML %s: %w", fp, err)
		}
		// empty files leave fileCfg zero valued
		if fileCfg.networks != nil {
			cfg.Merge(&fileCfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate networks configuration: %w", err)
	}

	return cfg, nil
}
