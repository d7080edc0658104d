package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// fileCfg is the config that is loaded from the testdata/config.yml file.
	fileCfg = &Config{
		Network: NetworkConfig{
			Name:   "testnet",
			APIURL: "https://testnet-gateway.multiversx.com",
		},
		Contract: ContractConfig{
			Address: "erd1qqqqqqqqqqqqqpgqfzydqmdw7m2vazsp6u5p95yxz76t2p9rd8ss0zp9ts",
		},
		Server: ServerConfig{
			ListenAddr:   ":9000",
			SessionKey:   "file-session-key",
			PublicURL:    "https://vote.example.org",
			RefetchDelay: 5 * time.Second,
		},
		Log:          LogConfig{Level: "debug"},
		NetworksFile: "./networks.yml",
	}

	// defaultCfg is the config produced when nothing is set.
	defaultCfg = &Config{
		Network:  NetworkConfig{Name: DefaultNetwork},
		Contract: ContractConfig{Address: DefaultContractAddress},
		Server: ServerConfig{
			ListenAddr:   DefaultListenAddr,
			RefetchDelay: DefaultRefetchDelay,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}

	// envVars is the environment variables that used to set the config.
	envVars = map[string]string{
		"CHAINBALLOTX_NETWORK":              "mainnet",
		"CHAINBALLOTX_API_URL":              "https://gateway.example.org",
		"CHAINBALLOTX_CONTRACT_ADDRESS":     "erd1env",
		"CHAINBALLOTX_SERVER_LISTEN_ADDR":   ":7000",
		"CHAINBALLOTX_SERVER_SESSION_KEY":   "env-session-key",
		"CHAINBALLOTX_SERVER_PUBLIC_URL":    "https://env.example.org",
		"CHAINBALLOTX_SERVER_REFETCH_DELAY": "10s",
		"CHAINBALLOTX_LOG_LEVEL":            "warn",
		"CHAINBALLOTX_NETWORKS_FILE":        "/etc/chainballotx/networks.yml",
	}

	legacyEnvVars = map[string]string{
		"NEXT_PUBLIC_NETWORK":          "mainnet",
		"NEXT_PUBLIC_NETWORK_API":      "https://gateway.example.org",
		"NEXT_PUBLIC_CONTRACT_ADDRESS": "erd1env",
		"SESSION_SECRET":               "env-session-key",
		"NEXT_PUBLIC_APP_URL":          "https://env.example.org",
		"LOG_LEVEL":                    "warn",
		// These values do not have a legacy equivalent
		"CHAINBALLOTX_SERVER_LISTEN_ADDR":   ":7000",
		"CHAINBALLOTX_SERVER_REFETCH_DELAY": "10s",
		"CHAINBALLOTX_NETWORKS_FILE":        "/etc/chainballotx/networks.yml",
	}

	// envCfg is the config that is loaded from the environment variables.
	envCfg = &Config{
		Network: NetworkConfig{
			Name:   "mainnet",
			APIURL: "https://gateway.example.org",
		},
		Contract: ContractConfig{Address: "erd1env"},
		Server: ServerConfig{
			ListenAddr:   ":7000",
			SessionKey:   "env-session-key",
			PublicURL:    "https://env.example.org",
			RefetchDelay: 10 * time.Second,
		},
		Log:          LogConfig{Level: "warn"},
		NetworksFile: "/etc/chainballotx/networks.yml",
	}
)

func Test_Load(t *testing.T) { //nolint:paralleltest // see comment in setupEnvVars
	tests := []struct {
		name       string
		beforeFunc func(t *testing.T)
		givePath   string
		want       *Config
		wantErr    string
	}{
		{
			name:     "load from file",
			givePath: "./testdata/config.yml",
			want:     fileCfg,
		},
		{
			name:     "load from empty file uses defaults",
			givePath: "./testdata/empty.yml",
			want:     defaultCfg,
		},
		{
			name:     "no file path uses defaults",
			givePath: "",
			want:     defaultCfg,
		},
		{
			name: "override with env",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				setupEnvVars(t, envVars)
			},
			givePath: "./testdata/config.yml",
			want:     envCfg,
		},
		{
			name: "fallback to env when file not found",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				setupEnvVars(t, envVars)
			},
			givePath: "./testdata/invalid.yml",
			want:     envCfg,
		},
		{
			name:     "malformed file",
			givePath: "./testdata/malformed.yml",
			wantErr:  "While parsing config",
		},
	}

	for _, tt := range tests { //nolint:paralleltest // see comment in setupEnvVars
		t.Run(tt.name, func(t *testing.T) {
			if tt.beforeFunc != nil {
				tt.beforeFunc(t)
			}

			got, err := Load(tt.givePath)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_LoadFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		givePath string
		want     *Config
		wantErr  string
	}{
		{
			name:     "load from file",
			givePath: "./testdata/config.yml",
			want:     fileCfg,
		},
		{
			name:     "load from file with invalid path",
			givePath: "./testdata/invalid.yml",
			wantErr:  "no such file or directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadFile(tt.givePath)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_LoadEnv(t *testing.T) { //nolint:paralleltest // see comment in setupEnvVars
	setupEnvVars(t, envVars)

	got, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, envCfg, got)
}

func Test_LoadEnv_Legacy(t *testing.T) { //nolint:paralleltest // see comment in setupEnvVars
	setupEnvVars(t, legacyEnvVars)

	got, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, envCfg, got)
}

func Test_Config_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    func(c *Config)
		wantErr string
	}{
		{
			name: "valid",
			give: func(*Config) {},
		},
		{
			name:    "missing network",
			give:    func(c *Config) { c.Network.Name = "" },
			wantErr: "network name is required",
		},
		{
			name:    "missing contract",
			give:    func(c *Config) { c.Contract.Address = "" },
			wantErr: "contract address is required",
		},
		{
			name:    "negative refetch delay",
			give:    func(c *Config) { c.Server.RefetchDelay = -time.Second },
			wantErr: "refetch delay must not be negative, got -1s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := *defaultCfg
			tt.give(&cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// setupEnvVars sets up the environment variables for the test.
//
// CAUTION: Because this function uses t.Setenv which affects the entire process, tests which call
// this function cannot be run in parallel.
func setupEnvVars(t *testing.T, envVars map[string]string) {
	t.Helper()

	for key, value := range envVars {
		t.Setenv(key, value)
	}
}
