package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/config/env"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

func testConfig(network string) *env.Config {
	return &env.Config{
		Network:  env.NetworkConfig{Name: network},
		Contract: env.ContractConfig{Address: env.DefaultContractAddress},
		Log:      env.LogConfig{Level: "info"},
	}
}

func TestFromConfig_Builtin(t *testing.T) {
	t.Parallel()

	e, err := FromConfig(t.Context(), logger.Test(t), testConfig("testnet"))
	require.NoError(t, err)

	assert.Equal(t, "testnet", e.Chain.Network)
	assert.Equal(t, "T", e.Chain.ChainID)
	assert.Equal(t, "https://testnet-gateway.multiversx.com", e.Chain.URL)
	assert.Equal(t, "https://testnet-wallet.multiversx.com", e.Chain.WalletURL)
	assert.Equal(t, env.DefaultContractAddress, e.ContractAddress())
	assert.NotNil(t, e.Reader)
	assert.NotNil(t, e.Builder)
	assert.NotNil(t, e.Confirmer)
	assert.NotNil(t, e.Health)
}

func TestFromConfig_APIURLOverride(t *testing.T) {
	t.Parallel()

	cfg := testConfig("devnet")
	cfg.Network.APIURL = "http://127.0.0.1:7950"

	e, err := FromConfig(t.Context(), logger.Test(t), cfg)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:7950", e.Chain.URL)
	assert.Equal(t, []string{"http://127.0.0.1:7950", "https://devnet-gateway.multiversx.com"}, e.Network.GatewayURLs())
}

func TestFromConfig_NetworksFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "networks.yml")
	require.NoError(t, os.WriteFile(path, []byte(`networks:
  - name: localnet
    type: devnet
    chain_id: localnet
    gateways:
      - name: local
        url: http://127.0.0.1:7950
`), 0o600))

	cfg := testConfig("localnet")
	cfg.NetworksFile = path

	e, err := FromConfig(t.Context(), logger.Test(t), cfg)
	require.NoError(t, err)
	assert.Equal(t, "localnet", e.Chain.ChainID)
	assert.Empty(t, e.Chain.WalletURL)
}

func TestFromConfig_UnknownNetwork(t *testing.T) {
	t.Parallel()

	_, err := FromConfig(t.Context(), logger.Test(t), testConfig("moonnet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `network "moonnet" not found`)
	assert.Contains(t, err.Error(), "devnet")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHAINBALLOTX_NETWORK", "devnet")

	e, err := Load(t.Context(), Options{Network: "mainnet", LogLevel: "warn"})
	require.NoError(t, err)

	assert.Equal(t, "mainnet", e.Config.Network.Name)
	assert.Equal(t, "warn", e.Config.Log.Level)
	assert.Equal(t, "1", e.Chain.ChainID)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	_, err := Load(t.Context(), Options{LogLevel: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestOptionsFromFlags(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "root"}
	flags.Global(root)

	var got Options
	root.AddCommand(&cobra.Command{Use: "child", Run: func(cmd *cobra.Command, _ []string) {
		got = OptionsFromFlags(cmd)
	}})

	root.SetArgs([]string{"child", "--config", "app.yml", "--network", "testnet", "--log-level", "debug"})
	require.NoError(t, root.Execute())

	assert.Equal(t, Options{ConfigPath: "app.yml", Network: "testnet", LogLevel: "debug"}, got)

	// without the root flags
	assert.Equal(t, Options{}, OptionsFromFlags(&cobra.Command{Use: "alone"}))
}
