package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	lggr := logger.Nop()
	cmds := New(lggr)

	require.NotNil(t, cmds)
	assert.Equal(t, lggr, cmds.lggr)
}

func TestCommands_Groups(t *testing.T) {
	t.Parallel()

	cmds := New(logger.Nop())

	tests := []struct {
		name  string
		build func() (*cobra.Command, error)
	}{
		{name: "proposals", build: cmds.Proposals},
		{name: "stats", build: cmds.Stats},
		{name: "tx", build: cmds.Tx},
		{name: "abi", build: cmds.ABI},
		{name: "serve", build: cmds.Serve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.name, cmd.Name())
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestCommands_RequireLogger(t *testing.T) {
	t.Parallel()

	cmds := New(nil)

	_, err := cmds.Proposals()
	require.Error(t, err)
	_, err = cmds.Tx()
	require.Error(t, err)
	_, err = cmds.Serve()
	require.Error(t, err)

	_, err = NewRootCommand(nil, "dev")
	require.ErrorContains(t, err, "logger is required")
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.Nop(), "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "chainballotx", root.Use)
	assert.Equal(t, "1.2.3", root.Version)

	for _, name := range []string{"config", "network", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "c", root.PersistentFlags().Lookup("config").Shorthand)
	assert.Equal(t, "n", root.PersistentFlags().Lookup("network").Shorthand)

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "proposals", "stats", "tx", "abi"})
}

func TestNewRootCommand_RunsOfflineCommand(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.Nop(), "dev")
	require.NoError(t, err)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"abi", "events", "--network", "devnet"})

	require.NoError(t, root.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "proposalCreated")
}
