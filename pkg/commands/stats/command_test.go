package stats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment/envtest"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

func TestNewCommand_RequiresLogger(t *testing.T) {
	t.Parallel()

	_, err := NewCommand(Config{})
	require.ErrorContains(t, err, "Logger")
}

func TestStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "table",
			args: []string{},
			check: func(t *testing.T, out string) {
				t.Helper()
				assert.Contains(t, out, "MultiversX Devnet")
				assert.Contains(t, out, "1238")
				assert.Contains(t, out, "Participants (estimate)")
				assert.Contains(t, out, "866")
			},
		},
		{
			name: "json",
			args: []string{"--json"},
			check: func(t *testing.T, out string) {
				t.Helper()
				var got chainballotx.Stats
				require.NoError(t, json.Unmarshal([]byte(out), &got))
				assert.Equal(t, chainballotx.Stats{TotalProposals: 4, TotalVotes: 1238, ActiveProposals: 3, Participants: 866}, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := envtest.New(t)
			cmd, err := NewCommand(Config{Logger: logger.Test(t), EnvironmentLoader: e.Loader(nil)})
			require.NoError(t, err)

			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.ExecuteContext(t.Context()))

			tt.check(t, out.String())
		})
	}
}
