package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/txops"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
)

const jsonContentType = "application/json"

func decodeJSON[T any](t *testing.T, body string) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))

	return v
}

func TestAPI_Proposals(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/api/proposals", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeJSON[struct {
		Proposals []chainballotx.Proposal `json:"proposals"`
	}](t, rec.Body.String())
	require.Len(t, got.Proposals, 4)
	assert.Equal(t, "Open proposal", got.Proposals[0].Title)
	assert.Equal(t, uint64(1234), got.Proposals[0].VotesFor)
}

func TestAPI_Proposal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "found", target: "/api/proposals/1", wantStatus: http.StatusOK},
		{name: "not found", target: "/api/proposals/9", wantStatus: http.StatusNotFound},
		{name: "invalid id", target: "/api/proposals/-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := env.get(t, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestAPI_Voted(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/api/proposals/3/voted?address="+env.voter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[map[string]any](t, rec.Body.String())
	assert.Equal(t, true, got["voted"])
	assert.Equal(t, env.voter, got["address"])

	rec = env.get(t, "/api/proposals/0/voted?address="+env.voter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeJSON[map[string]any](t, rec.Body.String())["voted"])

	rec = env.get(t, "/api/proposals/0/voted?address=erd1invalid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Stats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, env.reader.stats, decodeJSON[chainballotx.Stats](t, rec.Body.String()))
}

func TestAPI_ABIEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/api/abi/endpoints", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeJSON[struct {
		Name      string                         `json:"name"`
		Endpoints []chainballotx.EndpointSummary `json:"endpoints"`
		Events    []string                       `json:"events"`
	}](t, rec.Body.String())
	assert.NotEmpty(t, got.Name)
	assert.NotEmpty(t, got.Endpoints)

	abi, err := chainballotx.ABI()
	require.NoError(t, err)
	assert.Equal(t, abi.EventIdentifiers(), got.Events)
}

func TestAPI_PrepareVote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "missing proposal id", body: `{"sender":"%s"}`, wantStatus: http.StatusBadRequest},
		{name: "invalid sender", body: `{"sender":"erd1bad","proposalId":0}`, wantStatus: http.StatusBadRequest},
		{name: "unknown proposal", body: `{"sender":"%s","proposalId":99}`, wantStatus: http.StatusNotFound},
		{name: "already voted", body: `{"sender":"%s","proposalId":3}`, wantStatus: http.StatusConflict},
		{name: "expired", body: `{"sender":"%s","proposalId":1}`, wantStatus: http.StatusConflict},
		{name: "open", body: `{"sender":"%s","proposalId":0}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			body := strings.ReplaceAll(tt.body, "%s", env.voter)

			rec := env.do(t, http.MethodPost, "/api/transactions/prepare/vote", jsonContentType, body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			got := decodeJSON[preparedTransaction](t, rec.Body.String())
			assert.Equal(t, "vote@0000000000000000", got.Transaction.DataString())
			assert.Equal(t, env.voter, got.Transaction.Sender)
			assert.Equal(t, env.contract, got.Transaction.Receiver)
			assert.False(t, got.Transaction.IsSigned())

			signURL, err := url.Parse(got.SignURL)
			require.NoError(t, err)
			assert.Equal(t, "/hook/sign", signURL.Path)
		})
	}
}

func TestAPI_PrepareProposal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	body := `{"sender":"` + env.voter + `","title":"Treasury","description":"Move funds","durationDays":14}`
	rec := env.do(t, http.MethodPost, "/api/transactions/prepare/proposal", jsonContentType, body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeJSON[preparedTransaction](t, rec.Body.String())
	assert.True(t, strings.HasPrefix(got.Transaction.DataString(), "create_proposal@"))
	assert.Equal(t, chainballotx.GasLimitCreateProposal, got.Transaction.GasLimit)

	body = `{"sender":"` + env.voter + `","title":"Treasury","description":"Move funds","durationDays":2}`
	rec = env.do(t, http.MethodPost, "/api/transactions/prepare/proposal", jsonContentType, body, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid voting duration")

	body = `{"sender":"erd1bad","title":"Treasury","description":"Move funds"}`
	rec = env.do(t, http.MethodPost, "/api/transactions/prepare/proposal", jsonContentType, body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "erd_address")
}

func signedTx(t *testing.T, env *testEnv, chainID string) multiversx.Transaction {
	t.Helper()

	return multiversx.Transaction{
		Nonce:     7,
		Value:     "0",
		Receiver:  env.contract,
		Sender:    env.voter,
		GasPrice:  multiversx.DefaultGasPrice,
		GasLimit:  chainballotx.GasLimitVote,
		Data:      []byte("vote@0000000000000000"),
		ChainID:   chainID,
		Version:   multiversx.DefaultTxVersion,
		Signature: strings.Repeat("cd", 64),
	}
}

func TestAPI_Broadcast(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		body, err := json.Marshal(signedTx(t, env, "D"))
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/api/transactions", jsonContentType, string(body), nil)
		require.Equal(t, http.StatusAccepted, rec.Code)

		got := decodeJSON[txops.BroadcastOutput](t, rec.Body.String())
		assert.Equal(t, "f00dcafe", got.TxHash)
		assert.Equal(t, "https://devnet-explorer.multiversx.com/transactions/f00dcafe", got.ExplorerURL)
		assert.Len(t, env.reporter.Recent(recentReports), 1)
	})

	t.Run("unsigned", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		tx := signedTx(t, env, "D")
		tx.Signature = ""
		body, err := json.Marshal(tx)
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/api/transactions", jsonContentType, string(body), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "signature is required")
		assert.Equal(t, int32(0), env.onchain.sends.Load())
	})

	t.Run("wrong chain", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		body, err := json.Marshal(signedTx(t, env, "1"))
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/api/transactions", jsonContentType, string(body), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, int32(0), env.onchain.sends.Load())
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/transactions", jsonContentType, "{", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_CORS(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.serve(t, http.MethodOptions, "/api/proposals", "", "", nil, http.Header{
		"Origin":                        {"https://other.example.org"},
		"Access-Control-Request-Method": {http.MethodGet},
	})
	assert.Less(t, rec.Code, http.StatusMultipleChoices)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.serve(t, http.MethodGet, "/proposals", "", "", nil, http.Header{
		"Origin": {"https://other.example.org"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[map[string]any](t, rec.Body.String())
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "devnet", got["network"])
	assert.Equal(t, "D", got["chainId"])

	env.srv.health = fakeHealth{err: errors.New("all gateways failed")}
	rec = env.get(t, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	got = decodeJSON[map[string]any](t, rec.Body.String())
	assert.Equal(t, "degraded", got["status"])
	assert.Equal(t, "all gateways failed", got["error"])
}
