package dashboard

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/provider/rpcclient"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

const formContentType = "application/x-www-form-urlencoded"

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	lggr := logger.Test(t)
	chain := &multiversx.Chain{Network: "devnet", ChainID: "D"}

	_, err := New(lggr, Config{}, Deps{})
	require.ErrorContains(t, err, "chain is required")

	_, err = New(lggr, Config{}, Deps{Chain: chain})
	require.ErrorContains(t, err, "proposal reader is required")

	_, err = New(lggr, Config{}, Deps{Chain: chain, Reader: &fakeReader{}})
	require.ErrorContains(t, err, "transaction builder is required")
}

func TestHome(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, AppName)
	assert.Contains(t, body, AppDescription)
	assert.Contains(t, body, "MultiversX Devnet")
	assert.Contains(t, body, "1,238")
	assert.Contains(t, body, `id="connect-notice"`)
}

func TestProposals_NotConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/proposals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `id="connect-notice"`)
	assert.Contains(t, body, "Open proposal")
	assert.Contains(t, body, "1,234 votes")
	assert.NotContains(t, body, `action="/proposals/0/vote"`)
}

func TestProposals_Connected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cookies := env.connect(t, env.voter)

	rec := env.get(t, "/proposals", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.NotContains(t, body, `id="connect-notice"`)
	assert.Contains(t, body, multiversx.TruncateAddress(env.voter, 10, 8))

	// only the open proposal the wallet has not voted on can be voted
	assert.Contains(t, body, `action="/proposals/0/vote"`)
	assert.NotContains(t, body, `action="/proposals/1/vote"`)
	assert.NotContains(t, body, `action="/proposals/2/vote"`)
	assert.NotContains(t, body, `action="/proposals/3/vote"`)
	assert.Contains(t, body, "You voted on this proposal")

	assert.Contains(t, body, `badge-Active">Active`)
	assert.Contains(t, body, `badge-Expired">Expired`)
	assert.Contains(t, body, `badge-Closed">Closed`)
	assert.Contains(t, body, "Oct 20, 2026 12:00")
}

func TestProposals_LocalizedDates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/proposals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Oct 20, 2026 12:00")
	assert.Contains(t, rec.Body.String(), `lang="en"`)

	ptRec := env.getLocalized(t, "/proposals", "pt-BR,pt;q=0.9")
	require.Equal(t, http.StatusOK, ptRec.Code)
	assert.Contains(t, ptRec.Body.String(), "20/10/2026 12:00")
	assert.Contains(t, ptRec.Body.String(), `lang="pt-BR"`)
}

func TestProposal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "found", target: "/proposals/0", wantStatus: http.StatusOK, wantBody: "Still running"},
		{name: "not found", target: "/proposals/42", wantStatus: http.StatusNotFound, wantBody: "Proposal not found"},
		{name: "invalid id", target: "/proposals/abc", wantStatus: http.StatusBadRequest, wantBody: "Invalid proposal id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := env.get(t, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestProposal_ReadFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.reader.getErr = errors.New("gateway down")

	rec := env.get(t, "/proposals/0", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestVote(t *testing.T) {
	t.Parallel()

	t.Run("requires a wallet", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/proposals/0/vote", "", "", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/proposals", rec.Header().Get("Location"))

		// the reason is shown on the next page
		next := env.get(t, "/proposals", rec.Result().Cookies())
		assert.Contains(t, next.Body.String(), "Connect your wallet to vote")
	})

	t.Run("already voted", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookies := env.connect(t, env.voter)

		rec := env.do(t, http.MethodPost, "/proposals/3/vote", "", "", cookies)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/proposals", rec.Header().Get("Location"))

		next := env.get(t, "/proposals", rec.Result().Cookies())
		assert.Contains(t, next.Body.String(), "You already voted on this proposal")
	})

	t.Run("not votable", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookies := env.connect(t, env.voter)

		rec := env.do(t, http.MethodPost, "/proposals/1/vote", "", "", cookies)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		next := env.get(t, "/proposals", rec.Result().Cookies())
		assert.Contains(t, next.Body.String(), "no longer open for voting")
	})

	t.Run("redirects to the wallet", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookies := env.connect(t, env.voter)

		rec := env.do(t, http.MethodPost, "/proposals/0/vote", "", "", cookies)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "devnet-wallet.multiversx.com", loc.Host)
		assert.Equal(t, "/hook/sign", loc.Path)

		q := loc.Query()
		assert.Equal(t, "vote@0000000000000000", q.Get("data"))
		assert.Equal(t, env.contract, q.Get("receiver"))
		assert.Equal(t, "6000000", q.Get("gasLimit"))
		assert.Equal(t, "https://vote.example.org/wallet/signed", q.Get("callbackUrl"))
	})
}

func TestGovernance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/governance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="connect-notice"`)
	assert.NotContains(t, rec.Body.String(), `id="proposal-form"`)

	cookies := env.connect(t, env.voter)
	rec = env.get(t, "/governance", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `id="proposal-form"`)
	assert.Contains(t, body, `id="submit" disabled`)
	assert.Contains(t, body, `<option value="7" selected>7 days</option>`)
	assert.Contains(t, body, `<option value="1">1 day</option>`)
	assert.Contains(t, body, "/100")
	assert.Contains(t, body, "/1000")
	assert.Contains(t, body, "No transactions submitted yet.")
	assert.Contains(t, body, env.contract)
}

func TestCreateProposal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		form      url.Values
		wantAlert string
	}{
		{
			name:      "missing title",
			form:      url.Values{"title": {"  "}, "description": {"d"}, "duration_days": {"7"}},
			wantAlert: "title is required",
		},
		{
			name:      "missing description",
			form:      url.Values{"title": {"t"}, "description": {""}, "duration_days": {"7"}},
			wantAlert: "description is required",
		},
		{
			name:      "title too long",
			form:      url.Values{"title": {strings.Repeat("a", 101)}, "description": {"d"}},
			wantAlert: "title must be at most 100 characters",
		},
		{
			name:      "unsupported duration",
			form:      url.Values{"title": {"t"}, "description": {"d"}, "duration_days": {"5"}},
			wantAlert: "invalid voting duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			cookies := env.connect(t, env.voter)

			rec := env.do(t, http.MethodPost, "/governance/proposals", formContentType, tt.form.Encode(), cookies)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), `id="form-alert"`)
			assert.Contains(t, rec.Body.String(), tt.wantAlert)
		})
	}

	t.Run("requires a wallet", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		form := url.Values{"title": {"t"}, "description": {"d"}}

		rec := env.do(t, http.MethodPost, "/governance/proposals", formContentType, form.Encode(), nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/governance", rec.Header().Get("Location"))
	})

	t.Run("redirects to the wallet", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookies := env.connect(t, env.voter)
		form := url.Values{"title": {"Fund the hackathon"}, "description": {"Prize pool"}, "duration_days": {"3"}}

		rec := env.do(t, http.MethodPost, "/governance/proposals", formContentType, form.Encode(), cookies)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/hook/sign", loc.Path)
		assert.True(t, strings.HasPrefix(loc.Query().Get("data"), "create_proposal@"))
		assert.Equal(t, "10000000", loc.Query().Get("gasLimit"))
	})
}

func TestWalletConnect(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/wallet/connect", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/hook/login", loc.Path)
	assert.Equal(t, "https://vote.example.org/wallet/callback", loc.Query().Get("callbackUrl"))
}

func TestWalletCallback_InvalidAddress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.get(t, "/wallet/callback?address=erd1nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestWalletDisconnect(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cookies := env.connect(t, env.voter)

	rec := env.do(t, http.MethodPost, "/wallet/disconnect", "", "", cookies)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	next := env.get(t, "/proposals", rec.Result().Cookies())
	assert.Contains(t, next.Body.String(), `id="connect-notice"`)
}

func signedCallback(t *testing.T, env *testEnv, sender string) url.Values {
	t.Helper()

	return url.Values{
		"status":    {multiversx.WalletStatusSigned},
		"nonce":     {"4"},
		"value":     {"0"},
		"receiver":  {env.contract},
		"sender":    {sender},
		"gasPrice":  {"1000000000"},
		"gasLimit":  {"6000000"},
		"data":      {"vote@0000000000000000"},
		"chainID":   {"D"},
		"version":   {"1"},
		"signature": {strings.Repeat("ab", 64)},
	}
}

func TestWalletSigned(t *testing.T) {
	t.Parallel()

	t.Run("broadcasts once", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookies := env.connect(t, env.voter)
		target := "/wallet/signed?" + signedCallback(t, env, env.voter).Encode()

		rec := env.get(t, target, cookies)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "f00dcafe")
		assert.Contains(t, rec.Body.String(), "https://devnet-explorer.multiversx.com/transactions/f00dcafe")
		assert.Equal(t, "3;url=/proposals", rec.Header().Get("Refresh"))

		// reloading the callback returns the recorded broadcast
		rec = env.get(t, target, cookies)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(1), env.onchain.sends.Load())

		gov := env.get(t, "/governance", cookies)
		assert.Contains(t, gov.Body.String(), "broadcast-transaction")
		assert.Contains(t, gov.Body.String(), "f00dcafe")
	})

	t.Run("cancelled in wallet", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.get(t, "/wallet/signed?status=cancelled", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		next := env.get(t, "/proposals", rec.Result().Cookies())
		assert.Contains(t, next.Body.String(), "cancelled in the wallet")
		assert.Equal(t, int32(0), env.onchain.sends.Load())
	})

	t.Run("sender differs from the connected wallet", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		cookies := env.connect(t, env.voter)
		target := "/wallet/signed?" + signedCallback(t, env, testAddress(t, 0x09)).Encode()

		rec := env.get(t, target, cookies)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, int32(0), env.onchain.sends.Load())
	})

	t.Run("gateway rejects the transaction", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.onchain.sendErr = &rpcclient.GatewayError{StatusCode: http.StatusBadRequest, Code: "bad_request", Message: "lowerNonceInTx"}
		target := "/wallet/signed?" + signedCallback(t, env, env.voter).Encode()

		rec := env.get(t, target, nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "could not be broadcast")
		assert.Equal(t, int32(1), env.onchain.sends.Load())
	})
}
