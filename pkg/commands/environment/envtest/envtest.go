// Package envtest builds command environments backed by in-memory fakes.
package envtest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/provider/rpcclient"
	"github.com/chainballotx/chainballotx-dashboard/config/env"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// TxHash is returned for every broadcast transaction.
const TxHash = "f00dcafe"

// Now is the fixed clock of the fake environment.
var Now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// Address returns a valid address made of b repeated.
func Address(t *testing.T, b byte) string {
	t.Helper()

	addr, err := multiversx.EncodeAddress(bytes.Repeat([]byte{b}, multiversx.PubKeyLength))
	require.NoError(t, err)

	return addr
}

// Reader serves fixed proposals. Voted is keyed by address then proposal id.
type Reader struct {
	Proposals []chainballotx.Proposal
	Summary   chainballotx.Stats
	Voted     map[string]map[uint64]bool
}

func (r *Reader) GetProposals(context.Context) []chainballotx.Proposal {
	return r.Proposals
}

func (r *Reader) GetProposal(_ context.Context, id uint64) (chainballotx.Proposal, error) {
	for _, p := range r.Proposals {
		if p.ID == id {
			return p, nil
		}
	}

	return chainballotx.Proposal{}, chainballotx.ErrProposalNotFound
}

func (r *Reader) HasVoted(_ context.Context, address string, id uint64) bool {
	return r.Voted[address][id]
}

func (r *Reader) VoteStatus(ctx context.Context, address string, proposals []chainballotx.Proposal) map[uint64]bool {
	out := make(map[uint64]bool, len(proposals))
	for _, p := range proposals {
		out[p.ID] = r.HasVoted(ctx, address, p.ID)
	}

	return out
}

func (r *Reader) Stats(context.Context) chainballotx.Stats {
	return r.Summary
}

// Gateway records broadcasts and confirms every transaction with ConfirmStatus.
type Gateway struct {
	mu            sync.Mutex
	sent          []multiversx.Transaction
	Sends         atomic.Int32
	SendErr       error
	ConfirmStatus string
	HealthErr     error
}

func (g *Gateway) QueryContract(context.Context, multiversx.VMQuery) (*multiversx.VMOutput, error) {
	return nil, errors.New("not implemented")
}

func (g *Gateway) SendTransaction(_ context.Context, tx multiversx.Transaction) (string, error) {
	g.Sends.Add(1)
	if g.SendErr != nil {
		return "", g.SendErr
	}
	g.mu.Lock()
	g.sent = append(g.sent, tx)
	g.mu.Unlock()

	return TxHash, nil
}

func (g *Gateway) TransactionStatus(context.Context, string) (string, error) {
	return g.ConfirmStatus, nil
}

func (g *Gateway) NetworkConfig(context.Context) (*multiversx.NetworkConfig, error) {
	return nil, errors.New("not implemented")
}

func (g *Gateway) Account(context.Context, string) (*multiversx.Account, error) {
	return nil, errors.New("not implemented")
}

func (g *Gateway) ConfirmTx(_ context.Context, txHash string, _ ...rpcclient.ConfirmOpt) (string, error) {
	if g.ConfirmStatus == "" {
		return "success", nil
	}
	if g.ConfirmStatus != "success" {
		return g.ConfirmStatus, errors.New("transaction " + txHash + " " + g.ConfirmStatus)
	}

	return g.ConfirmStatus, nil
}

func (g *Gateway) HealthCheck(context.Context) error {
	return g.HealthErr
}

// Sent returns the broadcast transactions.
func (g *Gateway) Sent() []multiversx.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]multiversx.Transaction(nil), g.sent...)
}

// Env is a fake environment on devnet.
type Env struct {
	*environment.Environment

	FakeReader  *Reader
	FakeGateway *Gateway
	Contract    string
	Voter       string
}

// New returns an environment with four proposals: 0 open, 1 expired, 2 closed and 3 open and
// already voted by Voter.
func New(t *testing.T) *Env {
	t.Helper()

	contract := Address(t, 0x01)
	voter := Address(t, 0x02)
	creator := Address(t, 0x03)

	reader := &Reader{
		Proposals: []chainballotx.Proposal{
			{
				ID: 0, Title: "Open proposal", Description: "Still running", Creator: creator,
				VotesFor: 1234, Status: chainballotx.StatusOpen, Active: true, EndsAt: Now.Add(48 * time.Hour),
			},
			{
				ID: 1, Title: "Expired proposal", Description: "Deadline passed", Creator: creator,
				VotesFor: 3, Status: chainballotx.StatusApproved, Active: true, EndsAt: Now.Add(-24 * time.Hour),
			},
			{
				ID: 2, Title: "Closed proposal", Description: "Cancelled", Creator: creator,
				Status: chainballotx.StatusClosed, EndsAt: Now.Add(24 * time.Hour),
			},
			{
				ID: 3, Title: "Voted proposal", Description: "Already voted", Creator: creator,
				VotesFor: 1, Status: chainballotx.StatusOpen, Active: true, EndsAt: Now.Add(24 * time.Hour),
			},
		},
		Summary: chainballotx.Stats{TotalProposals: 4, TotalVotes: 1238, ActiveProposals: 3, Participants: 866},
		Voted:   map[string]map[uint64]bool{voter: {3: true}},
	}
	gateway := &Gateway{}

	chain := &multiversx.Chain{
		Network:     multiversx.NetworkDevnet,
		ChainID:     "D",
		Client:      gateway,
		URL:         "https://devnet-gateway.multiversx.com",
		WalletURL:   "https://devnet-wallet.multiversx.com",
		ExplorerURL: "https://devnet-explorer.multiversx.com",
	}

	lggr := logger.Test(t)
	builder, err := chainballotx.NewTxBuilder(lggr, nil, chain.ChainID, contract)
	require.NoError(t, err)

	return &Env{
		Environment: &environment.Environment{
			Logger: lggr,
			Config: &env.Config{
				Network:  env.NetworkConfig{Name: multiversx.NetworkDevnet},
				Contract: env.ContractConfig{Address: contract},
				Server: env.ServerConfig{
					ListenAddr:   "127.0.0.1:0",
					SessionKey:   "0123456789abcdef0123456789abcdef",
					RefetchDelay: env.DefaultRefetchDelay,
				},
				Log: env.LogConfig{Level: "debug"},
			},
			Chain:     chain,
			Reader:    reader,
			Builder:   builder,
			Confirmer: gateway,
			Health:    gateway,
		},
		FakeReader:  reader,
		FakeGateway: gateway,
		Contract:    contract,
		Voter:       voter,
	}
}

// Loader returns an environment.LoaderFunc that always returns e and records the options it
// was called with.
func (e *Env) Loader(got *environment.Options) environment.LoaderFunc {
	return func(_ context.Context, opts environment.Options) (*environment.Environment, error) {
		if got != nil {
			*got = opts
		}

		return e.Environment, nil
	}
}

// FailingLoader returns a loader that always fails with err.
func FailingLoader(err error) environment.LoaderFunc {
	return func(context.Context, environment.Options) (*environment.Environment, error) {
		return nil, err
	}
}
