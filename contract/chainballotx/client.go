package chainballotx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// DefaultContractAddress is the ChainBallotX deployment on devnet.
const DefaultContractAddress = "erd1qqqqqqqqqqqqqpgqehrq4xr838lrlv0h4ht20fnl9ywsw3v7sjus85qv7x"

// ClientOpt configures a Client.
type ClientOpt func(*Client)

// WithClock overrides the clock used to derive proposal statuses.
func WithClock(now func() time.Time) ClientOpt {
	return func(c *Client) {
		c.now = now
	}
}

// Client reads the ChainBallotX contract through gateway view queries. Read failures of the
// list and stats views are logged and replaced by placeholder data.
type Client struct {
	lggr     logger.Logger
	onchain  multiversx.OnchainClient
	contract string
	now      func() time.Time
}

func NewClient(lggr logger.Logger, onchain multiversx.OnchainClient, contractAddress string, opts ...ClientOpt) (*Client, error) {
	if onchain == nil {
		return nil, errors.New("onchain client is required")
	}
	if contractAddress == "" {
		return nil, errors.New("contract address is required")
	}

	c := &Client{
		lggr:     lggr,
		onchain:  onchain,
		contract: contractAddress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ContractAddress returns the address of the contract being read.
func (c *Client) ContractAddress() string {
	return c.contract
}

func (c *Client) query(ctx context.Context, funcName string, args ...string) ([]string, error) {
	if args == nil {
		args = []string{}
	}

	out, err := c.onchain.QueryContract(ctx, multiversx.VMQuery{
		ScAddress: c.contract,
		FuncName:  funcName,
		Args:      args,
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", funcName, err)
	}
	c.lggr.Debugw("Contract queried", "func", funcName, "args", args, "returnCode", out.ReturnCode)

	return out.ReturnData, nil
}

func (c *Client) queryU64(ctx context.Context, funcName string, args ...string) (uint64, error) {
	data, err := c.query(ctx, funcName, args...)
	if err != nil {
		return 0, err
	}
	v, _, err := DecodeU64(data)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", funcName, err)
	}

	return v, nil
}

func (c *Client) queryBool(ctx context.Context, funcName string, args ...string) (bool, error) {
	data, err := c.query(ctx, funcName, args...)
	if err != nil {
		return false, err
	}
	v, err := DecodeBool(data)
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", funcName, err)
	}

	return v, nil
}

func (c *Client) TotalProposals(ctx context.Context) (uint64, error) {
	return c.queryU64(ctx, ViewTotalProposals)
}

func (c *Client) TotalVotes(ctx context.Context) (uint64, error) {
	return c.queryU64(ctx, ViewTotalVotes)
}

func (c *Client) IsPaused(ctx context.Context) (bool, error) {
	return c.queryBool(ctx, ViewContractPaused)
}

// Owner returns the bech32 address of the contract owner.
func (c *Client) Owner(ctx context.Context) (string, error) {
	data, err := c.query(ctx, ViewOwner)
	if err != nil {
		return "", err
	}

	return DecodeAddress(data)
}

// GetProposal reads the fields of one proposal concurrently and assembles the view model.
// Empty fields fall back to display defaults.
func (c *Client) GetProposal(ctx context.Context, id uint64) (Proposal, error) {
	views := []string{
		ViewProposalTitle,
		ViewProposalDescription,
		ViewProposalCreator,
		ViewProposalVoteCount,
		ViewProposalDeadline,
		ViewProposalActive,
	}
	results := make([][]string, len(views))
	arg := EncodeU64Arg(id)

	g, gctx := errgroup.WithContext(ctx)
	for i, view := range views {
		g.Go(func() error {
			data, err := c.query(gctx, view, arg)
			if err != nil {
				return err
			}
			results[i] = data

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, multiversx.ErrVMQuery) {
			return Proposal{}, fmt.Errorf("%w: id %d: %w", ErrProposalNotFound, id, err)
		}

		return Proposal{}, fmt.Errorf("failed to read proposal %d: %w", id, err)
	}

	title, _, err := DecodeString(results[0])
	if err != nil {
		return Proposal{}, err
	}
	description, _, err := DecodeString(results[1])
	if err != nil {
		return Proposal{}, err
	}
	creator, err := DecodeAddress(results[2])
	if err != nil {
		c.lggr.Warnw("Undecodable proposal creator", "id", id, "error", err)
		creator = ""
	}
	votes, _, err := DecodeU64(results[3])
	if err != nil {
		return Proposal{}, err
	}
	deadline, _, err := DecodeU64(results[4])
	if err != nil {
		return Proposal{}, err
	}
	active, err := DecodeBool(results[5])
	if err != nil {
		return Proposal{}, err
	}

	if title == "" {
		title = fmt.Sprintf("Proposal %d", id+1)
	}
	if description == "" {
		description = "No description"
	}

	now := c.now()
	endsAt := time.Unix(int64(deadline), 0) //nolint:gosec // deadlines are block timestamps

	return Proposal{
		ID:          id,
		Title:       title,
		Description: description,
		Creator:     creator,
		VotesFor:    votes,
		Status:      DeriveStatus(active, endsAt, votes, now),
		CreatedAt:   now.Add(-createdAtEstimate),
		EndsAt:      endsAt,
		Active:      active,
	}, nil
}

// GetProposals reads every proposal in id order. When the contract has no proposals or the
// total cannot be read it returns the placeholder proposals. Proposals that fail to load are
// skipped.
func (c *Client) GetProposals(ctx context.Context) []Proposal {
	data, err := c.query(ctx, ViewTotalProposals)
	if err != nil {
		c.lggr.Errorw("Failed to read total proposals, showing placeholder proposals", "error", err)
		return FallbackProposals(c.now())
	}
	total, present, err := DecodeU64(data)
	if err != nil || !present || total == 0 {
		c.lggr.Infow("No proposals found, showing placeholder proposals", "total", total, "error", err)
		return FallbackProposals(c.now())
	}

	proposals := make([]Proposal, 0, total)
	for id := range total {
		p, err := c.GetProposal(ctx, id)
		if err != nil {
			c.lggr.Errorw("Failed to read proposal", "id", id, "error", err)
			continue
		}
		proposals = append(proposals, p)
	}
	if len(proposals) == 0 {
		return FallbackProposals(c.now())
	}
	c.lggr.Infow("Proposals loaded", "count", len(proposals), "total", total)

	return proposals
}

// HasVoted reports whether address voted on proposal id. Errors are logged and read as false.
func (c *Client) HasVoted(ctx context.Context, address string, id uint64) bool {
	addrArg, err := EncodeAddressArg(address)
	if err != nil {
		c.lggr.Warnw("Cannot check vote of invalid address", "address", address, "error", err)
		return false
	}

	voted, err := c.queryBool(ctx, ViewHasUserVoted, EncodeU64Arg(id), addrArg)
	if err != nil {
		c.lggr.Errorw("Failed to check vote", "id", id, "address", address, "error", err)
		return false
	}

	return voted
}

// VoteStatus checks, one proposal at a time, whether address voted on each proposal.
func (c *Client) VoteStatus(ctx context.Context, address string, proposals []Proposal) map[uint64]bool {
	status := make(map[uint64]bool, len(proposals))
	for _, p := range proposals {
		status[p.ID] = c.HasVoted(ctx, address, p.ID)
	}

	return status
}

// Stats reads the contract totals and estimates the derived counters. Failures return
// FallbackStats.
func (c *Client) Stats(ctx context.Context) Stats {
	var totalProposals, totalVotes uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalProposals, err = c.TotalProposals(gctx)

		return err
	})
	g.Go(func() error {
		var err error
		totalVotes, err = c.TotalVotes(gctx)

		return err
	})
	if err := g.Wait(); err != nil {
		c.lggr.Errorw("Failed to read contract stats, showing placeholder stats", "error", err)
		return FallbackStats()
	}

	return EstimateStats(totalProposals, totalVotes)
}
