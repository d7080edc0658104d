package chainballotx

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// Contract limits enforced before a transaction is built.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MinDuration          = time.Hour
	DefaultDurationDays  = 7
	// MaxProposalsPerUser is enforced by the contract only.
	MaxProposalsPerUser = 10
)

// Gas limits per endpoint.
const (
	GasLimitCreateProposal uint64 = 10_000_000
	GasLimitVote           uint64 = 6_000_000
	GasLimitCancelProposal uint64 = 6_000_000
	GasLimitAdmin          uint64 = 6_000_000
)

// DurationDayOptions are the voting periods offered when creating a proposal.
var DurationDayOptions = []int{1, 3, 7, 14, 30}

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrTitleTooLong        = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	ErrDescriptionTooLong  = fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	ErrInvalidDuration     = errors.New("invalid voting duration")
)

// ProposalInput is the user input of a new proposal.
type ProposalInput struct {
	Title        string `json:"title" form:"title"`
	Description  string `json:"description" form:"description"`
	DurationDays int    `json:"durationDays" form:"duration_days"`
}

// Normalize trims the text fields and applies the default duration.
func (in ProposalInput) Normalize() ProposalInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.DurationDays == 0 {
		in.DurationDays = DefaultDurationDays
	}

	return in
}

// Validate checks the input against the contract limits. Lengths are counted in bytes, as
// the contract does.
func (in ProposalInput) Validate() error {
	in = in.Normalize()

	switch {
	case in.Title == "":
		return ErrTitleRequired
	case in.Description == "":
		return ErrDescriptionRequired
	case len(in.Title) > MaxTitleLength:
		return ErrTitleTooLong
	case len(in.Description) > MaxDescriptionLength:
		return ErrDescriptionTooLong
	case !slices.Contains(DurationDayOptions, in.DurationDays):
		return fmt.Errorf("%w: %d days, choose one of %v", ErrInvalidDuration, in.DurationDays, DurationDayOptions)
	case in.Duration() < MinDuration:
		return fmt.Errorf("%w: must be at least %s", ErrInvalidDuration, MinDuration)
	}

	return nil
}

// Duration returns the voting period.
func (in ProposalInput) Duration() time.Duration {
	return time.Duration(in.DurationDays) * 24 * time.Hour
}

// TxBuilder builds unsigned contract transactions for the wallet to sign.
type TxBuilder struct {
	lggr     logger.Logger
	onchain  multiversx.OnchainClient
	chainID  string
	contract string
}

// NewTxBuilder returns a TxBuilder. onchain is optional; without it the nonce is left at 0
// and network defaults are used for the gas price and version.
func NewTxBuilder(lggr logger.Logger, onchain multiversx.OnchainClient, chainID, contractAddress string) (*TxBuilder, error) {
	if chainID == "" {
		return nil, errors.New("chain ID is required")
	}
	if contractAddress == "" {
		return nil, errors.New("contract address is required")
	}

	return &TxBuilder{
		lggr:     lggr,
		onchain:  onchain,
		chainID:  chainID,
		contract: contractAddress,
	}, nil
}

// CreateProposal builds create_proposal@title@description@duration.
func (b *TxBuilder) CreateProposal(ctx context.Context, sender string, in ProposalInput) (multiversx.Transaction, error) {
	if err := in.Validate(); err != nil {
		return multiversx.Transaction{}, err
	}
	// the contract stores the trimmed text
	in = in.Normalize()

	data := EncodeTxData(EndpointCreateProposal,
		EncodeBytesArg([]byte(in.Title)),
		EncodeBytesArg([]byte(in.Description)),
		EncodeU64Fixed(uint64(in.Duration().Seconds())),
	)

	return b.build(ctx, sender, data, GasLimitCreateProposal)
}

// Vote builds vote@id.
func (b *TxBuilder) Vote(ctx context.Context, sender string, proposalID uint64) (multiversx.Transaction, error) {
	return b.build(ctx, sender, EncodeTxData(EndpointVote, EncodeU64Fixed(proposalID)), GasLimitVote)
}

// CancelProposal builds cancel_proposal@id. Only the creator or the owner may cancel.
func (b *TxBuilder) CancelProposal(ctx context.Context, sender string, proposalID uint64) (multiversx.Transaction, error) {
	return b.build(ctx, sender, EncodeTxData(EndpointCancelProposal, EncodeU64Fixed(proposalID)), GasLimitCancelProposal)
}

func (b *TxBuilder) Pause(ctx context.Context, sender string) (multiversx.Transaction, error) {
	return b.build(ctx, sender, EncodeTxData(EndpointPause), GasLimitAdmin)
}

func (b *TxBuilder) Unpause(ctx context.Context, sender string) (multiversx.Transaction, error) {
	return b.build(ctx, sender, EncodeTxData(EndpointUnpause), GasLimitAdmin)
}

// TransferOwnership builds transfer_ownership@pubkey.
func (b *TxBuilder) TransferOwnership(ctx context.Context, sender, newOwner string) (multiversx.Transaction, error) {
	arg, err := EncodeAddressArg(newOwner)
	if err != nil {
		return multiversx.Transaction{}, fmt.Errorf("new owner: %w", err)
	}

	return b.build(ctx, sender, EncodeTxData(EndpointTransferOwnership, arg), GasLimitAdmin)
}

func (b *TxBuilder) build(ctx context.Context, sender string, data []byte, gasLimit uint64) (multiversx.Transaction, error) {
	tx := multiversx.Transaction{
		Value:    "0",
		Receiver: b.contract,
		Sender:   sender,
		GasPrice: multiversx.DefaultGasPrice,
		GasLimit: gasLimit,
		Data:     data,
		ChainID:  b.chainID,
		Version:  multiversx.DefaultTxVersion,
	}

	if b.onchain != nil {
		b.applyNetworkConfig(ctx, &tx)
		b.applyNonce(ctx, &tx)
	}

	if err := tx.ValidateUnsigned(); err != nil {
		return multiversx.Transaction{}, err
	}
	b.lggr.Debugw("Transaction built", "data", tx.DataString(), "sender", sender, "nonce", tx.Nonce)

	return tx, nil
}

func (b *TxBuilder) applyNetworkConfig(ctx context.Context, tx *multiversx.Transaction) {
	cfg, err := b.onchain.NetworkConfig(ctx)
	if err != nil {
		b.lggr.Warnw("Failed to read network config, using defaults", "error", err)
		return
	}
	if cfg.MinGasPrice > tx.GasPrice {
		tx.GasPrice = cfg.MinGasPrice
	}
	if cfg.MinTxVersion > tx.Version {
		tx.Version = cfg.MinTxVersion
	}
}

func (b *TxBuilder) applyNonce(ctx context.Context, tx *multiversx.Transaction) {
	if !multiversx.IsValidAddress(tx.Sender) {
		return
	}

	acc, err := b.onchain.Account(ctx, tx.Sender)
	if err != nil {
		b.lggr.Warnw("Failed to read sender nonce, the wallet will set it", "sender", tx.Sender, "error", err)
		return
	}
	tx.Nonce = acc.Nonce
}
