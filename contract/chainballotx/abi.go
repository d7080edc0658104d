package chainballotx

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

//go:embed abi/chainballotx.abi.json
var abiJSON []byte

// Endpoint mutabilities.
const (
	MutabilityMutable  = "mutable"
	MutabilityReadonly = "readonly"
)

// Contract endpoint names.
const (
	EndpointCreateProposal    = "create_proposal"
	EndpointVote              = "vote"
	EndpointCancelProposal    = "cancel_proposal"
	EndpointPause             = "pause"
	EndpointUnpause           = "unpause"
	EndpointTransferOwnership = "transfer_ownership"

	ViewProposalTitle       = "get_proposal_title"
	ViewProposalDescription = "get_proposal_description"
	ViewProposalCreator     = "get_proposal_creator"
	ViewProposalVoteCount   = "get_proposal_vote_count"
	ViewProposalDeadline    = "get_proposal_deadline"
	ViewProposalActive      = "is_proposal_active"
	ViewTotalProposals      = "get_total_proposals"
	ViewTotalVotes          = "get_total_votes"
	ViewHasUserVoted        = "has_user_voted_on_proposal"
	ViewContractPaused      = "is_contract_paused"
	ViewOwner               = "get_owner"
)

var ErrUnknownEndpoint = errors.New("unknown contract endpoint")

// ABIParam is a named and typed endpoint or event parameter.
type ABIParam struct {
	Name    string `json:"name,omitempty"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// ABIEndpoint describes a contract endpoint.
type ABIEndpoint struct {
	Name       string     `json:"name"`
	OnlyOwner  bool       `json:"onlyOwner,omitempty"`
	Mutability string     `json:"mutability"`
	Inputs     []ABIParam `json:"inputs"`
	Outputs    []ABIParam `json:"outputs"`
}

// IsView reports whether the endpoint can be queried without a transaction.
func (e ABIEndpoint) IsView() bool {
	return e.Mutability == MutabilityReadonly
}

// ABIEvent describes an event emitted by the contract.
type ABIEvent struct {
	Identifier string     `json:"identifier"`
	Inputs     []ABIParam `json:"inputs"`
}

// ABIDocument is the contract ABI.
type ABIDocument struct {
	Name      string        `json:"name"`
	Endpoints []ABIEndpoint `json:"endpoints"`
	Events    []ABIEvent    `json:"events"`
}

// EndpointSummary is the short form listed by the dashboard and the CLI.
type EndpointSummary struct {
	Name       string `json:"name"`
	Mutability string `json:"mutability"`
	Inputs     int    `json:"inputs"`
	Outputs    int    `json:"outputs"`
}

// ParseABI decodes an ABI document.
func ParseABI(data []byte) (*ABIDocument, error) {
	var doc ABIDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	if len(doc.Endpoints) == 0 {
		return nil, errors.New("contract ABI has no endpoints")
	}

	return &doc, nil
}

var embeddedABI = sync.OnceValues(func() (*ABIDocument, error) {
	return ParseABI(abiJSON)
})

// ABI returns the embedded ChainBallotX ABI.
func ABI() (*ABIDocument, error) {
	return embeddedABI()
}

// Endpoint looks up an endpoint by name.
func (a *ABIDocument) Endpoint(name string) (ABIEndpoint, error) {
	i := slices.IndexFunc(a.Endpoints, func(e ABIEndpoint) bool { return e.Name == name })
	if i < 0 {
		return ABIEndpoint{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}

	return a.Endpoints[i], nil
}

func (a *ABIDocument) HasEndpoint(name string) bool {
	_, err := a.Endpoint(name)
	return err == nil
}

// AvailableEndpoints lists the endpoints in ABI order.
func (a *ABIDocument) AvailableEndpoints() []EndpointSummary {
	out := make([]EndpointSummary, 0, len(a.Endpoints))
	for _, e := range a.Endpoints {
		out = append(out, EndpointSummary{
			Name:       e.Name,
			Mutability: e.Mutability,
			Inputs:     len(e.Inputs),
			Outputs:    len(e.Outputs),
		})
	}

	return out
}

// Event looks up an event by identifier.
func (a *ABIDocument) Event(identifier string) (ABIEvent, bool) {
	i := slices.IndexFunc(a.Events, func(e ABIEvent) bool { return e.Identifier == identifier })
	if i < 0 {
		return ABIEvent{}, false
	}

	return a.Events[i], true
}

func (a *ABIDocument) EventIdentifiers() []string {
	out := make([]string, 0, len(a.Events))
	for _, e := range a.Events {
		out = append(out, e.Identifier)
	}

	return out
}
