package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/txops"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/operations"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}

	return tmpl, nil
}

// Badges shown next to a proposal.
const (
	BadgeExpired = "Expired"
	BadgeActive  = "Active"
)

// page holds what every page renders in its header.
type page struct {
	Lang        string
	AppName     string
	Description string
	Network     string
	Explorer    string
	Address     string
	ShortAddr   string
	Connected   bool
	Flashes     []string
}

type statsView struct {
	TotalProposals  string
	TotalVotes      string
	ActiveProposals string
	Participants    string
}

type proposalView struct {
	ID          uint64
	Title       string
	Description string
	Badge       string
	Votes       string
	Creator     string
	CreatorURL  string
	EndDate     string
	Placeholder bool
	Voted       bool
	CanVote     bool
}

type reportView struct {
	Operation string
	Time      string
	Result    string
	Failed    bool
}

type formView struct {
	Title        string
	Description  string
	DurationDays int
	Complete     bool
}

type homePage struct {
	page
	Stats statsView
}

type proposalsPage struct {
	page
	Proposals []proposalView
}

type proposalPage struct {
	page
	Proposal proposalView
}

type governancePage struct {
	page
	Stats            statsView
	Form             formView
	Alert            string
	DurationOptions  []int
	MaxTitle         int
	MaxDescription   int
	Reports          []reportView
	ContractAddress  string
	ContractExplorer string
}

type signedPage struct {
	page
	TxHash         string
	ExplorerURL    string
	RefetchSeconds int
}

type errorPage struct {
	page
	Status  int
	Message string
}

func (s *Server) newPage(c *gin.Context, loc locale) page {
	addr := connectedAddress(c)

	return page{
		Lang:        loc.Lang(),
		AppName:     AppName,
		Description: AppDescription,
		Network:     s.chain.DisplayName(),
		Explorer:    s.chain.ExplorerURL,
		Address:     addr,
		ShortAddr:   multiversx.TruncateAddress(addr, 10, 8),
		Connected:   addr != "",
		Flashes:     takeFlashes(c),
	}
}

func newStatsView(st chainballotx.Stats, loc locale) statsView {
	return statsView{
		TotalProposals:  loc.Count(st.TotalProposals),
		TotalVotes:      loc.Count(st.TotalVotes),
		ActiveProposals: loc.Count(st.ActiveProposals),
		Participants:    loc.Count(st.Participants),
	}
}

// ProposalBadge is Expired once the deadline passed, Active while open and the status name
// otherwise.
func ProposalBadge(p chainballotx.Proposal, now time.Time) string {
	switch {
	case p.Expired(now):
		return BadgeExpired
	case p.Status == chainballotx.StatusOpen:
		return BadgeActive
	default:
		return string(p.Status)
	}
}

func (s *Server) newProposalView(p chainballotx.Proposal, loc locale, now time.Time, connected, voted bool) proposalView {
	return proposalView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Badge:       ProposalBadge(p, now),
		Votes:       loc.Count(p.TotalVotes()),
		Creator:     multiversx.TruncateAddress(p.Creator, 10, 8),
		CreatorURL:  s.chain.ExplorerAddressURL(p.Creator),
		EndDate:     loc.Date(p.EndsAt),
		Placeholder: p.Placeholder,
		Voted:       voted,
		CanVote:     connected && !voted && !p.Placeholder && p.Votable(now),
	}
}

func newReportView(r operations.Report[any, any], loc locale) reportView {
	v := reportView{Operation: r.Def.ID}
	if r.Timestamp != nil {
		v.Time = loc.Date(*r.Timestamp)
	}
	if r.Err != nil {
		v.Failed = true
		v.Result = r.Err.Message

		return v
	}

	switch out := r.Output.(type) {
	case txops.BroadcastOutput:
		v.Result = out.TxHash
	case txops.ConfirmOutput:
		v.Result = out.TxHash + " " + out.Status
	default:
		v.Result = fmt.Sprint(out)
	}

	return v
}

func newFormView(in chainballotx.ProposalInput) formView {
	if in.DurationDays == 0 {
		in.DurationDays = chainballotx.DefaultDurationDays
	}

	return formView{
		Title:        in.Title,
		Description:  in.Description,
		DurationDays: in.DurationDays,
		Complete:     in.Title != "" && in.Description != "",
	}
}
