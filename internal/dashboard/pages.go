package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/txops"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
)

const (
	pathProposals    = "/proposals"
	pathGovernance   = "/governance"
	pathWalletLogin  = "/wallet/callback"
	pathWalletSigned = "/wallet/signed"
)

// proposalForm is the proposal creation form. Lengths are checked again in bytes by
// chainballotx.ProposalInput.Validate.
type proposalForm struct {
	Title        string `form:"title" binding:"required,max=100"`
	Description  string `form:"description" binding:"required,max=1000"`
	DurationDays int    `form:"duration_days" binding:"omitempty,oneof=1 3 7 14 30"`
}

func (f proposalForm) input() chainballotx.ProposalInput {
	return chainballotx.ProposalInput{
		Title:        f.Title,
		Description:  f.Description,
		DurationDays: f.DurationDays,
	}.Normalize()
}

func (s *Server) handleHome(c *gin.Context) {
	loc := resolveLocale(c.Request)
	stats := s.reader.Stats(c.Request.Context())

	c.HTML(http.StatusOK, "home.html", homePage{
		page:  s.newPage(c, loc),
		Stats: newStatsView(stats, loc),
	})
}

func (s *Server) handleProposals(c *gin.Context) {
	ctx := c.Request.Context()
	loc := resolveLocale(c.Request)
	addr := connectedAddress(c)
	now := s.now()

	proposals := s.reader.GetProposals(ctx)

	var voted map[uint64]bool
	if addr != "" {
		voted = s.reader.VoteStatus(ctx, addr, proposals)
	}

	views := make([]proposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, s.newProposalView(p, loc, now, addr != "", voted[p.ID]))
	}

	c.HTML(http.StatusOK, "proposals.html", proposalsPage{
		page:      s.newPage(c, loc),
		Proposals: views,
	})
}

func (s *Server) handleProposal(c *gin.Context) {
	ctx := c.Request.Context()
	loc := resolveLocale(c.Request)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	p, err := s.reader.GetProposal(ctx, id)
	if err != nil {
		if errors.Is(err, chainballotx.ErrProposalNotFound) {
			s.renderError(c, http.StatusNotFound, "Proposal not found")
			return
		}
		_ = c.Error(err)
		s.renderError(c, http.StatusBadGateway, "The proposal could not be loaded, try again later")

		return
	}

	addr := connectedAddress(c)
	voted := addr != "" && s.reader.HasVoted(ctx, addr, id)

	c.HTML(http.StatusOK, "proposal.html", proposalPage{
		page:     s.newPage(c, loc),
		Proposal: s.newProposalView(p, loc, s.now(), addr != "", voted),
	})
}

// handleVote checks that the connected wallet may vote and sends it to the wallet sign hook.
func (s *Server) handleVote(c *gin.Context) {
	ctx := c.Request.Context()

	addr := connectedAddress(c)
	if addr == "" {
		addFlash(c, "Connect your wallet to vote")
		c.Redirect(http.StatusSeeOther, pathProposals)

		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	p, err := s.reader.GetProposal(ctx, id)
	if err != nil {
		_ = c.Error(err)
		addFlash(c, "The proposal could not be loaded, try again later")
		c.Redirect(http.StatusSeeOther, pathProposals)

		return
	}

	if err := chainballotx.CheckVotable(p, s.reader.HasVoted(ctx, addr, id), s.now()); err != nil {
		addFlash(c, voteRejection(err))
		c.Redirect(http.StatusSeeOther, pathProposals)

		return
	}

	tx, err := s.builder.Vote(ctx, addr, id)
	if err != nil {
		_ = c.Error(err)
		addFlash(c, "The vote transaction could not be prepared: "+err.Error())
		c.Redirect(http.StatusSeeOther, pathProposals)

		return
	}

	s.redirectToSign(c, tx, pathProposals)
}

func voteRejection(err error) string {
	switch {
	case errors.Is(err, chainballotx.ErrAlreadyVoted):
		return "You already voted on this proposal"
	case errors.Is(err, chainballotx.ErrNotVotable):
		return "This proposal is no longer open for voting"
	default:
		return err.Error()
	}
}

func (s *Server) handleGovernance(c *gin.Context) {
	s.renderGovernance(c, http.StatusOK, chainballotx.ProposalInput{}, "")
}

func (s *Server) renderGovernance(c *gin.Context, status int, in chainballotx.ProposalInput, alert string) {
	loc := resolveLocale(c.Request)
	pg := s.newPage(c, loc)

	data := governancePage{
		page:             pg,
		Form:             newFormView(in),
		Alert:            alert,
		DurationOptions:  chainballotx.DurationDayOptions,
		MaxTitle:         chainballotx.MaxTitleLength,
		MaxDescription:   chainballotx.MaxDescriptionLength,
		ContractAddress:  s.contract,
		ContractExplorer: s.chain.ExplorerAddressURL(s.contract),
	}
	if pg.Connected {
		data.Stats = newStatsView(s.reader.Stats(c.Request.Context()), loc)
		for _, r := range s.reporter.Recent(recentReports) {
			data.Reports = append(data.Reports, newReportView(r, loc))
		}
	}

	c.HTML(status, "governance.html", data)
}

// handleCreateProposal validates the form, builds the create_proposal transaction and sends the
// wallet to the sign hook. Invalid input re-renders the form with an alert.
func (s *Server) handleCreateProposal(c *gin.Context) {
	addr := connectedAddress(c)
	if addr == "" {
		addFlash(c, "Connect your wallet to create a proposal")
		c.Redirect(http.StatusSeeOther, pathGovernance)

		return
	}

	var form proposalForm
	bindErr := c.ShouldBind(&form)
	in := form.input()
	if err := in.Validate(); err != nil {
		s.renderGovernance(c, http.StatusUnprocessableEntity, in, err.Error())
		return
	}
	if bindErr != nil {
		s.renderGovernance(c, http.StatusUnprocessableEntity, in, "Invalid proposal: "+bindErr.Error())
		return
	}

	tx, err := s.builder.CreateProposal(c.Request.Context(), addr, in)
	if err != nil {
		_ = c.Error(err)
		s.renderGovernance(c, http.StatusBadGateway, in, "The proposal transaction could not be prepared: "+err.Error())

		return
	}

	s.redirectToSign(c, tx, pathGovernance)
}

// redirectToSign sends the browser to the wallet sign hook for tx. On failure the user is
// sent back to fallbackPath.
func (s *Server) redirectToSign(c *gin.Context, tx multiversx.Transaction, fallbackPath string) {
	signURL, err := s.wallet.SignURL(tx, s.callbackURL(c, pathWalletSigned))
	if err != nil {
		_ = c.Error(err)
		addFlash(c, "The wallet is not available: "+err.Error())
		c.Redirect(http.StatusSeeOther, fallbackPath)

		return
	}

	s.lggr.Infow("Sending transaction to wallet for signing", "sender", tx.Sender, "data", tx.DataString())
	c.Redirect(http.StatusSeeOther, signURL)
}

func (s *Server) handleWalletConnect(c *gin.Context) {
	loginURL, err := s.wallet.LoginURL(s.callbackURL(c, pathWalletLogin))
	if err != nil {
		_ = c.Error(err)
		s.renderError(c, http.StatusServiceUnavailable, "The wallet is not available")

		return
	}

	c.Redirect(http.StatusFound, loginURL)
}

func (s *Server) handleWalletCallback(c *gin.Context) {
	addr, err := s.wallet.ParseLoginCallback(c.Request.URL.Query())
	if err != nil {
		s.renderError(c, http.StatusBadRequest, "The wallet returned an invalid address")
		return
	}

	if err := setConnectedAddress(c, addr); err != nil {
		_ = c.Error(err)
		s.renderError(c, http.StatusInternalServerError, "The wallet session could not be saved")

		return
	}
	s.lggr.Infow("Wallet connected", "address", addr)

	c.Redirect(http.StatusFound, pathProposals)
}

func (s *Server) handleWalletDisconnect(c *gin.Context) {
	if err := clearSession(c); err != nil {
		_ = c.Error(err)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// handleWalletSigned receives the signed transaction from the wallet and broadcasts it. A
// reload of this page returns the previous broadcast instead of sending the transaction again.
func (s *Server) handleWalletSigned(c *gin.Context) {
	tx, err := s.wallet.ParseSignCallback(c.Request.URL.Query())
	if err != nil {
		if errors.Is(err, multiversx.ErrWalletCancelled) {
			addFlash(c, "The transaction was cancelled in the wallet")
		} else {
			addFlash(c, "The wallet returned an invalid transaction: "+err.Error())
		}
		c.Redirect(http.StatusSeeOther, pathProposals)

		return
	}

	if addr := connectedAddress(c); addr != "" && addr != tx.Sender {
		addFlash(c, "The signed transaction does not belong to the connected wallet")
		c.Redirect(http.StatusSeeOther, pathProposals)

		return
	}

	out, err := txops.Broadcast(s.bundle.WithContext(c.Request.Context()), s.chain, tx)
	if err != nil {
		_ = c.Error(err)
		s.renderError(c, http.StatusBadGateway, "The transaction could not be broadcast: "+err.Error())

		return
	}

	loc := resolveLocale(c.Request)
	refetch := max(int(s.cfg.RefetchDelay.Seconds()), 1)
	c.Header("Refresh", fmt.Sprintf("%d;url=%s", refetch, pathProposals))
	c.HTML(http.StatusOK, "signed.html", signedPage{
		page:           s.newPage(c, loc),
		TxHash:         out.TxHash,
		ExplorerURL:    out.ExplorerURL,
		RefetchSeconds: refetch,
	})
}

func (s *Server) renderError(c *gin.Context, status int, msg string) {
	loc := resolveLocale(c.Request)

	c.HTML(status, "error.html", errorPage{
		page:    s.newPage(c, loc),
		Status:  status,
		Message: msg,
	})
}
