package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/txops"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
)

type prepareProposalRequest struct {
	Sender       string `json:"sender" binding:"required,erd_address"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	DurationDays int    `json:"durationDays"`
}

type prepareVoteRequest struct {
	Sender     string  `json:"sender" binding:"required,erd_address"`
	ProposalID *uint64 `json:"proposalId" binding:"required"`
}

// preparedTransaction is an unsigned transaction plus the wallet hook URL that signs it.
type preparedTransaction struct {
	Transaction multiversx.Transaction `json:"transaction"`
	SignURL     string                 `json:"signUrl,omitempty"`
}

func apiError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func parseProposalID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, errors.New("invalid proposal id"))
		return 0, false
	}

	return id, true
}

func (s *Server) apiProposals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"proposals": s.reader.GetProposals(c.Request.Context())})
}

func (s *Server) apiProposal(c *gin.Context) {
	id, ok := parseProposalID(c)
	if !ok {
		return
	}

	p, err := s.reader.GetProposal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, chainballotx.ErrProposalNotFound) {
			apiError(c, http.StatusNotFound, err)
			return
		}
		apiError(c, http.StatusBadGateway, err)

		return
	}

	c.JSON(http.StatusOK, p)
}

func (s *Server) apiVoted(c *gin.Context) {
	id, ok := parseProposalID(c)
	if !ok {
		return
	}

	addr := c.Query("address")
	if !multiversx.IsValidAddress(addr) {
		apiError(c, http.StatusBadRequest, multiversx.ErrInvalidAddress)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposalId": id,
		"address":    addr,
		"voted":      s.reader.HasVoted(c.Request.Context(), addr, id),
	})
}

func (s *Server) apiStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.reader.Stats(c.Request.Context()))
}

func (s *Server) apiABIEndpoints(c *gin.Context) {
	abi, err := chainballotx.ABI()
	if err != nil {
		apiError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":      abi.Name,
		"endpoints": abi.AvailableEndpoints(),
		"events":    abi.EventIdentifiers(),
	})
}

// apiBroadcast broadcasts a transaction signed by an external signer.
func (s *Server) apiBroadcast(c *gin.Context) {
	var tx multiversx.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if err := tx.ValidateSigned(); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	if tx.ChainID != s.chain.ChainID {
		apiError(c, http.StatusBadRequest, errors.New("transaction chain ID does not match the network"))
		return
	}

	out, err := txops.Broadcast(s.bundle.WithContext(c.Request.Context()), s.chain, tx)
	if err != nil {
		apiError(c, http.StatusBadGateway, err)
		return
	}

	c.JSON(http.StatusAccepted, out)
}

func (s *Server) apiPrepareProposal(c *gin.Context) {
	var req prepareProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}

	in := chainballotx.ProposalInput{
		Title:        req.Title,
		Description:  req.Description,
		DurationDays: req.DurationDays,
	}.Normalize()
	if err := in.Validate(); err != nil {
		apiError(c, http.StatusUnprocessableEntity, err)
		return
	}

	tx, err := s.builder.CreateProposal(c.Request.Context(), req.Sender, in)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, s.prepared(c, tx))
}

func (s *Server) apiPrepareVote(c *gin.Context) {
	var req prepareVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	id := *req.ProposalID

	p, err := s.reader.GetProposal(ctx, id)
	if err != nil {
		if errors.Is(err, chainballotx.ErrProposalNotFound) {
			apiError(c, http.StatusNotFound, err)
			return
		}
		apiError(c, http.StatusBadGateway, err)

		return
	}
	if err := chainballotx.CheckVotable(p, s.reader.HasVoted(ctx, req.Sender, id), s.now()); err != nil {
		apiError(c, http.StatusConflict, err)
		return
	}

	tx, err := s.builder.Vote(ctx, req.Sender, id)
	if err != nil {
		apiError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, s.prepared(c, tx))
}

func (s *Server) prepared(c *gin.Context, tx multiversx.Transaction) preparedTransaction {
	out := preparedTransaction{Transaction: tx}
	if signURL, err := s.wallet.SignURL(tx, s.callbackURL(c, pathWalletSigned)); err == nil {
		out.SignURL = signURL
	}

	return out
}

func (s *Server) handleHealthz(c *gin.Context) {
	body := gin.H{"status": "ok", "network": s.chain.Name(), "chainId": s.chain.ChainID}
	if s.health != nil {
		if err := s.health.HealthCheck(c.Request.Context()); err != nil {
			_ = c.Error(err)
			body["status"] = "degraded"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)

			return
		}
	}

	c.JSON(http.StatusOK, body)
}
