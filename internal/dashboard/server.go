// Package dashboard serves the governance dashboard: server rendered pages for browsing and
// voting on proposals, the wallet hook flow and a JSON API.
//
// The server never signs. Transactions are built unsigned, handed to the web wallet through its
// sign hook and broadcast when the wallet redirects back with the signature.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/operations"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

const (
	AppName        = "ChainBallotX"
	AppDescription = "Decentralized voting on MultiversX"

	sessionName       = "chainballotx"
	sessionMaxAge     = 7 * 24 * time.Hour
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	recentReports     = 5
)

// ProposalReader reads proposals and counters from the voting contract. It is implemented by
// chainballotx.Client.
type ProposalReader interface {
	GetProposals(ctx context.Context) []chainballotx.Proposal
	GetProposal(ctx context.Context, id uint64) (chainballotx.Proposal, error)
	HasVoted(ctx context.Context, address string, id uint64) bool
	VoteStatus(ctx context.Context, address string, proposals []chainballotx.Proposal) map[uint64]bool
	Stats(ctx context.Context) chainballotx.Stats
}

// TxBuilder builds the unsigned transactions users submit. It is implemented by
// chainballotx.TxBuilder.
type TxBuilder interface {
	CreateProposal(ctx context.Context, sender string, in chainballotx.ProposalInput) (multiversx.Transaction, error)
	Vote(ctx context.Context, sender string, proposalID uint64) (multiversx.Transaction, error)
}

// HealthChecker reports whether the gateway is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ ProposalReader = (*chainballotx.Client)(nil)
	_ TxBuilder      = (*chainballotx.TxBuilder)(nil)
)

// Config configures the HTTP server.
type Config struct {
	// ListenAddr is the address the server listens on.
	ListenAddr string
	// PublicURL is the externally reachable base URL used to build wallet callback URLs. When
	// empty the request host is used.
	PublicURL string
	// SessionKey authenticates the wallet session cookie. When empty a random key is generated
	// and sessions do not survive a restart.
	SessionKey string
	// RefetchDelay is how long the confirmation page waits before reloading the proposals.
	RefetchDelay time.Duration
}

// Deps are the collaborators of the server.
type Deps struct {
	Chain *multiversx.Chain
	// ContractAddress is displayed on the governance page.
	ContractAddress string
	Reader          ProposalReader
	Builder         TxBuilder
	Reporter        *operations.MemoryReporter
	// Health is optional, without it /healthz only reports the server itself.
	Health HealthChecker
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) validate() error {
	if d.Chain == nil {
		return errors.New("chain is required")
	}
	if d.Reader == nil {
		return errors.New("proposal reader is required")
	}
	if d.Builder == nil {
		return errors.New("transaction builder is required")
	}

	return nil
}

// Server is the dashboard HTTP server.
type Server struct {
	lggr     logger.Logger
	cfg      Config
	chain    *multiversx.Chain
	contract string
	reader   ProposalReader
	builder  TxBuilder
	reporter *operations.MemoryReporter
	bundle   operations.Bundle
	health   HealthChecker
	wallet   multiversx.WalletHook
	now      func() time.Time
	engine   *gin.Engine
}

// New builds the server and its routes.
func New(lggr logger.Logger, cfg Config, deps Deps) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid dashboard dependencies: %w", err)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if err := registerValidations(); err != nil {
		return nil, err
	}
	if deps.Reporter == nil {
		deps.Reporter = operations.NewMemoryReporter(operations.WithMaxReports(100))
	}

	lggr = lggr.Named("dashboard")
	s := &Server{
		lggr:     lggr,
		cfg:      cfg,
		chain:    deps.Chain,
		contract: deps.ContractAddress,
		reader:   deps.Reader,
		builder:  deps.Builder,
		reporter: deps.Reporter,
		bundle:   operations.NewBundle(context.Background, lggr.Named("operations"), deps.Reporter),
		health:   deps.Health,
		wallet:   multiversx.WalletHook{WalletURL: deps.Chain.WalletURL},
		now:      deps.Now,
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	sessionKey := []byte(cfg.SessionKey)
	if len(sessionKey) == 0 {
		lggr.Warn("No session key configured, using a random key; wallet sessions end on restart")
		sessionKey = securecookie.GenerateRandomKey(32)
	}
	store := cookie.NewStore(sessionKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.PublicURL, "https://"),
	})

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(lggr), apiCORS(), sessions.Sessions(sessionName, store))
	engine.SetHTMLTemplate(tmpl)
	s.engine = engine
	s.routes()

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.ListenAddr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.lggr.Infow("Dashboard listening", "addr", s.cfg.ListenAddr, "network", s.chain.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.lggr.Info("Shutting down dashboard")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down dashboard: %w", err)
	}

	return nil
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.handleHome)
	r.GET("/proposals", s.handleProposals)
	r.GET("/proposals/:id", s.handleProposal)
	r.POST("/proposals/:id/vote", s.handleVote)
	r.GET("/governance", s.handleGovernance)
	r.POST("/governance/proposals", s.handleCreateProposal)

	r.GET("/wallet/connect", s.handleWalletConnect)
	r.GET("/wallet/callback", s.handleWalletCallback)
	r.POST("/wallet/disconnect", s.handleWalletDisconnect)
	r.GET("/wallet/signed", s.handleWalletSigned)

	r.GET("/healthz", s.handleHealthz)

	api := r.Group("/api")
	api.GET("/proposals", s.apiProposals)
	api.GET("/proposals/:id", s.apiProposal)
	api.GET("/proposals/:id/voted", s.apiVoted)
	api.GET("/stats", s.apiStats)
	api.GET("/abi/endpoints", s.apiABIEndpoints)
	api.POST("/transactions", s.apiBroadcast)
	api.POST("/transactions/prepare/proposal", s.apiPrepareProposal)
	api.POST("/transactions/prepare/vote", s.apiPrepareVote)
}

// callbackURL returns the absolute URL of path as seen by the browser.
func (s *Server) callbackURL(c *gin.Context, path string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimRight(s.cfg.PublicURL, "/") + path
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	return scheme + "://" + c.Request.Host + path
}
