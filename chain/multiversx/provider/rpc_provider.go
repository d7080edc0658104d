package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chainballotx/chainballotx-dashboard/chain"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/provider/rpcclient"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

type RPCChainProviderConfig struct {
	// Required: The network name, e.g. "devnet"
	Network string

	// Required: The value used in the chainID field of transactions, e.g. "D"
	ChainID string

	// Required: The gateway URLs to connect to. The first one is the primary gateway, the others
	// are used as backups.
	GatewayURLs []string

	// Optional: The web wallet used for the login and sign hooks. The dashboard cannot request
	// signatures without it.
	WalletURL string

	// Optional: The block explorer base URL
	ExplorerURL string

	// Optional: Overrides the default gateway retry configuration
	Retry *rpcclient.RetryConfig

	// Optional: The HTTP client used for gateway calls. Defaults to a client with a 60 second
	// timeout.
	HTTPClient *http.Client
}

func (c RPCChainProviderConfig) validate() error {
	if c.Network == "" {
		return errors.New("network is required")
	}
	if c.ChainID == "" {
		return errors.New("chain ID is required")
	}
	if len(c.GatewayURLs) == 0 {
		return errors.New("at least one gateway URL is required")
	}
	for i, u := range c.GatewayURLs {
		if u == "" {
			return fmt.Errorf("gateway URL at index %d is empty", i)
		}
	}

	return nil
}

// RPCChainProvider initializes a MultiversX chain backed by a gateway MultiClient.
type RPCChainProvider struct {
	lggr   logger.Logger
	config RPCChainProviderConfig

	chain *multiversx.Chain
}

var _ chain.Provider = (*RPCChainProvider)(nil)

func NewRPCChainProvider(lggr logger.Logger, config RPCChainProviderConfig) *RPCChainProvider {
	return &RPCChainProvider{
		lggr:   lggr,
		config: config,
	}
}

func (p *RPCChainProvider) Initialize(_ context.Context) (chain.BlockChain, error) {
	if p.chain != nil {
		return p.chain, nil // already initialized
	}

	if err := p.config.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate provider config: %w", err)
	}

	rpcs := make([]rpcclient.RPC, 0, len(p.config.GatewayURLs))
	for i, u := range p.config.GatewayURLs {
		rpcs = append(rpcs, rpcclient.RPC{Name: fmt.Sprintf("%s-gateway-%d", p.config.Network, i), URL: u})
	}

	httpClient := p.config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	opts := []func(*rpcclient.MultiClient){rpcclient.WithHTTPClient(httpClient)}
	if p.config.Retry != nil {
		opts = append(opts, rpcclient.WithRetryConfig(*p.config.Retry))
	}

	client, err := rpcclient.NewMultiClient(p.lggr.Named("gateway"), rpcclient.RPCConfig{
		Network: p.config.Network,
		RPCs:    rpcs,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway client for network %s: %w", p.config.Network, err)
	}

	p.chain = &multiversx.Chain{
		Network:     p.config.Network,
		ChainID:     p.config.ChainID,
		Client:      client,
		URL:         p.config.GatewayURLs[0],
		WalletURL:   p.config.WalletURL,
		ExplorerURL: p.config.ExplorerURL,
	}

	return p.chain, nil
}

func (p *RPCChainProvider) Name() string {
	return "MultiversX RPC Chain Provider"
}

func (p *RPCChainProvider) BlockChain() chain.BlockChain {
	return p.chain
}

// Chain returns the initialized chain, or nil before Initialize succeeded.
func (p *RPCChainProvider) Chain() *multiversx.Chain {
	return p.chain
}
