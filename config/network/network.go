package network

import (
	"errors"
	"fmt"
	"net/url"
)

// NetworkType represents the type of network.
type NetworkType string

const (
	NetworkTypeMainnet NetworkType = "mainnet"
	NetworkTypeTestnet NetworkType = "testnet"
	NetworkTypeDevnet  NetworkType = "devnet"
)

// Network represents a MultiversX network configuration.
type Network struct {
	Name        string      `yaml:"name"`
	Type        NetworkType `yaml:"type"`
	ChainID     string      `yaml:"chain_id"`
	Gateways    []Gateway   `yaml:"gateways"`
	WalletURL   string      `yaml:"wallet_url"`
	ExplorerURL string      `yaml:"explorer_url"`
}

// Gateway is a proxy endpoint of the network. The first gateway of a network is the primary one.
type Gateway struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Validate validates the network configuration to ensure that all required fields are set.
func (n *Network) Validate() error {
	if n.Name == "" {
		return errors.New("name is required")
	}

	switch n.Type {
	case NetworkTypeMainnet, NetworkTypeTestnet, NetworkTypeDevnet:
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown network type %q", n.Type)
	}

	if n.ChainID == "" {
		return errors.New("chain ID is required")
	}

	if len(n.Gateways) == 0 {
		return errors.New("at least one gateway is required")
	}

	for i, gw := range n.Gateways {
		if _, err := url.ParseRequestURI(gw.URL); err != nil {
			return fmt.Errorf("gateway %d (%s): invalid URL %q", i, gw.Name, gw.URL)
		}
	}

	return nil
}

// GatewayURLs returns the gateway URLs in priority order.
func (n Network) GatewayURLs() []string {
	urls := make([]string, 0, len(n.Gateways))
	for _, gw := range n.Gateways {
		urls = append(urls, gw.URL)
	}

	return urls
}

// WithPrimaryGateway returns a copy of the network with gatewayURL placed in front of the
// configured gateways. The configured gateways remain as backups. An empty gatewayURL returns the
// network unchanged.
func (n Network) WithPrimaryGateway(gatewayURL string) Network {
	if gatewayURL == "" {
		return n
	}

	gateways := make([]Gateway, 0, len(n.Gateways)+1)
	gateways = append(gateways, Gateway{Name: "override", URL: gatewayURL})
	for _, gw := range n.Gateways {
		if gw.URL != gatewayURL {
			gateways = append(gateways, gw)
		}
	}
	n.Gateways = gateways

	return n
}

// Builtin returns the public MultiversX networks.
func Builtin() []Network {
	return []Network{
		{
			Name:        "devnet",
			Type:        NetworkTypeDevnet,
			ChainID:     "D",
			Gateways:    []Gateway{{Name: "multiversx", URL: "https://devnet-gateway.multiversx.com"}},
			WalletURL:   "https://devnet-wallet.multiversx.com",
			ExplorerURL: "https://devnet-explorer.multiversx.com",
		},
		{
			Name:        "testnet",
			Type:        NetworkTypeTestnet,
			ChainID:     "T",
			Gateways:    []Gateway{{Name: "multiversx", URL: "https://testnet-gateway.multiversx.com"}},
			WalletURL:   "https://testnet-wallet.multiversx.com",
			ExplorerURL: "https://testnet-explorer.multiversx.com",
		},
		{
			Name:        "mainnet",
			Type:        NetworkTypeMainnet,
			ChainID:     "1",
			Gateways:    []Gateway{{Name: "multiversx", URL: "https://gateway.multiversx.com"}},
			WalletURL:   "https://wallet.multiversx.com",
			ExplorerURL: "https://explorer.multiversx.com",
		},
	}
}
