// Package environment loads the configuration and the chain clients shared by the chainballotx
// commands.
package environment

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/provider"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/provider/rpcclient"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/txops"
	"github.com/chainballotx/chainballotx-dashboard/config/env"
	"github.com/chainballotx/chainballotx-dashboard/config/network"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/internal/dashboard"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// Options are the values of the persistent root flags. Empty fields keep the configured value.
type Options struct {
	ConfigPath string
	Network    string
	LogLevel   string
}

// OptionsFromFlags reads the persistent root flags. Commands executed without the root command
// get empty options.
func OptionsFromFlags(cmd *cobra.Command) Options {
	return Options{
		ConfigPath: flags.MustString(cmd.Flags().GetString(flags.ConfigFlag)),
		Network:    flags.MustString(cmd.Flags().GetString(flags.NetworkFlag)),
		LogLevel:   flags.MustString(cmd.Flags().GetString(flags.LogLevelFlag)),
	}
}

// Environment is everything a command needs to talk to the contract.
type Environment struct {
	Logger  logger.Logger
	Config  *env.Config
	Network network.Network
	Chain   *multiversx.Chain

	Reader    dashboard.ProposalReader
	Builder   *chainballotx.TxBuilder
	Confirmer txops.Confirmer
	Health    dashboard.HealthChecker
}

// ContractAddress returns the configured contract address.
func (e *Environment) ContractAddress() string {
	return e.Config.Contract.Address
}

// LoaderFunc loads an Environment.
type LoaderFunc func(ctx context.Context, opts Options) (*Environment, error)

// Load reads the config file and environment variables, applies the flag overrides and
// connects to the selected network.
func Load(ctx context.Context, opts Options) (*Environment, error) {
	cfg, err := env.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Network != "" {
		cfg.Network.Name = opts.Network
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	lggr, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return FromConfig(ctx, lggr, cfg)
}

// FromConfig builds the Environment for an already loaded config.
func FromConfig(ctx context.Context, lggr logger.Logger, cfg *env.Config) (*Environment, error) {
	var files []string
	if cfg.NetworksFile != "" {
		files = append(files, cfg.NetworksFile)
	}

	networks, err := network.Load(files, network.WithBuiltinNetworks())
	if err != nil {
		return nil, err
	}
	net, err := networks.NetworkByName(cfg.Network.Name)
	if err != nil {
		return nil, fmt.Errorf("%w, available: %v", err, networks.Names())
	}
	if cfg.Network.APIURL != "" {
		net = net.WithPrimaryGateway(cfg.Network.APIURL)
	}

	p := provider.NewRPCChainProvider(lggr, provider.RPCChainProviderConfig{
		Network:     net.Name,
		ChainID:     net.ChainID,
		GatewayURLs: net.GatewayURLs(),
		WalletURL:   net.WalletURL,
		ExplorerURL: net.ExplorerURL,
	})
	if _, err = p.Initialize(ctx); err != nil {
		return nil, err
	}
	chain := p.Chain()

	gateway, ok := chain.Client.(*rpcclient.MultiClient)
	if !ok {
		return nil, errors.New("unexpected gateway client type")
	}

	reader, err := chainballotx.NewClient(lggr.Named("contract"), chain.Client, cfg.Contract.Address)
	if err != nil {
		return nil, err
	}
	builder, err := chainballotx.NewTxBuilder(lggr.Named("txbuilder"), chain.Client, chain.ChainID, cfg.Contract.Address)
	if err != nil {
		return nil, err
	}

	lggr.Debugw("Environment loaded",
		"network", net.Name,
		"chainId", net.ChainID,
		"gateways", net.GatewayURLs(),
		"contract", cfg.Contract.Address,
	)

	return &Environment{
		Logger:    lggr,
		Config:    cfg,
		Network:   net,
		Chain:     chain,
		Reader:    reader,
		Builder:   builder,
		Confirmer: gateway,
		Health:    gateway,
	}, nil
}

func newLogger(level string) (logger.Logger, error) {
	lcfg, err := logger.ConfigFromLevel(level)
	if err != nil {
		return nil, err
	}

	lggr, err := lcfg.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return lggr, nil
}
