// Package serve provides the command that runs the ChainBallotX dashboard.
package serve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/internal/dashboard"
	"github.com/chainballotx/chainballotx-dashboard/operations"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

var (
	serveShort = "Run the governance dashboard"

	serveLong = text.LongDesc(`
		Runs the ChainBallotX dashboard: the proposal pages, the governance page, the
		wallet connection flow and the JSON API.

		The server stops gracefully on SIGINT or SIGTERM.
	`)

	serveExample = text.Examples(`
		# Serve the network from the config file
		chainballotx serve --config chainballotx.yaml

		# Serve devnet on another port
		chainballotx serve --network devnet --listen :9000
	`)
)

// maxReports bounds the transactions shown on the governance page.
const maxReports = 100

// Runner runs a built server until ctx is done.
type Runner func(ctx context.Context, srv *dashboard.Server) error

// Config holds the configuration for the serve command.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Deps holds the injectable dependencies for the serve command.
type Deps struct {
	// EnvironmentLoader connects to the configured network.
	// Default: environment.Load
	EnvironmentLoader environment.LoaderFunc

	// Run starts the server.
	// Default: (*dashboard.Server).Run
	Run Runner
}

func (d *Deps) applyDefaults() {
	if d.EnvironmentLoader == nil {
		d.EnvironmentLoader = environment.Load
	}
	if d.Run == nil {
		d.Run = func(ctx context.Context, srv *dashboard.Server) error {
			return srv.Run(ctx)
		}
	}
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	var missing []string

	if c.Logger == nil {
		missing = append(missing, "Logger")
	}

	if len(missing) > 0 {
		return errors.New("serve.Config: missing required fields: " + strings.Join(missing, ", "))
	}

	return nil
}

// NewCommand creates the serve command.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Deps.applyDefaults()

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   serveShort,
		Long:    serveLong,
		Example: serveExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, flags.MustString(cmd.Flags().GetString("listen")))
		},
	}

	cmd.Flags().String("listen", "", "Listen address, overrides server.listen_addr")

	return cmd, nil
}

func run(cmd *cobra.Command, cfg Config, listen string) error {
	ctx := cmd.Context()

	env, err := cfg.Deps.EnvironmentLoader(ctx, environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	serverCfg := env.Config.Server
	if listen != "" {
		serverCfg.ListenAddr = listen
	}

	srv, err := dashboard.New(env.Logger, dashboard.Config{
		ListenAddr:   serverCfg.ListenAddr,
		PublicURL:    serverCfg.PublicURL,
		SessionKey:   serverCfg.SessionKey,
		RefetchDelay: serverCfg.RefetchDelay,
	}, dashboard.Deps{
		Chain:           env.Chain,
		ContractAddress: env.ContractAddress(),
		Reader:          env.Reader,
		Builder:         env.Builder,
		Reporter:        operations.NewMemoryReporter(operations.WithMaxReports(maxReports)),
		Health:          env.Health,
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}

	cfg.Logger.Infow("Starting dashboard",
		"listen", serverCfg.ListenAddr,
		"network", env.Network.Name,
		"contract", env.ContractAddress(),
	)

	return cfg.Deps.Run(ctx, srv)
}
