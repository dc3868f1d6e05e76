// Package cli implements the webuictl command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/internal/app"
	"github.com/samvad-hq/samvad-webui-client/internal/config"
	"github.com/samvad-hq/samvad-webui-client/internal/logger"
	"github.com/samvad-hq/samvad-webui-client/internal/pricing"
	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
	"github.com/spf13/cobra"
)

// Options injects the process environment into the command tree.
type Options struct {
	Out        io.Writer
	Err        io.Writer
	LoadConfig func() (*config.Config, error)
	InitLogger func(*config.Config) (logger.Logger, error)
	// HTTPOptions are appended when the endpoint clients are built.
	HTTPOptions []httpclient.Option
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.LoadConfig == nil {
		o.LoadConfig = config.Load
	}
	if o.InitLogger == nil {
		o.InitLogger = logger.Init
	}
	return o
}

// state is what every subcommand shares once the root pre-run has completed.
type state struct {
	opts Options

	baseURL string
	token   string

	cfg     *config.Config
	log     logger.Logger
	clients *app.Clients
	plans   *pricing.Catalog
}

// NewRootCommand builds the full command tree.
func NewRootCommand(opts Options) *cobra.Command {
	st := &state{opts: opts.withDefaults()}

	root := &cobra.Command{
		Use:           "webuictl",
		Short:         "Command line client for the chat web UI backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init()
		},
	}
	root.SetOut(st.opts.Out)
	root.SetErr(st.opts.Err)

	root.PersistentFlags().StringVar(&st.baseURL, "base-url", "", "API base URL (overrides WEBUI_API_BASE_URL)")
	root.PersistentFlags().StringVar(&st.token, "token", "", "bearer token (overrides WEBUI_API_TOKEN)")

	root.AddCommand(
		plansCmd(st),
		paymentsCmd(st),
		subscriptionCmd(st),
		adminCmd(st),
		budgetsCmd(st),
		usageCmd(st),
		docsCmd(st),
		watchCmd(st),
	)
	return root
}

func (st *state) init() error {
	cfg, err := st.opts.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(st.baseURL); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(st.token); v != "" {
		cfg.APIToken = v
	}
	st.cfg = cfg

	log, err := st.opts.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	st.log = log
	log.DebugObj("config loaded", "config", cfg.Redacted())

	clients, err := app.NewClients(cfg, log, st.opts.HTTPOptions...)
	if err != nil {
		return err
	}
	st.clients = clients

	plans, err := pricing.Load(cfg.PlansFile)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}
	st.plans = plans
	return nil
}

// Execute runs the command tree and returns the process exit code. Backend failures are
// reported with their display message only.
func Execute(ctx context.Context, args []string, opts Options) int {
	opts = opts.withDefaults()
	root := NewRootCommand(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	logger.Close()
	if err == nil {
		return 0
	}
	fmt.Fprintln(opts.Err, errorText(err))
	return 1
}

func errorText(err error) string {
	if e, ok := httpclient.AsError(err); ok {
		return e.Message
	}
	return err.Error()
}
