package app

import (
	"fmt"

	"github.com/samvad-hq/samvad-webui-client/internal/config"
	"github.com/samvad-hq/samvad-webui-client/internal/logger"
	"github.com/samvad-hq/samvad-webui-client/pkg/documents"
	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-webui-client/pkg/payments"
	"github.com/samvad-hq/samvad-webui-client/pkg/tokenbudgets"
	"github.com/samvad-hq/samvad-webui-client/pkg/tokenusage"
)

// Clients bundles the endpoint clients sharing one HTTP helper.
type Clients struct {
	HTTP      *httpclient.Client
	Payments  *payments.Client
	Documents *documents.Client
	Budgets   *tokenbudgets.Client
	Usage     *tokenusage.Client
}

// NewClients builds every endpoint client against cfg.APIBaseURL.
func NewClients(cfg *config.Config, log logger.Logger, opts ...httpclient.Option) (*Clients, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	base := []httpclient.Option{
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithLogger(log),
	}
	if logger.S != nil {
		base = append(base, httpclient.WithRestyLogger(logger.S))
	}
	hc, err := httpclient.New(cfg.APIBaseURL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("init http client: %w", err)
	}

	return &Clients{
		HTTP:      hc,
		Payments:  payments.NewClient(hc),
		Documents: documents.NewClient(hc),
		Budgets:   tokenbudgets.NewClient(hc),
		Usage:     tokenusage.NewClient(hc),
	}, nil
}
