package cli

import (
	"github.com/samvad-hq/samvad-webui-client/internal/app"
	"github.com/samvad-hq/samvad-webui-client/internal/watcher"
	"github.com/spf13/cobra"
)

func watchCmd(st *state) *cobra.Command {
	var (
		opts watcher.Options
		once bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Publish payment status changes to the configured sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Token = st.cfg.APIToken
			w, err := app.NewWatcher(cmd.Context(), st.cfg, st.log, st.clients.Payments, opts)
			if err != nil {
				return err
			}
			if !once {
				return w.Run(cmd.Context())
			}
			res, err := w.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			return st.printJSON(map[string]int{
				"scanned":   res.Scanned,
				"published": res.Published,
				"skipped":   res.Skipped,
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
	cmd.Flags().StringSliceVar(&opts.PaymentIDs, "payment-id", nil, "query these payment ids instead of listing")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only list transactions with this status")
	cmd.Flags().IntVar(&opts.MaxPages, "max-pages", 0, "pages to scan per pass (default from config)")
	return cmd
}
