package cli

import (
	"github.com/samvad-hq/samvad-webui-client/pkg/tokenusage"
	"github.com/spf13/cobra"
)

func usageCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Token usage reports",
	}

	var p tokenusage.Params
	bind := func(c *cobra.Command) {
		c.Flags().StringVar(&p.Start, "start", "", "first day (YYYY-MM-DD)")
		c.Flags().StringVar(&p.End, "end", "", "last day (YYYY-MM-DD)")
		c.Flags().StringVar(&p.Timezone, "timezone", "", "IANA timezone")
	}
	params := func(c *cobra.Command) tokenusage.Params {
		out := p
		if c.Flags().Lookup("page") != nil {
			out.Page = optionalInt(c, "page")
			out.Limit = optionalInt(c, "limit")
		}
		return out
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Usage against the current budget window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := st.clients.Usage.Summary(cmd.Context(), st.cfg.APIToken, params(cmd))
			if err != nil {
				return err
			}
			return st.printJSON(out)
		},
	}
	series := &cobra.Command{
		Use:   "series",
		Short: "Daily token totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := st.clients.Usage.Series(cmd.Context(), st.cfg.APIToken, params(cmd))
			if err != nil {
				return err
			}
			return st.printJSON(out)
		},
	}
	models := &cobra.Command{
		Use:   "models",
		Short: "Usage by model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := st.clients.Usage.ByModel(cmd.Context(), st.cfg.APIToken, params(cmd))
			if err != nil {
				return err
			}
			return st.printJSON(out)
		},
	}
	activity := &cobra.Command{
		Use:   "activity",
		Short: "Individual metered requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := st.clients.Usage.Activity(cmd.Context(), st.cfg.APIToken, params(cmd))
			if err != nil {
				return err
			}
			return st.printJSON(out)
		},
	}
	detail := &cobra.Command{
		Use:   "activity-detail <activity-id>",
		Short: "One metered request with its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := st.clients.Usage.ActivityDetail(cmd.Context(), st.cfg.APIToken, args[0])
			if err != nil {
				return err
			}
			return st.printJSON(out)
		},
	}

	for _, c := range []*cobra.Command{summary, series, models, activity} {
		bind(c)
	}
	for _, c := range []*cobra.Command{series, models, activity} {
		c.Flags().StringVar(&p.Model, "model", "", "filter by model")
		c.Flags().StringVar(&p.Type, "type", "", "filter by request type")
	}
	activity.Flags().Int("page", 1, "page number")
	activity.Flags().Int("limit", 20, "rows per page")

	cmd.AddCommand(summary, series, models, activity, detail)
	return cmd
}
