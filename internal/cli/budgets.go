package cli

import (
	"github.com/samvad-hq/samvad-webui-client/pkg/tokenbudgets"
	"github.com/spf13/cobra"
)

func budgetsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage per-user token budgets",
	}
	cmd.AddCommand(budgetsSetCmd(st), budgetsStatusCmd(st), budgetsListCmd(st))
	return cmd
}

func budgetsSetCmd(st *state) *cobra.Command {
	var (
		limit    int64
		timezone string
		disabled bool
	)
	cmd := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Create or replace a user's budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := tokenbudgets.UpsertRequest{LimitTokens: limit}
			if cmd.Flags().Changed("disabled") {
				enabled := !disabled
				req.Enabled = &enabled
			}
			if timezone != "" {
				req.Timezone = &timezone
			}
			budget, err := st.clients.Budgets.Upsert(cmd.Context(), st.cfg.APIToken, args[0], req)
			if err != nil {
				return err
			}
			return st.printJSON(budget)
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 0, "token limit per window")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the budget window")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "store the budget disabled")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func budgetsStatusCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id>",
		Short: "Show a user's budget for the current window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := st.clients.Budgets.Status(cmd.Context(), st.cfg.APIToken, args[0])
			if err != nil {
				return err
			}
			return st.printJSON(status)
		},
	}
}

func budgetsListCmd(st *state) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			budgets, err := st.clients.Budgets.List(cmd.Context(), st.cfg.APIToken, tokenbudgets.ListParams{
				Query:  query,
				Limit:  optionalInt(cmd, "limit"),
				Offset: optionalInt(cmd, "offset"),
			})
			if err != nil {
				return err
			}
			return st.printJSON(budgets)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "match user ids")
	cmd.Flags().Int("limit", 50, "maximum rows")
	cmd.Flags().Int("offset", 0, "rows to skip")
	return cmd
}
