package cli

import (
	"github.com/samvad-hq/samvad-webui-client/pkg/payments"
	"github.com/spf13/cobra"
)

func adminCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative payment reports",
	}
	cmd.AddCommand(
		adminTransactionsCmd(st),
		adminMetricsCmd(st),
		adminKPIsCmd(st),
		adminUsersSummaryCmd(st),
		adminExportCmd(st),
		adminPlansSummaryCmd(st),
		adminPlanTotalCmd(st),
	)
	return cmd
}

type adminFilters struct {
	userID, status, paymentID, trxID, invoice, userQuery string
}

func (f *adminFilters) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userID, "user-id", "", "filter by user id")
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status")
	cmd.Flags().StringVar(&f.paymentID, "payment-id", "", "filter by payment id")
	cmd.Flags().StringVar(&f.trxID, "trx-id", "", "filter by bKash transaction id")
	cmd.Flags().StringVar(&f.invoice, "invoice-number", "", "filter by merchant invoice number")
	cmd.Flags().StringVar(&f.userQuery, "user", "", "match user name or email")
	addDateFlags(cmd)
}

func (f *adminFilters) params(cmd *cobra.Command) (payments.AdminTransactionsParams, error) {
	start, end, err := dateRange(cmd)
	if err != nil {
		return payments.AdminTransactionsParams{}, err
	}
	return payments.AdminTransactionsParams{
		UserID:                f.userID,
		Status:                f.status,
		PaymentID:             f.paymentID,
		TrxID:                 f.trxID,
		MerchantInvoiceNumber: f.invoice,
		UserQuery:             f.userQuery,
		StartDate:             start,
		EndDate:               end,
	}, nil
}

func adminTransactionsCmd(st *state) *cobra.Command {
	var f adminFilters
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List all transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := f.params(cmd)
			if err != nil {
				return err
			}
			params.Page = optionalInt(cmd, "page")
			params.PageSize = optionalInt(cmd, "page-size")
			page, err := st.clients.Payments.AdminListTransactions(cmd.Context(), st.cfg.APIToken, params)
			if err != nil {
				return err
			}
			return st.printJSON(page)
		},
	}
	f.bind(cmd)
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("page-size", 20, "page size")
	return cmd
}

func adminMetricsCmd(st *state) *cobra.Command {
	var f adminFilters
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Aggregate metrics for the filtered transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := f.params(cmd)
			if err != nil {
				return err
			}
			payload, err := st.clients.Payments.AdminMetrics(cmd.Context(), st.cfg.APIToken, params)
			if err != nil {
				return err
			}
			return st.printJSON(payload)
		},
	}
	f.bind(cmd)
	return cmd
}

func adminKPIsCmd(st *state) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Revenue and conversion KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := dateRange(cmd)
			if err != nil {
				return err
			}
			payload, err := st.clients.Payments.AdminKPIs(cmd.Context(), st.cfg.APIToken, payments.KPIParams{
				Status:    status,
				StartDate: start,
				EndDate:   end,
			})
			if err != nil {
				return err
			}
			return st.printJSON(payload)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	addDateFlags(cmd)
	return cmd
}

func adminUsersSummaryCmd(st *state) *cobra.Command {
	var status, userIDs string
	cmd := &cobra.Command{
		Use:   "users-summary",
		Short: "Per-user payment summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := dateRange(cmd)
			if err != nil {
				return err
			}
			payload, err := st.clients.Payments.AdminUsersSummary(cmd.Context(), st.cfg.APIToken, payments.UsersSummaryParams{
				Status:    status,
				StartDate: start,
				EndDate:   end,
				UserIDs:   userIDs,
			})
			if err != nil {
				return err
			}
			return st.printJSON(payload)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&userIDs, "user-ids", "", "comma separated user ids")
	addDateFlags(cmd)
	return cmd
}

func adminExportCmd(st *state) *cobra.Command {
	var (
		f   adminFilters
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := f.params(cmd)
			if err != nil {
				return err
			}
			blob, err := st.clients.Payments.AdminExportTransactions(cmd.Context(), st.cfg.APIToken, payments.ExportParams{
				UserID:                params.UserID,
				Status:                params.Status,
				PaymentID:             params.PaymentID,
				TrxID:                 params.TrxID,
				MerchantInvoiceNumber: params.MerchantInvoiceNumber,
				UserQuery:             params.UserQuery,
				StartDate:             params.StartDate,
				EndDate:               params.EndDate,
			})
			if err != nil {
				return err
			}
			name := blob.FileName
			if name == "" {
				name = "transactions.csv"
			}
			path, err := st.saveBlob(blob.Data, out, name)
			if err != nil {
				return err
			}
			return st.printSaved(path, blob.Size())
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: download dir)")
	return cmd
}

func adminPlansSummaryCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans-summary",
		Short: "Subscriptions and revenue per plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := dateRange(cmd)
			if err != nil {
				return err
			}
			payload, err := st.clients.Payments.AdminPlansSummary(cmd.Context(), st.cfg.APIToken, payments.DateRange{StartDate: start, EndDate: end})
			if err != nil {
				return err
			}
			return st.printJSON(payload)
		},
	}
	addDateFlags(cmd)
	return cmd
}

func adminPlanTotalCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "plan-total <plan-id>",
		Short: "Total amount collected for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := st.clients.Payments.AdminPlanTotalAmount(cmd.Context(), st.cfg.APIToken, args[0])
			if err != nil {
				return err
			}
			return st.printJSON(payload)
		},
	}
}
