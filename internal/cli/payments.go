package cli

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/pkg/payments"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func paymentsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "bKash checkout and transaction history",
	}
	cmd.AddCommand(
		paymentsCreateCmd(st),
		paymentsExecuteCmd(st),
		paymentsQueryCmd(st),
		paymentsListCmd(st),
		paymentsInvoiceCmd(st),
	)
	return cmd
}

func paymentsCreateCmd(st *state) *cobra.Command {
	var (
		req    payments.CreatePaymentRequest
		amount string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a bKash checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.PlanID = strings.TrimSpace(req.PlanID)
			switch {
			case amount != "":
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q", amount)
				}
				req.Amount = d
			case req.PlanID != "":
				d, currency, err := st.plans.Amount(req.PlanID)
				if err != nil {
					return err
				}
				req.Amount = d
				if req.Currency == "" {
					req.Currency = currency
				}
			default:
				return fmt.Errorf("either --plan or --amount is required")
			}

			resp, err := st.clients.Payments.CreateBkashPayment(cmd.Context(), st.cfg.APIToken, req)
			if err != nil {
				return err
			}
			return st.printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&req.PlanID, "plan", "", "plan id; the amount defaults to the catalog price")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to charge")
	cmd.Flags().StringVar(&req.Currency, "currency", "", "currency (default BDT)")
	cmd.Flags().StringVar(&req.PayerReference, "payer-reference", "", "payer reference shown in bKash")
	cmd.Flags().StringVar(&req.MerchantInvoiceNumber, "invoice-number", "", "merchant invoice number")
	return cmd
}

func paymentsExecuteCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <payment-id>",
		Short: "Finalize an approved checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := st.clients.Payments.ExecuteBkashPayment(cmd.Context(), st.cfg.APIToken, payments.ExecutePaymentRequest{PaymentID: args[0]})
			if err != nil {
				return err
			}
			return st.printJSON(resp)
		},
	}
}

func paymentsQueryCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "query <payment-id>",
		Short: "Refresh a payment from the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := st.clients.Payments.QueryBkashPayment(cmd.Context(), st.cfg.APIToken, args[0])
			if err != nil {
				return err
			}
			return st.printJSON(tx)
		},
	}
}

func paymentsListCmd(st *state) *cobra.Command {
	var params payments.UserTransactionsParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := dateRange(cmd)
			if err != nil {
				return err
			}
			params.StartDate, params.EndDate = start, end
			params.Page = optionalInt(cmd, "page")
			params.PageSize = optionalInt(cmd, "page-size")

			page, err := st.clients.Payments.ListMyTransactions(cmd.Context(), st.cfg.APIToken, params)
			if err != nil {
				return err
			}
			return st.printJSON(page)
		},
	}
	cmd.Flags().StringVar(&params.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&params.PaymentID, "payment-id", "", "filter by payment id")
	cmd.Flags().StringVar(&params.TrxID, "trx-id", "", "filter by bKash transaction id")
	cmd.Flags().StringVar(&params.MerchantInvoiceNumber, "invoice-number", "", "filter by merchant invoice number")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("page-size", 20, "page size")
	addDateFlags(cmd)
	return cmd
}

func paymentsInvoiceCmd(st *state) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "invoice <transaction-id>",
		Short: "Download the PDF invoice of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := st.clients.Payments.DownloadInvoicePDF(cmd.Context(), st.cfg.APIToken, args[0])
			if err != nil {
				return err
			}
			name := blob.FileName
			if name == "" {
				name = "invoice-" + args[0] + ".pdf"
			}
			path, err := st.saveBlob(blob.Data, out, name)
			if err != nil {
				return err
			}
			return st.printSaved(path, blob.Size())
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: download dir)")
	return cmd
}

func subscriptionCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show or change your subscription",
	}
	actions := []struct {
		use, short string
		call       func(*state, *cobra.Command) (*payments.Subscription, error)
	}{
		{"show", "Show your subscription", func(st *state, cmd *cobra.Command) (*payments.Subscription, error) {
			return st.clients.Payments.MySubscription(cmd.Context(), st.cfg.APIToken)
		}},
		{"pause", "Pause your subscription", func(st *state, cmd *cobra.Command) (*payments.Subscription, error) {
			return st.clients.Payments.PauseMySubscription(cmd.Context(), st.cfg.APIToken)
		}},
		{"cancel", "Cancel your subscription", func(st *state, cmd *cobra.Command) (*payments.Subscription, error) {
			return st.clients.Payments.CancelMySubscription(cmd.Context(), st.cfg.APIToken)
		}},
	}
	for _, a := range actions {
		cmd.AddCommand(&cobra.Command{
			Use:   a.use,
			Short: a.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sub, err := a.call(st, cmd)
				if err != nil {
					return err
				}
				return st.printJSON(sub)
			},
		})
	}
	return cmd
}
