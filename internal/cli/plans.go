package cli

import (
	"github.com/spf13/cobra"
)

func plansCmd(st *state) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List pricing plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offline {
				return st.printJSON(st.plans.All())
			}
			plans, err := st.clients.Payments.ListPricingPlans(cmd.Context())
			if err != nil {
				return err
			}
			return st.printJSON(plans)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "print the local catalog without calling the backend")
	return cmd
}
