package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservations/services"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire past reservations and promote today's, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := services.NewSweeper(a.store).Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "expired=%d promoted=%d\n", res.Expired, res.Promoted)
			return err
		},
	}
}
