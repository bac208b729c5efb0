package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewSegmentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Run and inspect campaign segmentation",
	}

	var campaignID uint64

	extract := &cobra.Command{
		Use:   "extract",
		Short: "Extract segmented clients of a campaign into client offers and prints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := opts.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := engine.Segments.ExtractSegmentedClients(context.Background(), campaignID)
			if err != nil {
				return err
			}
			result := map[string]any{"campaign_id": campaignID, "extracted": n}
			return opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "extracted %d client(s) from campaign %d\n", n, campaignID)
				return err
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show per key code counts of a campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := opts.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := engine.Segments.CampaignKeyCodes(context.Background(), campaignID)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tOFFER\tCLIENTS\tPRINTED\tNOT SENT\tORDERS\tMONEY")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.2f\n",
						r.Key, r.OfferID, r.Clients, r.Printed, r.NotSent, r.TotalOrders, r.TotalMoney)
				}
				return tw.Flush()
			})
		},
	}

	for _, c := range []*cobra.Command{extract, stats} {
		c.Flags().Uint64Var(&campaignID, "campaign", 0, "campaign id")
		_ = c.MarkFlagRequired("campaign")
	}

	cmd.AddCommand(extract, stats)
	return cmd
}
