package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"directMail/business/prints"

	"github.com/spf13/cobra"
)

func NewPrintsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prints",
		Short: "Hand pending offer prints to the printer",
	}

	var (
		in                    prints.ExportInput
		brand, address, payee uint64
		date, out             string
	)

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the pending prints of an offer to a CSV printer file and mark them exported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("brand") {
				in.BrandID = &brand
			}
			if flags.Changed("return-address") {
				in.ReturnAddressID = &address
			}
			if flags.Changed("payee") {
				in.PayeeNameID = &payee
			}
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", date, err)
				}
				in.Date = d
			}

			engine, closeFn, err := opts.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			export, err := engine.Prints.ExportPrints(context.Background(), in)
			if err != nil {
				return err
			}

			if out == "-" {
				return prints.WriteCSV(cmd.OutOrStdout(), export.Rows)
			}
			path := out
			if path == "" {
				path = export.FileName
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, export.FileName)
			}
			if err := writeCSVFile(path, export); err != nil {
				return err
			}

			result := map[string]any{"file": path, "exported": len(export.Rows), "skipped": export.Skipped}
			return opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "exported %d print(s) to %s, skipped %d\n", len(export.Rows), path, export.Skipped)
				return err
			})
		},
	}

	f := export.Flags()
	f.Uint64Var(&in.OfferID, "offer", 0, "offer id")
	f.Uint64Var(&brand, "brand", 0, "brand id")
	f.Uint64Var(&address, "return-address", 0, "return address id of the campaign offer")
	f.Uint64Var(&payee, "payee", 0, "payee name id of the campaign offer")
	f.StringVar(&in.Printer, "printer", "", "printer of the campaign offer")
	f.StringVar(&date, "date", "", "mail day (YYYY-MM-DD), today when empty")
	f.BoolVar(&in.Past, "past", false, "export every pending print before the mail day")
	f.StringVarP(&out, "out", "o", "", "output file or directory, - for stdout")
	_ = export.MarkFlagRequired("offer")

	cmd.AddCommand(export)
	return cmd
}

func writeCSVFile(path string, export prints.Export) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create printer file: %w", err)
	}
	if err := prints.WriteCSV(file, export.Rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
