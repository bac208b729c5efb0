package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"directMail/business/chain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ChainFile is the YAML layout accepted by chain import:
//
//	title: Spring reactivation
//	first_offer_id: 10
//	edges:
//	  10:
//	    - next_offer_id: 11
//	      days_to_add: 3
type ChainFile struct {
	Title        string                       `yaml:"title"`
	BrandID      *uint64                      `yaml:"brand_id"`
	FirstOfferID uint64                       `yaml:"first_offer_id"`
	Edges        map[uint64][]chain.EdgeInput `yaml:"edges"`
}

func (f ChainFile) Input() chain.ChainInput {
	return chain.ChainInput{
		Title:        f.Title,
		BrandID:      f.BrandID,
		FirstOfferID: f.FirstOfferID,
		Edges:        f.Edges,
	}
}

func ParseChainFile(r io.Reader) (ChainFile, error) {
	var f ChainFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return ChainFile{}, fmt.Errorf("failed to parse chain file: %w", err)
	}
	if f.Title == "" || f.FirstOfferID == 0 {
		return ChainFile{}, fmt.Errorf("chain file needs title and first_offer_id")
	}
	return f, nil
}

func NewChainCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Manage offer chains",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Create a chain from a YAML definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open chain file: %w", err)
			}
			defer fh.Close()

			def, err := ParseChainFile(fh)
			if err != nil {
				return err
			}

			engine, closeFn, err := opts.engine()
			if err != nil {
				return err
			}
			defer closeFn()

			created, err := engine.Chains.CreateChain(context.Background(), def.Input())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "created chain %d %q\n", created.ID, created.Title)
				return err
			})
		},
	}
	importCmd.Flags().StringVarP(&file, "file", "f", "", "chain definition file")
	_ = importCmd.MarkFlagRequired("file")

	cmd.AddCommand(importCmd)
	return cmd
}
