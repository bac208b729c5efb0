// Package cmd holds the operator commands run against the configured store:
// schema migrations, chain imports, campaign extraction and printer exports.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"directMail/internal/bootstrap"
	"directMail/pkg/config"
	"directMail/pkg/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"

	// open is swapped in tests to run against the test store.
	open func(cfg *config.Config) (*bootstrap.Deps, error)
	cfg  *config.Config
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{open: bootstrap.Open})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "directmail",
		Short:         "Direct mail campaign engine operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.cfg != nil {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger.Init(cfg.App.Environment)
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewChainCommand(opts))
	cmd.AddCommand(NewSegmentCommand(opts))
	cmd.AddCommand(NewPrintsCommand(opts))

	return cmd
}

func (o *RootOptions) engine() (bootstrap.Engine, func(), error) {
	deps, err := o.open(o.cfg)
	if err != nil {
		return bootstrap.Engine{}, nil, err
	}
	return bootstrap.NewEngine(deps.Store, deps.Cache, nil), deps.Close, nil
}

// print writes v as indented JSON, or calls text when the format is text.
func (o *RootOptions) print(w io.Writer, v any, text func(io.Writer) error) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
