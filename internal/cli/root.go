// Package cli provides the command-line interface for the intake engine.
package cli

import (
	"github.com/spf13/cobra"

	"medical-intake/internal/intake"
)

// Version is set at build time.
var Version = "0.1.0"

type options struct {
	catalogFile string
	catalog     intake.Catalog
}

// NewRootCmd builds the command tree. Each call returns independent state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "intake",
		Short: "Scripted medical intake interviewer",
		Long: `Intake drives a scripted medical-intake interview from the console.

Each patient line is matched against the keyword index of the intake
catalog; the first uncovered topic it mentions is asked in full.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := intake.LoadCatalogFile(opts.catalogFile)
			if err != nil {
				return err
			}
			opts.catalog = c
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.catalogFile, "catalog", "", "YAML catalog file (default: built-in script)")

	root.AddCommand(
		newInterviewCmd(opts),
		newCatalogCmd(opts),
		newKeywordsCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
