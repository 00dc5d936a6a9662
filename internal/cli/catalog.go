package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medical-intake/internal/intake"
)

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the intake catalog in declaration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range opts.catalog.Topics() {
				fmt.Fprintf(out, "%s (%d)\n", t.Name, len(t.Questions))
				for _, q := range t.Questions {
					fmt.Fprintf(out, "  - %s\n", q)
				}
			}
			return nil
		},
	}
}

func newKeywordsCmd(opts *options) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Dump the keyword index",
		Long: `Print every indexed keyword with the topic that owns it, sorted by
keyword. A keyword shared by several topics belongs to the first one
declared.

Examples:
  intake keywords
  intake keywords --topic lifestyle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if topic != "" && !opts.catalog.Has(topic) {
				return fmt.Errorf("unknown topic %q", topic)
			}
			idx := intake.BuildIndex(opts.catalog)

			out := cmd.OutOrStdout()
			for _, w := range idx.Keywords(topic) {
				fmt.Fprintf(out, "%s\t%s\n", w, idx[w])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "only keywords owned by this topic")
	return cmd
}
