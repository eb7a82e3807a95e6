package cli

import (
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var packageID int64
	var by string
	c := &cobra.Command{
		Use:   "reset",
		Short: "Discard every unpublished draft change in a package (spec §4.7)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := retryOnConflict(func() error {
				return engine.ResetDraftsToPublished(cmd.Context(), packageID, by)
			}); err != nil {
				return err
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "reset package %d to published\n", packageID)
			return nil
		},
	}
	c.Flags().Int64Var(&packageID, "package", 0, "package id (required)")
	c.Flags().StringVar(&by, "by", "", "actor performing the reset")
	c.MarkFlagRequired("package")
	return c
}
