package cli

import (
	"github.com/spf13/cobra"
)

func newPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Create and inspect learning packages",
	}
	cmd.AddCommand(newPackageCreateCmd())
	cmd.AddCommand(newPackageGetCmd())
	cmd.AddCommand(newPackageUpdateCmd())
	cmd.AddCommand(newPackageDeleteCmd())
	return cmd
}

func newPackageCreateCmd() *cobra.Command {
	var key, title, description, created string
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a learning package",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, perr := parseCreatedFlag(created)
			if perr != nil {
				return perr
			}
			pkg, err := engine.CreatePackage(cmd.Context(), key, title, description, at)
			if err != nil {
				return err
			}
			return outputPackage(cmd, pkg)
		},
	}
	c.Flags().StringVar(&key, "key", "", "package key (required)")
	c.Flags().StringVar(&title, "title", "", "package title")
	c.Flags().StringVar(&description, "description", "", "package description")
	c.Flags().StringVar(&created, "created", "", "RFC 3339 creation timestamp, UTC (defaults to now)")
	c.MarkFlagRequired("key")
	return c
}

func newPackageGetCmd() *cobra.Command {
	var id int64
	var key string
	c := &cobra.Command{
		Use:   "get",
		Short: "Get a learning package by id or key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key != "" {
				pkg, err := engine.GetPackageByKey(cmd.Context(), key)
				if err != nil {
					return err
				}
				return outputPackage(cmd, pkg)
			}
			pkg, err := engine.GetPackage(cmd.Context(), id)
			if err != nil {
				return err
			}
			return outputPackage(cmd, pkg)
		},
	}
	c.Flags().Int64Var(&id, "id", 0, "package id")
	c.Flags().StringVar(&key, "key", "", "package key")
	return c
}

func newPackageUpdateCmd() *cobra.Command {
	var id int64
	var key, title, description string
	c := &cobra.Command{
		Use:   "update",
		Short: "Update a learning package's key, title, or description",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := publishingUpdateParams(cmd, key, title, description)
			pkg, err := engine.UpdatePackage(cmd.Context(), id, params)
			if err != nil {
				return err
			}
			return outputPackage(cmd, pkg)
		},
	}
	c.Flags().Int64Var(&id, "id", 0, "package id (required)")
	c.Flags().StringVar(&key, "key", "", "new key")
	c.Flags().StringVar(&title, "title", "", "new title")
	c.Flags().StringVar(&description, "description", "", "new description")
	c.MarkFlagRequired("id")
	return c
}

func newPackageDeleteCmd() *cobra.Command {
	var id int64
	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete a learning package and everything in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.DeletePackage(cmd.Context(), id); err != nil {
				return err
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "deleted package %d\n", id)
			return nil
		},
	}
	c.Flags().Int64Var(&id, "id", 0, "package id (required)")
	c.MarkFlagRequired("id")
	return c
}
