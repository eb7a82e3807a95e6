package cli

import (
	"github.com/spf13/cobra"
)

func newEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Create and inspect leaf entities and their versions",
	}
	cmd.AddCommand(newEntityCreateCmd())
	cmd.AddCommand(newEntityGetCmd())
	cmd.AddCommand(newEntityListCmd())
	cmd.AddCommand(newEntityVersionCreateCmd())
	return cmd
}

func newEntityCreateCmd() *cobra.Command {
	var packageID int64
	var key, createdBy, created string
	var canStandAlone bool
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a leaf entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, perr := parseCreatedFlag(created)
			if perr != nil {
				return perr
			}
			ent, err := engine.CreateEntity(cmd.Context(), packageID, key, createdBy, canStandAlone, at)
			if err != nil {
				return err
			}
			return outputEntity(cmd, ent)
		},
	}
	c.Flags().Int64Var(&packageID, "package", 0, "package id (required)")
	c.Flags().StringVar(&key, "key", "", "entity key (required)")
	c.Flags().StringVar(&createdBy, "by", "", "actor creating the entity")
	c.Flags().BoolVar(&canStandAlone, "can-stand-alone", true, "whether the entity may be published without a containing unit")
	c.Flags().StringVar(&created, "created", "", "RFC 3339 creation timestamp, UTC (defaults to now)")
	c.MarkFlagRequired("package")
	c.MarkFlagRequired("key")
	return c
}

func newEntityGetCmd() *cobra.Command {
	var id int64
	var packageID int64
	var key string
	c := &cobra.Command{
		Use:   "get",
		Short: "Get an entity by id or (package, key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key != "" {
				ent, err := engine.GetEntityByKey(cmd.Context(), packageID, key)
				if err != nil {
					return err
				}
				return outputEntity(cmd, ent)
			}
			ent, err := engine.GetEntity(cmd.Context(), id)
			if err != nil {
				return err
			}
			return outputEntity(cmd, ent)
		},
	}
	c.Flags().Int64Var(&id, "id", 0, "entity id")
	c.Flags().Int64Var(&packageID, "package", 0, "package id (used with --key)")
	c.Flags().StringVar(&key, "key", "", "entity key")
	return c
}

func newEntityListCmd() *cobra.Command {
	var packageID int64
	c := &cobra.Command{
		Use:   "list",
		Short: "List every entity in a package",
		RunE: func(cmd *cobra.Command, args []string) error {
			ents, err := engine.ListEntitiesByPackage(cmd.Context(), packageID)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(ents)
				return nil
			}
			for _, ent := range ents {
				if err := outputEntity(cmd, ent); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().Int64Var(&packageID, "package", 0, "package id (required)")
	c.MarkFlagRequired("package")
	return c
}

func newEntityVersionCreateCmd() *cobra.Command {
	var entityID int64
	var title, createdBy, created string
	c := &cobra.Command{
		Use:   "version-create",
		Short: "Create the next draft version of an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, perr := parseCreatedFlag(created)
			if perr != nil {
				return perr
			}
			return retryOnConflict(func() error {
				v, err := engine.CreateNextVersion(cmd.Context(), entityID, title, createdBy, at)
				if err != nil {
					return err
				}
				return outputVersion(cmd, v)
			})
		},
	}
	c.Flags().Int64Var(&entityID, "entity", 0, "entity id (required)")
	c.Flags().StringVar(&title, "title", "", "version title")
	c.Flags().StringVar(&createdBy, "by", "", "actor creating the version")
	c.Flags().StringVar(&created, "created", "", "RFC 3339 creation timestamp, UTC (defaults to now)")
	c.MarkFlagRequired("entity")
	return c
}
