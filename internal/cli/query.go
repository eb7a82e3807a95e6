package cli

import (
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read-only projections over draft/publish state (spec §4.6, §4.7)",
	}
	cmd.AddCommand(newQueryUnpublishedCmd())
	cmd.AddCommand(newQueryContainsUnpublishedCmd())
	cmd.AddCommand(newQueryContainersWithEntityCmd())
	cmd.AddCommand(newQueryPublishedAsOfCmd())
	cmd.AddCommand(newQueryLastPublishLogCmd())
	return cmd
}

func newQueryUnpublishedCmd() *cobra.Command {
	var packageID int64
	var includeDeletes bool
	c := &cobra.Command{
		Use:   "unpublished",
		Short: "List entities with unpublished draft changes in a package",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := engine.EntitiesWithUnpublishedChanges(cmd.Context(), packageID, includeDeletes)
			if err != nil {
				return err
			}
			return printIDs(cmd, ids)
		},
	}
	c.Flags().Int64Var(&packageID, "package", 0, "package id (required)")
	c.Flags().BoolVar(&includeDeletes, "include-deletes", false, "also include entities whose draft head was soft-deleted")
	c.MarkFlagRequired("package")
	return c
}

func newQueryContainsUnpublishedCmd() *cobra.Command {
	var containerEntityID int64
	c := &cobra.Command{
		Use:   "contains-unpublished",
		Short: "Report whether a container transitively contains unpublished changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			has, err := engine.ContainsUnpublishedChanges(cmd.Context(), containerEntityID)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(map[string]bool{"contains_unpublished_changes": has})
				return nil
			}
			cmd.Println(has)
			return nil
		},
	}
	c.Flags().Int64Var(&containerEntityID, "container", 0, "container entity id (required)")
	c.MarkFlagRequired("container")
	return c
}

func newQueryContainersWithEntityCmd() *cobra.Command {
	var entityID int64
	var ignorePinned bool
	c := &cobra.Command{
		Use:   "containers-with-entity",
		Short: "List containers with any version that references an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := engine.ContainersWithEntity(cmd.Context(), entityID, ignorePinned)
			if err != nil {
				return err
			}
			return printIDs(cmd, ids)
		},
	}
	c.Flags().Int64Var(&entityID, "entity", 0, "entity id (required)")
	c.Flags().BoolVar(&ignorePinned, "ignore-pinned", false, "skip containers that reference the entity by a pinned version")
	c.MarkFlagRequired("entity")
	return c
}

func newQueryPublishedAsOfCmd() *cobra.Command {
	var entityID, publishLogID int64
	c := &cobra.Command{
		Use:   "published-as-of",
		Short: "Resolve what an entity's published version_id was at a given publish log",
		RunE: func(cmd *cobra.Command, args []string) error {
			versionID, err := engine.PublishedVersionAsOf(cmd.Context(), entityID, publishLogID)
			if err != nil {
				return err
			}
			if versionID == nil {
				cmd.Println("(unpublished at that point)")
				return nil
			}
			cmd.Println(*versionID)
			return nil
		},
	}
	c.Flags().Int64Var(&entityID, "entity", 0, "entity id (required)")
	c.Flags().Int64Var(&publishLogID, "publish-log", 0, "publish log id (required)")
	c.MarkFlagRequired("entity")
	c.MarkFlagRequired("publish-log")
	return c
}

func newQueryLastPublishLogCmd() *cobra.Command {
	var entityID int64
	c := &cobra.Command{
		Use:   "last-publish-log",
		Short: "Report the most recent publish log that touched an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			logID, err := engine.LastPublishLogRecord(cmd.Context(), entityID)
			if err != nil {
				return err
			}
			if logID == nil {
				cmd.Println("(never published)")
				return nil
			}
			cmd.Println(*logID)
			return nil
		},
	}
	c.Flags().Int64Var(&entityID, "entity", 0, "entity id (required)")
	c.MarkFlagRequired("entity")
	return c
}

func printIDs(cmd *cobra.Command, ids []int64) error {
	if jsonOutput {
		printJSON(ids)
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}
