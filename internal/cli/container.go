package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tansive/learncore/internal/publishing"
)

func newContainerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Create containers and manage their child lists",
	}
	cmd.AddCommand(newContainerCreateCmd())
	cmd.AddCommand(newContainerVersionCreateCmd())
	cmd.AddCommand(newContainerChildrenCmd())
	return cmd
}

func newContainerCreateCmd() *cobra.Command {
	var packageID int64
	var key, createdBy, kind, created string
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a container entity of the given registered kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, perr := parseCreatedFlag(created)
			if perr != nil {
				return perr
			}
			ent, err := engine.CreateContainer(cmd.Context(), packageID, key, createdBy, kind, at)
			if err != nil {
				return err
			}
			return outputEntity(cmd, ent)
		},
	}
	c.Flags().Int64Var(&packageID, "package", 0, "package id (required)")
	c.Flags().StringVar(&key, "key", "", "container key (required)")
	c.Flags().StringVar(&createdBy, "by", "", "actor creating the container")
	c.Flags().StringVar(&kind, "kind", "", "registered container kind, e.g. unit, subsection, section (required)")
	c.Flags().StringVar(&created, "created", "", "RFC 3339 creation timestamp, UTC (defaults to now)")
	c.MarkFlagRequired("package")
	c.MarkFlagRequired("key")
	c.MarkFlagRequired("kind")
	return c
}

// parseChildRefs parses "entityID[:versionID]" pairs, a pinned row carrying
// an explicit version and an unpinned row tracking the child's latest
// published/draft head (spec §4.4).
func parseChildRefs(raw []string) ([]publishing.ChildRef, error) {
	var rows []publishing.ChildRef
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 2)
		entityID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, err
		}
		row := publishing.ChildRef{EntityID: entityID}
		if len(parts) == 2 {
			versionID, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, err
			}
			row.VersionID = &versionID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func newContainerVersionCreateCmd() *cobra.Command {
	var containerID int64
	var title, createdBy, action, created string
	var children []string
	c := &cobra.Command{
		Use:   "version-create",
		Short: "Create the next draft version of a container, replacing/appending/removing children",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := parseChildRefs(children)
			if err != nil {
				return err
			}
			act := publishing.ActionReplace
			switch action {
			case "append":
				act = publishing.ActionAppend
			case "remove":
				act = publishing.ActionRemove
			}
			var titlePtr *string
			if cmd.Flags().Changed("title") {
				titlePtr = &title
			}
			at, perr := parseCreatedFlag(created)
			if perr != nil {
				return perr
			}
			v, verr := engine.CreateNextContainerVersion(cmd.Context(), containerID, titlePtr, &rows, createdBy, act, nil, at)
			if verr != nil {
				return verr
			}
			return outputVersion(cmd, v)
		},
	}
	c.Flags().Int64Var(&containerID, "container", 0, "container entity id (required)")
	c.Flags().StringVar(&title, "title", "", "new title (defaults to current title if unset)")
	c.Flags().StringVar(&createdBy, "by", "", "actor creating the version")
	c.Flags().StringVar(&action, "action", "replace", "replace|append|remove")
	c.Flags().StringVar(&created, "created", "", "RFC 3339 creation timestamp, UTC (defaults to now)")
	c.Flags().StringSliceVar(&children, "child", nil, "entityID[:versionID], repeatable")
	c.MarkFlagRequired("container")
	return c
}

func newContainerChildrenCmd() *cobra.Command {
	var containerVersionID int64
	var published bool
	c := &cobra.Command{
		Use:   "children",
		Short: "List the effective children of a container version",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := publishing.ResolveMode{Published: published}
			kids, err := engine.EntitiesInContainer(cmd.Context(), containerVersionID, mode)
			if err != nil {
				return err
			}
			if jsonOutput {
				printJSON(kids)
				return nil
			}
			for _, k := range kids {
				cmd.Printf("entity_id=%d version_id=%d\n", k.EntityID, k.VersionID)
			}
			return nil
		},
	}
	c.Flags().Int64Var(&containerVersionID, "version", 0, "container version id (required)")
	c.Flags().BoolVar(&published, "published", false, "resolve unpinned rows against published heads instead of draft heads")
	c.MarkFlagRequired("version")
	return c
}
