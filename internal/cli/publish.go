package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	var packageID int64
	var message, by string
	var selection []string
	c := &cobra.Command{
		Use:   "publish",
		Short: "Publish drafts (spec §4.6): every pending change, or an explicit selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(selection) == 0 {
				res, err := engine.PublishAllDrafts(cmd.Context(), packageID, message, by)
				if err != nil {
					return err
				}
				return outputPublishLog(cmd, res)
			}
			ids := make([]int64, 0, len(selection))
			for _, s := range selection {
				id, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
				if perr != nil {
					return perr
				}
				ids = append(ids, id)
			}
			res, err := engine.PublishFromDrafts(cmd.Context(), packageID, ids, message, by)
			if err != nil {
				return err
			}
			return outputPublishLog(cmd, res)
		},
	}
	c.Flags().Int64Var(&packageID, "package", 0, "package id (required)")
	c.Flags().StringVar(&message, "message", "", "publish log message")
	c.Flags().StringVar(&by, "by", "", "actor publishing")
	c.Flags().StringSliceVar(&selection, "entity", nil, "entity id to publish; repeatable. Omit to publish every pending draft change")
	c.MarkFlagRequired("package")
	return c
}
