package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tansive/learncore/internal/publishing"
	"github.com/tansive/learncore/internal/store/models"
)

func outputPackage(cmd *cobra.Command, pkg *models.LearningPackage) error {
	if jsonOutput {
		printJSON(pkg)
		return nil
	}
	cmd.Printf("id=%d key=%s title=%q\n", pkg.ID, pkg.Key, pkg.Title)
	return nil
}

func outputEntity(cmd *cobra.Command, ent *models.PublishableEntity) error {
	if jsonOutput {
		printJSON(ent)
		return nil
	}
	cmd.Printf("id=%d key=%s can_stand_alone=%v\n", ent.ID, ent.Key, ent.CanStandAlone)
	return nil
}

func outputVersion(cmd *cobra.Command, v *models.PublishableEntityVersion) error {
	if jsonOutput {
		printJSON(v)
		return nil
	}
	cmd.Printf("id=%d version_num=%d title=%q\n", v.ID, v.VersionNum, v.Title)
	return nil
}

func outputPublishLog(cmd *cobra.Command, log *models.PublishLog) error {
	if jsonOutput {
		printJSON(log)
		return nil
	}
	cmd.Printf("publish_log id=%d message=%q published_by=%s\n", log.ID, log.Message, log.PublishedBy)
	return nil
}

// parseCreatedFlag parses an RFC 3339 --created flag value. An empty string
// (the flag not given) returns the zero Time, which the engine resolves to
// now (spec §4.1): this is how replay tooling threads a historical
// timestamp through without every ordinary CLI invocation having to supply
// one.
func parseCreatedFlag(created string) (time.Time, error) {
	if created == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, created)
}

// publishingUpdateParams builds an UpdatePackageParams from the flags that
// were actually set on cmd, leaving the rest nil (spec §4.1 "optional
// subset").
func publishingUpdateParams(cmd *cobra.Command, key, title, description string) publishing.UpdatePackageParams {
	var params publishing.UpdatePackageParams
	if cmd.Flags().Changed("key") {
		params.Key = &key
	}
	if cmd.Flags().Changed("title") {
		params.Title = &title
	}
	if cmd.Flags().Changed("description") {
		params.Description = &description
	}
	return params
}
