package publishing

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
)

// ResetDraftsToPublished retargets every entity in packageID whose draft
// differs from its published head back to that published head, recorded
// as one atomic DraftChangeLog (spec §4.7 "reset", §8 P4: reset is
// idempotent — a package with no unpublished changes persists no change
// log at all, same as closing an empty BulkChange).
func (e *Engine) ResetDraftsToPublished(ctx context.Context, packageID int64, changedBy string) apperrors.Error {
	changed, err := e.EntitiesWithUnpublishedChanges(ctx, packageID, true)
	if err != nil {
		return err
	}
	return e.BulkChange(ctx, packageID, changedBy, func(ctx context.Context) apperrors.Error {
		for _, entityID := range changed {
			p, err := e.store.GetPublished(ctx, entityID)
			if err != nil {
				return err
			}
			if err := e.recordDraftChange(ctx, entityID, p.VersionID); err != nil {
				return err
			}
		}
		return nil
	})
}
