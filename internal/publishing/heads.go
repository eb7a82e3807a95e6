package publishing

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/models"
)

// GetDraft returns the entity's current draft version, or nil if the draft
// head is null (never-had or soft-deleted — spec §3 "Heads").
func (e *Engine) GetDraft(ctx context.Context, entityID int64) (*models.PublishableEntityVersion, apperrors.Error) {
	return e.resolveHeadVersion(ctx, entityID, true)
}

// GetPublished returns the entity's current published version, or nil if
// withdrawn or never published.
func (e *Engine) GetPublished(ctx context.Context, entityID int64) (*models.PublishableEntityVersion, apperrors.Error) {
	return e.resolveHeadVersion(ctx, entityID, false)
}

func (e *Engine) resolveHeadVersion(ctx context.Context, entityID int64, draft bool) (*models.PublishableEntityVersion, apperrors.Error) {
	var versionID *int64
	if draft {
		d, err := e.store.GetDraft(ctx, entityID)
		if err != nil {
			return nil, err
		}
		versionID = d.VersionID
	} else {
		p, err := e.store.GetPublished(ctx, entityID)
		if err != nil {
			return nil, err
		}
		versionID = p.VersionID
	}
	if versionID == nil {
		return nil, nil
	}
	return e.store.GetVersion(ctx, *versionID)
}

// SetDraft moves the draft head, recording a DraftChangeLogRecord in the
// currently open (or implicit single-op) change log (spec §4.3). version
// == nil means soft-delete.
func (e *Engine) SetDraft(ctx context.Context, entityID int64, version *models.PublishableEntityVersion, changedBy string) apperrors.Error {
	ent, err := e.store.GetEntity(ctx, entityID)
	if err != nil {
		return err
	}
	var versionID *int64
	if version != nil {
		if version.EntityID != entityID {
			return validationErr("version does not belong to entity")
		}
		versionID = &version.ID
	}
	return e.withImplicitSession(ctx, ent.LearningPackageID, changedBy, func(ctx context.Context) apperrors.Error {
		return e.recordDraftChange(ctx, entityID, versionID)
	})
}

// SoftDeleteDraft is SetDraft(entity, nil, ...) (spec §4.3).
func (e *Engine) SoftDeleteDraft(ctx context.Context, entityID int64, changedBy string) apperrors.Error {
	return e.SetDraft(ctx, entityID, nil, changedBy)
}

// HasUnpublishedChanges applies the tri-valued null rule from spec §4.3:
// draft != published is an unpublished change UNLESS both are null (the
// soft-delete was already published).
func (e *Engine) HasUnpublishedChanges(ctx context.Context, entityID int64) (bool, apperrors.Error) {
	d, err := e.store.GetDraft(ctx, entityID)
	if err != nil {
		return false, err
	}
	p, err := e.store.GetPublished(ctx, entityID)
	if err != nil {
		return false, err
	}
	if d.VersionID == nil && p.VersionID == nil {
		return false, nil
	}
	return !ptrEqual(d.VersionID, p.VersionID), nil
}
