package publishing

import (
	"context"
	"errors"
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

// CreateVersion creates an immutable version row with an explicit
// version_num and retargets the entity's draft head to it, all within one
// change-log record (spec §4.2 create_version(entity_id, version_num,
// title, created, created_by?)). versionNum is caller-supplied so that
// import/export collaborators can replay historical version numbers via
// force_version_num (spec §6); ordinary authoring should use
// CreateNextVersion instead. Fails *Conflict* if (entity, version_num)
// already exists.
func (e *Engine) CreateVersion(ctx context.Context, entityID int64, versionNum int32, title, createdBy string, created time.Time) (*models.PublishableEntityVersion, apperrors.Error) {
	if versionNum < 1 {
		return nil, validationErr("version_num must be >= 1")
	}
	at, cerr := e.resolveCreated(created, "created")
	if cerr != nil {
		return nil, cerr
	}
	ent, err := e.store.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	var version *models.PublishableEntityVersion
	txErr := e.withImplicitSession(ctx, ent.LearningPackageID, createdBy, func(ctx context.Context) apperrors.Error {
		v := &models.PublishableEntityVersion{
			UUID:       ids.New().String(),
			EntityID:   entityID,
			VersionNum: versionNum,
			Title:      title,
			CreatedAt:  at,
			CreatedBy:  createdBy,
		}
		if err := e.store.CreateVersion(ctx, v); err != nil {
			return err
		}
		version = v
		return e.recordDraftChange(ctx, entityID, &v.ID)
	})
	if txErr != nil {
		return nil, txErr
	}
	return version, nil
}

// CreateNextVersion computes the next version_num as
// latest.version_num + 1 (spec §3 "Lifecycle invariants": never
// "current draft + 1", so history survives a reset-to-published) and
// creates that version.
func (e *Engine) CreateNextVersion(ctx context.Context, entityID int64, title, createdBy string, created time.Time) (*models.PublishableEntityVersion, apperrors.Error) {
	next, err := e.nextVersionNum(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return e.CreateVersion(ctx, entityID, next, title, createdBy, created)
}

func (e *Engine) nextVersionNum(ctx context.Context, entityID int64) (int32, apperrors.Error) {
	latest, err := e.store.LatestVersion(ctx, entityID)
	if err != nil {
		if isNotFound(err) {
			return 1, nil
		}
		return 0, err
	}
	return latest.VersionNum + 1, nil
}

// GetVersion looks up a version by id.
func (e *Engine) GetVersion(ctx context.Context, id int64) (*models.PublishableEntityVersion, apperrors.Error) {
	return e.store.GetVersion(ctx, id)
}

// LatestVersion returns the row with the greatest version_num for entityID,
// which may differ from the draft or published head (spec §4.2).
func (e *Engine) LatestVersion(ctx context.Context, entityID int64) (*models.PublishableEntityVersion, apperrors.Error) {
	return e.store.LatestVersion(ctx, entityID)
}

func isNotFound(err apperrors.Error) bool {
	return err != nil && errors.Is(err, dberror.ErrNotFound)
}
