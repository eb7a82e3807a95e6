package publishing

import (
	"context"
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/models"
)

// createEntityRequest is the validator-tagged shape of CreateEntity's
// arguments, grounded on the teacher's catalogmanager request structs.
type createEntityRequest struct {
	Key       string `validate:"required,max=500"`
	CreatedBy string `validate:"max=255"`
}

// CreateEntity creates a new publishable entity within a package (spec
// §4.1 create_entity(package_id, key, created, created_by?, can_stand_alone)).
// Fails *Conflict*-as-*AlreadyExists* on duplicate (package, key).
func (e *Engine) CreateEntity(ctx context.Context, packageID int64, key string, createdBy string, canStandAlone bool, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	if err := validateStruct(createEntityRequest{Key: key, CreatedBy: createdBy}); err != nil {
		return nil, err
	}
	at, cerr := e.resolveCreated(created, "created")
	if cerr != nil {
		return nil, cerr
	}
	if _, err := e.store.GetPackage(ctx, packageID); err != nil {
		return nil, err
	}
	ent := &models.PublishableEntity{
		UUID:              ids.New().String(),
		LearningPackageID: packageID,
		Key:               key,
		CreatedAt:         at,
		CreatedBy:         createdBy,
		CanStandAlone:     canStandAlone,
	}
	if err := e.store.CreateEntity(ctx, ent); err != nil {
		return nil, err
	}
	return ent, nil
}

// GetEntity looks up an entity by id.
func (e *Engine) GetEntity(ctx context.Context, id int64) (*models.PublishableEntity, apperrors.Error) {
	return e.store.GetEntity(ctx, id)
}

// GetEntityByKey looks up an entity by its key within a package.
func (e *Engine) GetEntityByKey(ctx context.Context, packageID int64, key string) (*models.PublishableEntity, apperrors.Error) {
	return e.store.GetEntityByKey(ctx, packageID, key)
}

// ListEntitiesByPackage lists every entity in a package (spec §4.1).
func (e *Engine) ListEntitiesByPackage(ctx context.Context, packageID int64) ([]*models.PublishableEntity, apperrors.Error) {
	return e.store.ListEntitiesByPackage(ctx, packageID)
}
