package publishing

import (
	"context"
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/models"
)

// createPackageRequest is the validator-tagged shape of CreatePackage's
// arguments, following the teacher's catalogmanager request-struct-plus-tags
// convention rather than ad-hoc empty-string checks.
type createPackageRequest struct {
	Key         string `validate:"required,max=500"`
	Title       string `validate:"max=500"`
	Description string `validate:"max=5000"`
}

// CreatePackage creates a top-level learning package (spec §4.1). `created`
// is optional and defaults to now (UTC) when zero, exactly as
// create_package(key, title, description?, created?) specifies. Fails
// *AlreadyExists* if key collides globally.
func (e *Engine) CreatePackage(ctx context.Context, key, title, description string, created time.Time) (*models.LearningPackage, apperrors.Error) {
	if err := validateStruct(createPackageRequest{Key: key, Title: title, Description: description}); err != nil {
		return nil, err
	}
	at, cerr := e.resolveCreated(created, "created")
	if cerr != nil {
		return nil, cerr
	}
	pkg := &models.LearningPackage{
		UUID:        ids.New().String(),
		Key:         key,
		Title:       title,
		Description: description,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if err := e.store.CreatePackage(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// GetPackage looks up a package by id.
func (e *Engine) GetPackage(ctx context.Context, id int64) (*models.LearningPackage, apperrors.Error) {
	return e.store.GetPackage(ctx, id)
}

// GetPackageByKey looks up a package by its globally unique key.
func (e *Engine) GetPackageByKey(ctx context.Context, key string) (*models.LearningPackage, apperrors.Error) {
	return e.store.GetPackageByKey(ctx, key)
}

// UpdatePackageParams carries the optional-subset fields of update_package
// (spec §4.1). A nil field leaves the existing value untouched.
type UpdatePackageParams struct {
	Key         *string `validate:"omitempty,max=500"`
	Title       *string `validate:"omitempty,max=500"`
	Description *string `validate:"omitempty,max=5000"`
}

// UpdatePackage applies any subset of key/title/description; updated
// defaults to now when any field changes (spec §4.1).
func (e *Engine) UpdatePackage(ctx context.Context, id int64, params UpdatePackageParams) (*models.LearningPackage, apperrors.Error) {
	if err := validateStruct(params); err != nil {
		return nil, err
	}
	pkg, err := e.store.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	changed := false
	if params.Key != nil && *params.Key != pkg.Key {
		pkg.Key = *params.Key
		changed = true
	}
	if params.Title != nil && *params.Title != pkg.Title {
		pkg.Title = *params.Title
		changed = true
	}
	if params.Description != nil && *params.Description != pkg.Description {
		pkg.Description = *params.Description
		changed = true
	}
	if changed {
		pkg.UpdatedAt = e.now()
	}
	if err := e.store.UpdatePackage(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// DeletePackage cascades to the package's entities, versions, heads, and
// logs (spec §3 "Lifecycle invariants": "no entity or version is ever
// orphaned").
func (e *Engine) DeletePackage(ctx context.Context, id int64) apperrors.Error {
	return e.store.DeletePackage(ctx, id)
}
