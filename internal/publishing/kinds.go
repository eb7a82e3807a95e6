package publishing

import (
	"context"
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/models"
)

// RegisterKind registers name with both the in-process Registry and the
// durable kind_registrations table (spec §4.8 register_kind), so kind_of
// can answer for entities created in a prior process without replaying
// registration.
func (e *Engine) RegisterKind(ctx context.Context, name string, isContainer bool, allowedChildKinds []string, schemaVersion string) (*Kind, apperrors.Error) {
	k, err := e.regs.Register(name, isContainer, allowedChildKinds, schemaVersion)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpsertKindRegistration(ctx, &models.KindRegistration{
		Name:              name,
		IsContainer:       isContainer,
		AllowedChildKinds: allowedChildKinds,
		SchemaVersion:     schemaVersion,
	}); err != nil {
		return nil, err
	}
	return k, nil
}

// RegisterStandardKinds registers the five built-in kinds (spec §4.8) both
// in-process and durably. Call once during startup before serving traffic.
func (e *Engine) RegisterStandardKinds(ctx context.Context) apperrors.Error {
	for _, k := range standardKinds {
		if _, err := e.RegisterKind(ctx, k.name, k.isContainer, k.children, "1.0.0"); err != nil {
			return err
		}
	}
	return nil
}

// KindOf returns the registered kind name for entityID (spec §4.8 kind_of).
func (e *Engine) KindOf(ctx context.Context, entityID int64) (string, apperrors.Error) {
	return e.store.GetEntityKind(ctx, entityID)
}

// AsContainer returns the container view of entityID's kind, or fails
// *WrongKind* (spec §4.8 as_container).
func (e *Engine) AsContainer(ctx context.Context, entityID int64) (*Kind, apperrors.Error) {
	name, err := e.KindOf(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return e.regs.AsContainer(name)
}

// Component creates a non-container leaf entity (spec §4.8 "thin typed
// wrappers ... MUST NOT duplicate state"). Content attachment is the
// ContentStore collaborator's job (spec §6), not this package's.
func (e *Engine) Component(ctx context.Context, packageID int64, key, createdBy string, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	ent, err := e.CreateEntity(ctx, packageID, key, createdBy, true, created)
	if err != nil {
		return nil, err
	}
	if err := e.store.SetEntityKind(ctx, ent.ID, "component"); err != nil {
		return nil, err
	}
	return ent, nil
}

// Unit creates a container entity of kind "unit" (spec §4.8).
func (e *Engine) Unit(ctx context.Context, packageID int64, key, createdBy string, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	return e.CreateContainer(ctx, packageID, key, createdBy, "unit", created)
}

// Subsection creates a container entity of kind "subsection" (spec §4.8).
func (e *Engine) Subsection(ctx context.Context, packageID int64, key, createdBy string, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	return e.CreateContainer(ctx, packageID, key, createdBy, "subsection", created)
}

// Section creates a container entity of kind "section" (spec §4.8).
func (e *Engine) Section(ctx context.Context, packageID int64, key, createdBy string, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	return e.CreateContainer(ctx, packageID, key, createdBy, "section", created)
}

// OutlineRoot creates a container entity of kind "outline_root" (spec
// §4.8), the top of a learning package's content hierarchy.
func (e *Engine) OutlineRoot(ctx context.Context, packageID int64, key, createdBy string, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	return e.CreateContainer(ctx, packageID, key, createdBy, "outline_root", created)
}
