package publishing

import (
	"context"
	"sort"
	"time"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/models"
)

// ChildRef is one (entity, version?) pair supplied to container-version
// construction (spec §4.4). A nil VersionID makes the row unpinned.
type ChildRef struct {
	EntityID  int64
	VersionID *int64
}

// ContainerAction selects how the rows argument of CreateNextContainerVersion
// combines with the previous version's list (spec §4.4).
type ContainerAction int

const (
	ActionReplace ContainerAction = iota
	ActionAppend
	ActionRemove
)

// CreateContainer creates a container entity and records its kind (spec
// §4.4 create_container(package, key, created, created_by, kind),
// SPEC_FULL §3 supplemented feature: kind is registered in the same call
// rather than a second one).
func (e *Engine) CreateContainer(ctx context.Context, packageID int64, key, createdBy, kind string, created time.Time) (*models.PublishableEntity, apperrors.Error) {
	k, err := e.regs.Get(kind)
	if err != nil {
		return nil, err
	}
	if !k.IsContainer {
		return nil, wrongKindErr("kind is not a container kind: " + kind)
	}
	ent, err := e.CreateEntity(ctx, packageID, key, createdBy, false, created)
	if err != nil {
		return nil, err
	}
	if err := e.store.MarkContainer(ctx, ent.ID); err != nil {
		return nil, err
	}
	if err := e.store.SetEntityKind(ctx, ent.ID, kind); err != nil {
		return nil, err
	}
	return ent, nil
}

// CreateContainerVersion creates a new ContainerVersion with an explicit
// version_num and entity-list rows, validating the same-package rule (spec
// §4.4 create_container_version(container, version_num, title, rows,
// created, created_by, kind)), and retargets the container's draft head to
// it within one change-log record. versionNum is caller-supplied (see
// CreateVersion for why); ordinary authoring should use
// CreateNextContainerVersion.
func (e *Engine) CreateContainerVersion(ctx context.Context, containerEntityID int64, versionNum int32, title string, rows []ChildRef, createdBy string, created time.Time) (*models.PublishableEntityVersion, apperrors.Error) {
	at, cerr := e.resolveCreated(created, "created")
	if cerr != nil {
		return nil, cerr
	}
	cont, err := e.store.GetEntity(ctx, containerEntityID)
	if err != nil {
		return nil, err
	}
	if isC, err := e.store.IsContainer(ctx, containerEntityID); err != nil {
		return nil, err
	} else if !isC {
		return nil, wrongKindErr("entity is not a container")
	}
	if err := e.validateSamePackage(ctx, cont.LearningPackageID, rows); err != nil {
		return nil, err
	}

	var version *models.PublishableEntityVersion
	txErr := e.withImplicitSession(ctx, cont.LearningPackageID, createdBy, func(ctx context.Context) apperrors.Error {
		listID, err := e.materializeEntityList(ctx, rows)
		if err != nil {
			return err
		}
		v := &models.PublishableEntityVersion{
			UUID:       ids.New().String(),
			EntityID:   containerEntityID,
			VersionNum: versionNum,
			Title:      title,
			CreatedAt:  at,
			CreatedBy:  createdBy,
		}
		if err := e.store.CreateVersion(ctx, v); err != nil {
			return err
		}
		if err := e.store.CreateContainerVersion(ctx, &models.ContainerVersion{
			VersionID:    v.ID,
			ContainerID:  containerEntityID,
			EntityListID: listID,
		}); err != nil {
			return err
		}
		version = v
		return e.recordDraftChange(ctx, containerEntityID, &v.ID)
	})
	if txErr != nil {
		return nil, txErr
	}
	return version, nil
}

// CreateNextContainerVersion computes the next version_num (or uses
// forceVersionNum, for import/export replay per spec §6), applies action to
// combine rows with the previous version's children, and applies the list
// reuse rule: when rows is nil and the result is a metadata-only change,
// the new ContainerVersion reuses the previous EntityList id so pinned
// references downstream are not invalidated (spec §4.4, §8 P8).
func (e *Engine) CreateNextContainerVersion(ctx context.Context, containerEntityID int64, title *string, rows *[]ChildRef, createdBy string, action ContainerAction, forceVersionNum *int32, created time.Time) (*models.PublishableEntityVersion, apperrors.Error) {
	at, cerr := e.resolveCreated(created, "created")
	if cerr != nil {
		return nil, cerr
	}
	cont, err := e.store.GetEntity(ctx, containerEntityID)
	if err != nil {
		return nil, err
	}
	if isC, err := e.store.IsContainer(ctx, containerEntityID); err != nil {
		return nil, err
	} else if !isC {
		return nil, wrongKindErr("entity is not a container")
	}

	prevVersion, verr := e.store.LatestVersion(ctx, containerEntityID)
	var prevCV *models.ContainerVersion
	if verr == nil {
		prevCV, err = e.store.GetContainerVersion(ctx, prevVersion.ID)
		if err != nil {
			return nil, err
		}
	} else if !isNotFound(verr) {
		return nil, verr
	}

	newTitle := ""
	if title != nil {
		newTitle = *title
	} else if prevVersion != nil {
		newTitle = prevVersion.Title
	}

	versionNum, verr2 := e.nextOrForcedVersionNum(ctx, containerEntityID, forceVersionNum)
	if verr2 != nil {
		return nil, verr2
	}

	if rows == nil && prevCV != nil {
		// metadata-only change: reuse the previous list verbatim.
		var version *models.PublishableEntityVersion
		txErr := e.withImplicitSession(ctx, cont.LearningPackageID, createdBy, func(ctx context.Context) apperrors.Error {
			v := &models.PublishableEntityVersion{
				UUID:       ids.New().String(),
				EntityID:   containerEntityID,
				VersionNum: versionNum,
				Title:      newTitle,
				CreatedAt:  at,
				CreatedBy:  createdBy,
			}
			if err := e.store.CreateVersion(ctx, v); err != nil {
				return err
			}
			if err := e.store.CreateContainerVersion(ctx, &models.ContainerVersion{
				VersionID:    v.ID,
				ContainerID:  containerEntityID,
				EntityListID: prevCV.EntityListID,
			}); err != nil {
				return err
			}
			version = v
			return e.recordDraftChange(ctx, containerEntityID, &v.ID)
		})
		if txErr != nil {
			return nil, txErr
		}
		return version, nil
	}

	newRows, err := e.combineRows(ctx, prevCV, rows, action)
	if err != nil {
		return nil, err
	}
	return e.CreateContainerVersion(ctx, containerEntityID, versionNum, newTitle, newRows, createdBy, at)
}

func (e *Engine) nextOrForcedVersionNum(ctx context.Context, entityID int64, forced *int32) (int32, apperrors.Error) {
	if forced != nil {
		return *forced, nil
	}
	return e.nextVersionNum(ctx, entityID)
}

func (e *Engine) combineRows(ctx context.Context, prevCV *models.ContainerVersion, rows *[]ChildRef, action ContainerAction) ([]ChildRef, apperrors.Error) {
	var prevRows []ChildRef
	if prevCV != nil {
		stored, err := e.store.ListEntityListRows(ctx, prevCV.EntityListID)
		if err != nil {
			return nil, err
		}
		sortRows(stored)
		for _, r := range stored {
			prevRows = append(prevRows, ChildRef{EntityID: r.EntityID, VersionID: r.EntityVersionID})
		}
	}
	if rows == nil {
		return prevRows, nil
	}
	switch action {
	case ActionAppend:
		return append(append([]ChildRef{}, prevRows...), (*rows)...), nil
	case ActionRemove:
		removeSet := map[int64]bool{}
		for _, r := range *rows {
			removeSet[r.EntityID] = true
		}
		var out []ChildRef
		for _, r := range prevRows {
			if !removeSet[r.EntityID] {
				out = append(out, r)
			}
		}
		return out, nil
	default: // ActionReplace
		return *rows, nil
	}
}

func (e *Engine) validateSamePackage(ctx context.Context, packageID int64, rows []ChildRef) apperrors.Error {
	for _, r := range rows {
		child, err := e.store.GetEntity(ctx, r.EntityID)
		if err != nil {
			return err
		}
		if child.LearningPackageID != packageID {
			return validationErr("container row references an entity from a different package")
		}
	}
	return nil
}

func (e *Engine) materializeEntityList(ctx context.Context, rows []ChildRef) (int64, apperrors.Error) {
	list := &models.EntityList{UUID: ids.New().String(), CreatedAt: e.now()}
	listRows := make([]*models.EntityListRow, len(rows))
	for i, r := range rows {
		listRows[i] = &models.EntityListRow{OrderNum: int32(i), EntityID: r.EntityID, EntityVersionID: r.VersionID}
	}
	if err := e.store.CreateEntityList(ctx, list, listRows); err != nil {
		return 0, err
	}
	return list.ID, nil
}

func sortRows(rows []*models.EntityListRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderNum < rows[j].OrderNum })
}

// ResolveMode selects how EntitiesInContainer resolves unpinned rows (spec
// §4.4 "Effective-content resolution").
type ResolveMode struct {
	Published        bool  // false = Draft
	AsOf             bool  // true = PublishedAsOf(AsOfPublishLogID); implies Published
	AsOfPublishLogID int64
}

// EffectiveChild is one resolved child of a container in a given mode.
type EffectiveChild struct {
	EntityID  int64
	VersionID int64
}

// EntitiesInContainer resolves the effective child sequence of a
// ContainerVersion (spec §4.4, §4.7). A row whose resolved version is nil
// (soft-deleted unpinned child) is omitted.
func (e *Engine) EntitiesInContainer(ctx context.Context, containerVersionID int64, mode ResolveMode) ([]EffectiveChild, apperrors.Error) {
	cv, err := e.store.GetContainerVersion(ctx, containerVersionID)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.ListEntityListRows(ctx, cv.EntityListID)
	if err != nil {
		return nil, err
	}
	sortRows(rows)

	var out []EffectiveChild
	for _, r := range rows {
		versionID, err := e.resolveRowVersion(ctx, r, mode)
		if err != nil {
			return nil, err
		}
		if versionID == nil {
			continue
		}
		out = append(out, EffectiveChild{EntityID: r.EntityID, VersionID: *versionID})
	}
	return out, nil
}

func (e *Engine) resolveRowVersion(ctx context.Context, r *models.EntityListRow, mode ResolveMode) (*int64, apperrors.Error) {
	if r.IsPinned() {
		return r.EntityVersionID, nil
	}
	if mode.AsOf {
		rec, err := e.store.LatestPublishLogRecordUpTo(ctx, r.EntityID, mode.AsOfPublishLogID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		return rec.NewVersionID, nil
	}
	if mode.Published {
		p, err := e.store.GetPublished(ctx, r.EntityID)
		if err != nil {
			return nil, err
		}
		return p.VersionID, nil
	}
	d, err := e.store.GetDraft(ctx, r.EntityID)
	if err != nil {
		return nil, err
	}
	return d.VersionID, nil
}
