package publishing

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
)

// EntitiesWithUnpublishedChanges returns every entity id in packageID whose
// draft differs from its published head under the tri-valued-null rule
// (spec §4.7, §4.3). includeDeletes also returns entities whose draft is
// null but whose published head is not (a pending unpublish).
func (e *Engine) EntitiesWithUnpublishedChanges(ctx context.Context, packageID int64, includeDeletes bool) ([]int64, apperrors.Error) {
	entities, err := e.store.ListEntitiesByPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	var out []int64
	for _, ent := range entities {
		d, err := e.store.GetDraft(ctx, ent.ID)
		if err != nil {
			return nil, err
		}
		p, err := e.store.GetPublished(ctx, ent.ID)
		if err != nil {
			return nil, err
		}
		if d.VersionID == nil && p.VersionID == nil {
			continue
		}
		if ptrEqual(d.VersionID, p.VersionID) {
			continue
		}
		if d.VersionID == nil && !includeDeletes {
			continue
		}
		out = append(out, ent.ID)
	}
	return out, nil
}

// EntitiesWithUnpublishedDeletes is EntitiesWithUnpublishedChanges narrowed
// to entities whose draft went null while still published (spec §4.7).
func (e *Engine) EntitiesWithUnpublishedDeletes(ctx context.Context, packageID int64) ([]int64, apperrors.Error) {
	entities, err := e.store.ListEntitiesByPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	var out []int64
	for _, ent := range entities {
		d, err := e.store.GetDraft(ctx, ent.ID)
		if err != nil {
			return nil, err
		}
		if d.VersionID != nil {
			continue
		}
		p, err := e.store.GetPublished(ctx, ent.ID)
		if err != nil {
			return nil, err
		}
		if p.VersionID != nil {
			out = append(out, ent.ID)
		}
	}
	return out, nil
}

// ContainsUnpublishedChanges reports whether containerEntityID's draft
// subtree, followed recursively through unpinned references, contains any
// entity with an unpublished change (spec §4.7). Pinned references are
// excluded because they are frozen content, by definition already in sync.
func (e *Engine) ContainsUnpublishedChanges(ctx context.Context, containerEntityID int64) (bool, apperrors.Error) {
	visited := map[int64]bool{}
	var walk func(entityID int64) (bool, apperrors.Error)
	walk = func(entityID int64) (bool, apperrors.Error) {
		if visited[entityID] {
			return false, nil
		}
		visited[entityID] = true

		has, err := e.HasUnpublishedChanges(ctx, entityID)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
		isContainer, err := e.store.IsContainer(ctx, entityID)
		if err != nil {
			return false, err
		}
		if !isContainer {
			return false, nil
		}
		draft, err := e.store.GetDraft(ctx, entityID)
		if err != nil {
			return false, err
		}
		if draft.VersionID == nil {
			return false, nil
		}
		cv, err := e.store.GetContainerVersion(ctx, *draft.VersionID)
		if err != nil {
			return false, err
		}
		rows, err := e.store.ListEntityListRows(ctx, cv.EntityListID)
		if err != nil {
			return false, err
		}
		for _, r := range rows {
			if r.IsPinned() {
				continue
			}
			has, err := walk(r.EntityID)
			if err != nil {
				return false, err
			}
			if has {
				return true, nil
			}
		}
		return false, nil
	}
	return walk(containerEntityID)
}

// ContainersWithEntity is the reverse lookup of container membership (spec
// §4.7 containers_with_entity). ignorePinned excludes containers that only
// reference entityID through a pinned (version-frozen) row.
func (e *Engine) ContainersWithEntity(ctx context.Context, entityID int64, ignorePinned bool) ([]int64, apperrors.Error) {
	cvs, err := e.store.ContainersReferencingEntity(ctx, entityID, !ignorePinned)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	var out []int64
	for _, cv := range cvs {
		if !seen[cv.ContainerID] {
			seen[cv.ContainerID] = true
			out = append(out, cv.ContainerID)
		}
	}
	return out, nil
}

// PublishedVersionAsOf returns the version id entityID resolved to
// immediately after publishLogID, or nil if it had never been published by
// that point (spec §4.7 published_version_as_of, §8 P9).
func (e *Engine) PublishedVersionAsOf(ctx context.Context, entityID int64, publishLogID int64) (*int64, apperrors.Error) {
	rec, err := e.store.LatestPublishLogRecordUpTo(ctx, entityID, publishLogID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return rec.NewVersionID, nil
}

// LastPublishLogRecord returns the id of the PublishLog holding the most
// recent PublishLogRecord for entityID, or nil if no publish ever recorded
// it. Same-version side-effect records count, so the log need not have
// moved entityID's published head (SPEC_FULL.md §3 supplemented query,
// mirrored from §4.7's as-of family).
func (e *Engine) LastPublishLogRecord(ctx context.Context, entityID int64) (*int64, apperrors.Error) {
	rec, err := e.store.LastPublishLogRecord(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return &rec.PublishLogID, nil
}
