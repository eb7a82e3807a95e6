package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) MarkContainer(ctx context.Context, entityID int64) apperrors.Error {
	if _, ok := s.entities[entityID]; !ok {
		return errNotFound("entity")
	}
	s.containers[entityID] = true
	return nil
}

func (s *Store) IsContainer(ctx context.Context, entityID int64) (bool, apperrors.Error) {
	return s.containers[entityID], nil
}

func (s *Store) CreateEntityList(ctx context.Context, list *models.EntityList, rows []*models.EntityListRow) apperrors.Error {
	list.ID = s.newID()
	if list.UUID == "" {
		list.UUID = newUUID()
	}
	cp := *list
	s.entityLists[cp.ID] = &cp

	stored := make([]*models.EntityListRow, 0, len(rows))
	for _, r := range rows {
		rr := *r
		rr.ID = s.newID()
		rr.EntityListID = cp.ID
		stored = append(stored, &rr)
	}
	s.entityListRows[cp.ID] = stored
	return nil
}

func (s *Store) GetEntityList(ctx context.Context, id int64) (*models.EntityList, apperrors.Error) {
	l, ok := s.entityLists[id]
	if !ok {
		return nil, errNotFound("entity list")
	}
	cp := *l
	return &cp, nil
}

func (s *Store) ListEntityListRows(ctx context.Context, listID int64) ([]*models.EntityListRow, apperrors.Error) {
	rows := s.entityListRows[listID]
	out := make([]*models.EntityListRow, len(rows))
	for i, r := range rows {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) CreateContainerVersion(ctx context.Context, cv *models.ContainerVersion) apperrors.Error {
	cp := *cv
	s.containerVersions[cp.VersionID] = &cp
	return nil
}

func (s *Store) GetContainerVersion(ctx context.Context, versionID int64) (*models.ContainerVersion, apperrors.Error) {
	cv, ok := s.containerVersions[versionID]
	if !ok {
		return nil, errNotFound("container version")
	}
	cp := *cv
	return &cp, nil
}

func (s *Store) ContainersReferencingEntity(ctx context.Context, entityID int64, includePinned bool) ([]*models.ContainerVersion, apperrors.Error) {
	var out []*models.ContainerVersion
	for _, vid := range sortedKeys(s.containerVersions) {
		cv := s.containerVersions[vid]
		rows := s.entityListRows[cv.EntityListID]
		for _, r := range rows {
			if r.EntityID != entityID {
				continue
			}
			if r.IsPinned() && !includePinned {
				continue
			}
			cp := *cv
			out = append(out, &cp)
			break
		}
	}
	return out, nil
}
