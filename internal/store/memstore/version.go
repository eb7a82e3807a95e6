package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) CreateVersion(ctx context.Context, v *models.PublishableEntityVersion) apperrors.Error {
	if _, ok := s.entities[v.EntityID]; !ok {
		return errNotFound("entity")
	}
	for _, ex := range s.versions {
		if ex.EntityID == v.EntityID && ex.VersionNum == v.VersionNum {
			return dberror.ErrConflict.Msg("version_num already exists for entity")
		}
	}
	v.ID = s.newID()
	if v.UUID == "" {
		v.UUID = newUUID()
	}
	cp := *v
	s.versions[cp.ID] = &cp
	return nil
}

func (s *Store) GetVersion(ctx context.Context, id int64) (*models.PublishableEntityVersion, apperrors.Error) {
	v, ok := s.versions[id]
	if !ok {
		return nil, errNotFound("version")
	}
	cp := *v
	return &cp, nil
}

func (s *Store) LatestVersion(ctx context.Context, entityID int64) (*models.PublishableEntityVersion, apperrors.Error) {
	var latest *models.PublishableEntityVersion
	for _, id := range sortedKeys(s.versions) {
		v := s.versions[id]
		if v.EntityID != entityID {
			continue
		}
		if latest == nil || v.VersionNum > latest.VersionNum {
			latest = v
		}
	}
	if latest == nil {
		return nil, errNotFound("version")
	}
	cp := *latest
	return &cp, nil
}

func (s *Store) ListVersions(ctx context.Context, entityID int64) ([]*models.PublishableEntityVersion, apperrors.Error) {
	var out []*models.PublishableEntityVersion
	for _, id := range sortedKeys(s.versions) {
		v := s.versions[id]
		if v.EntityID == entityID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}
