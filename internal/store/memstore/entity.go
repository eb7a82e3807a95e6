package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) CreateEntity(ctx context.Context, e *models.PublishableEntity) apperrors.Error {
	for _, ex := range s.entities {
		if ex.LearningPackageID == e.LearningPackageID && ex.Key == e.Key {
			return dberror.ErrAlreadyExists.Msg("entity key already exists in package: " + e.Key)
		}
	}
	e.ID = s.newID()
	if e.UUID == "" {
		e.UUID = newUUID()
	}
	cp := *e
	s.entities[cp.ID] = &cp
	s.drafts[cp.ID] = &models.Draft{EntityID: cp.ID}
	s.published[cp.ID] = &models.Published{EntityID: cp.ID}
	return nil
}

func (s *Store) GetEntity(ctx context.Context, id int64) (*models.PublishableEntity, apperrors.Error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, errNotFound("entity")
	}
	cp := *e
	return &cp, nil
}

func (s *Store) GetEntityByKey(ctx context.Context, packageID int64, key string) (*models.PublishableEntity, apperrors.Error) {
	for _, id := range sortedKeys(s.entities) {
		e := s.entities[id]
		if e.LearningPackageID == packageID && e.Key == key {
			cp := *e
			return &cp, nil
		}
	}
	return nil, errNotFound("entity")
}

func (s *Store) ListEntitiesByPackage(ctx context.Context, packageID int64) ([]*models.PublishableEntity, apperrors.Error) {
	var out []*models.PublishableEntity
	for _, id := range sortedKeys(s.entities) {
		e := s.entities[id]
		if e.LearningPackageID == packageID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
