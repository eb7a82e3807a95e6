package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) CreatePackage(ctx context.Context, pkg *models.LearningPackage) apperrors.Error {
	for _, p := range s.packages {
		if p.Key == pkg.Key {
			return dberror.ErrAlreadyExists.Msg("package key already exists: " + pkg.Key)
		}
	}
	pkg.ID = s.newID()
	if pkg.UUID == "" {
		pkg.UUID = newUUID()
	}
	cp := *pkg
	s.packages[cp.ID] = &cp
	return nil
}

func (s *Store) GetPackage(ctx context.Context, id int64) (*models.LearningPackage, apperrors.Error) {
	p, ok := s.packages[id]
	if !ok {
		return nil, errNotFound("package")
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetPackageByKey(ctx context.Context, key string) (*models.LearningPackage, apperrors.Error) {
	for _, id := range sortedKeys(s.packages) {
		p := s.packages[id]
		if p.Key == key {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound("package")
}

func (s *Store) UpdatePackage(ctx context.Context, pkg *models.LearningPackage) apperrors.Error {
	if _, ok := s.packages[pkg.ID]; !ok {
		return errNotFound("package")
	}
	for _, p := range s.packages {
		if p.ID != pkg.ID && p.Key == pkg.Key {
			return dberror.ErrAlreadyExists.Msg("package key already exists: " + pkg.Key)
		}
	}
	cp := *pkg
	s.packages[cp.ID] = &cp
	return nil
}

func (s *Store) DeletePackage(ctx context.Context, id int64) apperrors.Error {
	if _, ok := s.packages[id]; !ok {
		return errNotFound("package")
	}
	delete(s.packages, id)
	for eid, e := range s.entities {
		if e.LearningPackageID == id {
			delete(s.entities, eid)
			delete(s.drafts, eid)
			delete(s.published, eid)
			delete(s.containers, eid)
			delete(s.entityKinds, eid)
		}
	}
	for vid, v := range s.versions {
		if _, ok := s.entities[v.EntityID]; !ok {
			delete(s.versions, vid)
		}
	}
	for lid, l := range s.draftLogs {
		if l.LearningPackageID == id {
			delete(s.draftLogs, lid)
		}
	}
	for lid, l := range s.publishLogs {
		if l.LearningPackageID == id {
			delete(s.publishLogs, lid)
		}
	}
	return nil
}
