package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) UpsertKindRegistration(ctx context.Context, k *models.KindRegistration) apperrors.Error {
	cp := *k
	s.kindRegs[cp.Name] = &cp
	return nil
}

func (s *Store) GetKindRegistration(ctx context.Context, name string) (*models.KindRegistration, apperrors.Error) {
	k, ok := s.kindRegs[name]
	if !ok {
		return nil, errNotFound("kind registration")
	}
	cp := *k
	return &cp, nil
}

func (s *Store) SetEntityKind(ctx context.Context, entityID int64, kind string) apperrors.Error {
	if _, ok := s.kindRegs[kind]; !ok {
		return dberror.ErrWrongKind.Msg("kind not registered: " + kind)
	}
	s.entityKinds[entityID] = kind
	return nil
}

func (s *Store) GetEntityKind(ctx context.Context, entityID int64) (string, apperrors.Error) {
	k, ok := s.entityKinds[entityID]
	if !ok {
		return "", errNotFound("entity kind")
	}
	return k, nil
}
