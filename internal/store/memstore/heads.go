package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) GetDraft(ctx context.Context, entityID int64) (*models.Draft, apperrors.Error) {
	d, ok := s.drafts[entityID]
	if !ok {
		return nil, errNotFound("draft head")
	}
	cp := *d
	return &cp, nil
}

func (s *Store) SetDraftHead(ctx context.Context, entityID int64, versionID *int64) apperrors.Error {
	if _, ok := s.entities[entityID]; !ok {
		return errNotFound("entity")
	}
	s.drafts[entityID] = &models.Draft{EntityID: entityID, VersionID: versionID}
	return nil
}

func (s *Store) GetPublished(ctx context.Context, entityID int64) (*models.Published, apperrors.Error) {
	p, ok := s.published[entityID]
	if !ok {
		return nil, errNotFound("published head")
	}
	cp := *p
	return &cp, nil
}

func (s *Store) SetPublishedHead(ctx context.Context, entityID int64, versionID *int64, recordID *int64) apperrors.Error {
	if _, ok := s.entities[entityID]; !ok {
		return errNotFound("entity")
	}
	s.published[entityID] = &models.Published{EntityID: entityID, VersionID: versionID, PublishLogRecordID: recordID}
	return nil
}
