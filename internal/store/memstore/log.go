package memstore

import (
	"context"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) InsertDraftChangeLog(ctx context.Context, log *models.DraftChangeLog) apperrors.Error {
	log.ID = s.newID()
	if log.UUID == "" {
		log.UUID = newUUID()
	}
	cp := *log
	s.draftLogs[cp.ID] = &cp
	return nil
}

func (s *Store) UpsertDraftChangeLogRecord(ctx context.Context, r *models.DraftChangeLogRecord) apperrors.Error {
	for _, ex := range s.draftLogRecords {
		if ex.DraftChangeLogID == r.DraftChangeLogID && ex.EntityID == r.EntityID {
			r.ID = ex.ID
			cp := *r
			s.draftLogRecords[cp.ID] = &cp
			return nil
		}
	}
	r.ID = s.newID()
	cp := *r
	s.draftLogRecords[cp.ID] = &cp
	return nil
}

func (s *Store) GetDraftChangeLogRecord(ctx context.Context, logID, entityID int64) (*models.DraftChangeLogRecord, apperrors.Error) {
	for _, id := range sortedKeys(s.draftLogRecords) {
		r := s.draftLogRecords[id]
		if r.DraftChangeLogID == logID && r.EntityID == entityID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errNotFound("draft change log record")
}

func (s *Store) ListDraftChangeLogRecords(ctx context.Context, logID int64) ([]*models.DraftChangeLogRecord, apperrors.Error) {
	var out []*models.DraftChangeLogRecord
	for _, id := range sortedKeys(s.draftLogRecords) {
		r := s.draftLogRecords[id]
		if r.DraftChangeLogID == logID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) InsertDraftSideEffect(ctx context.Context, e *models.DraftSideEffect) apperrors.Error {
	for _, ex := range s.draftSideEffects {
		if ex.CauseID == e.CauseID && ex.EffectID == e.EffectID {
			return nil
		}
	}
	e.ID = s.newID()
	cp := *e
	s.draftSideEffects = append(s.draftSideEffects, &cp)
	return nil
}

func (s *Store) InsertPublishLog(ctx context.Context, log *models.PublishLog) apperrors.Error {
	log.ID = s.newID()
	if log.UUID == "" {
		log.UUID = newUUID()
	}
	cp := *log
	s.publishLogs[cp.ID] = &cp
	return nil
}

func (s *Store) UpsertPublishLogRecord(ctx context.Context, r *models.PublishLogRecord) apperrors.Error {
	for _, ex := range s.publishLogRecords {
		if ex.PublishLogID == r.PublishLogID && ex.EntityID == r.EntityID {
			r.ID = ex.ID
			cp := *r
			s.publishLogRecords[cp.ID] = &cp
			return nil
		}
	}
	r.ID = s.newID()
	cp := *r
	s.publishLogRecords[cp.ID] = &cp
	return nil
}

func (s *Store) GetPublishLogRecord(ctx context.Context, logID, entityID int64) (*models.PublishLogRecord, apperrors.Error) {
	for _, id := range sortedKeys(s.publishLogRecords) {
		r := s.publishLogRecords[id]
		if r.PublishLogID == logID && r.EntityID == entityID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errNotFound("publish log record")
}

func (s *Store) ListPublishLogRecords(ctx context.Context, logID int64) ([]*models.PublishLogRecord, apperrors.Error) {
	var out []*models.PublishLogRecord
	for _, id := range sortedKeys(s.publishLogRecords) {
		r := s.publishLogRecords[id]
		if r.PublishLogID == logID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) InsertPublishSideEffect(ctx context.Context, e *models.PublishSideEffect) apperrors.Error {
	for _, ex := range s.publishSideEffects {
		if ex.CauseID == e.CauseID && ex.EffectID == e.EffectID {
			return nil
		}
	}
	e.ID = s.newID()
	cp := *e
	s.publishSideEffects = append(s.publishSideEffects, &cp)
	return nil
}

// LatestPublishLogRecordUpTo walks publish logs in id order (publish log
// ids are monotonically increasing per spec §5) and returns the most
// recent record for entityID at or before upToLogID.
func (s *Store) LatestPublishLogRecordUpTo(ctx context.Context, entityID int64, upToLogID int64) (*models.PublishLogRecord, apperrors.Error) {
	var best *models.PublishLogRecord
	for _, id := range sortedKeys(s.publishLogRecords) {
		r := s.publishLogRecords[id]
		if r.EntityID != entityID || r.PublishLogID > upToLogID {
			continue
		}
		if best == nil || r.PublishLogID > best.PublishLogID {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (s *Store) LastPublishLogRecord(ctx context.Context, entityID int64) (*models.PublishLogRecord, apperrors.Error) {
	var best *models.PublishLogRecord
	for _, id := range sortedKeys(s.publishLogRecords) {
		r := s.publishLogRecords[id]
		if r.EntityID != entityID {
			continue
		}
		if best == nil || r.PublishLogID > best.PublishLogID {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}
