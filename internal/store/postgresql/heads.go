package postgresql

import (
	"context"
	"database/sql"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) GetDraft(ctx context.Context, entityID int64) (*models.Draft, apperrors.Error) {
	query := `SELECT entity_id, version_id FROM drafts WHERE entity_id = $1;`
	d := &models.Draft{}
	err := s.q(ctx).QueryRowContext(ctx, query, entityID).Scan(&d.EntityID, &d.VersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("draft not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return d, nil
}

// SetDraftHead upserts the draft row for entityID, following spec §4.3.
// CreateEntity already seeds the row, so for entities created through it
// this retargets the existing row.
func (s *Store) SetDraftHead(ctx context.Context, entityID int64, versionID *int64) apperrors.Error {
	query := `
		INSERT INTO drafts (entity_id, version_id) VALUES ($1, $2)
		ON CONFLICT (entity_id) DO UPDATE SET version_id = EXCLUDED.version_id;
	`
	if _, err := s.q(ctx).ExecContext(ctx, query, entityID, versionID); err != nil {
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetPublished(ctx context.Context, entityID int64) (*models.Published, apperrors.Error) {
	query := `SELECT entity_id, version_id, publish_log_record_id FROM published WHERE entity_id = $1;`
	p := &models.Published{}
	err := s.q(ctx).QueryRowContext(ctx, query, entityID).Scan(&p.EntityID, &p.VersionID, &p.PublishLogRecordID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("published head not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return p, nil
}

func (s *Store) SetPublishedHead(ctx context.Context, entityID int64, versionID *int64, publishLogRecordID *int64) apperrors.Error {
	query := `
		INSERT INTO published (entity_id, version_id, publish_log_record_id) VALUES ($1, $2, $3)
		ON CONFLICT (entity_id) DO UPDATE SET version_id = EXCLUDED.version_id, publish_log_record_id = EXCLUDED.publish_log_record_id;
	`
	if _, err := s.q(ctx).ExecContext(ctx, query, entityID, versionID, publishLogRecordID); err != nil {
		return dberror.ErrStore.Err(err)
	}
	return nil
}
