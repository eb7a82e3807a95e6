package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) InsertDraftChangeLog(ctx context.Context, log *models.DraftChangeLog) apperrors.Error {
	if log.UUID == "" {
		log.UUID = ids.New().String()
	}
	query := `
		INSERT INTO draft_change_logs (uuid, learning_package_id, changed_at, changed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	err := s.q(ctx).QueryRowContext(ctx, query, log.UUID, log.LearningPackageID, log.ChangedAt, log.ChangedBy).Scan(&log.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("package not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

// UpsertDraftChangeLogRecord keeps at most one record per (log, entity),
// mirroring memstore's linear-scan-then-overwrite behavior via the table's
// dclr_uniq_log_entity constraint (spec §4.5).
func (s *Store) UpsertDraftChangeLogRecord(ctx context.Context, r *models.DraftChangeLogRecord) apperrors.Error {
	query := `
		INSERT INTO draft_change_log_records (draft_change_log_id, entity_id, old_version_id, new_version_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (draft_change_log_id, entity_id)
		DO UPDATE SET new_version_id = EXCLUDED.new_version_id
		RETURNING id;
	`
	err := s.q(ctx).QueryRowContext(ctx, query, r.DraftChangeLogID, r.EntityID, r.OldVersionID, r.NewVersionID).Scan(&r.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("draft change log or entity not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetDraftChangeLogRecord(ctx context.Context, logID, entityID int64) (*models.DraftChangeLogRecord, apperrors.Error) {
	query := `
		SELECT id, draft_change_log_id, entity_id, old_version_id, new_version_id
		FROM draft_change_log_records WHERE draft_change_log_id = $1 AND entity_id = $2;
	`
	r := &models.DraftChangeLogRecord{}
	err := s.q(ctx).QueryRowContext(ctx, query, logID, entityID).Scan(&r.ID, &r.DraftChangeLogID, &r.EntityID, &r.OldVersionID, &r.NewVersionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("draft change log record not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return r, nil
}

func (s *Store) ListDraftChangeLogRecords(ctx context.Context, logID int64) ([]*models.DraftChangeLogRecord, apperrors.Error) {
	query := `
		SELECT id, draft_change_log_id, entity_id, old_version_id, new_version_id
		FROM draft_change_log_records WHERE draft_change_log_id = $1
		ORDER BY id;
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, logID)
	if err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	defer rows.Close()

	var out []*models.DraftChangeLogRecord
	for rows.Next() {
		r := &models.DraftChangeLogRecord{}
		if err := rows.Scan(&r.ID, &r.DraftChangeLogID, &r.EntityID, &r.OldVersionID, &r.NewVersionID); err != nil {
			return nil, dberror.ErrStore.Err(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	return out, nil
}

func (s *Store) InsertDraftSideEffect(ctx context.Context, e *models.DraftSideEffect) apperrors.Error {
	query := `
		INSERT INTO draft_side_effects (cause_id, effect_id) VALUES ($1, $2)
		ON CONFLICT (cause_id, effect_id) DO NOTHING;
	`
	if _, err := s.q(ctx).ExecContext(ctx, query, e.CauseID, e.EffectID); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("draft change log record not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) InsertPublishLog(ctx context.Context, log *models.PublishLog) apperrors.Error {
	if log.UUID == "" {
		log.UUID = ids.New().String()
	}
	query := `
		INSERT INTO publish_logs (uuid, learning_package_id, message, published_at, published_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	err := s.q(ctx).QueryRowContext(ctx, query, log.UUID, log.LearningPackageID, log.Message, log.PublishedAt, log.PublishedBy).Scan(&log.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("package not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) UpsertPublishLogRecord(ctx context.Context, r *models.PublishLogRecord) apperrors.Error {
	query := `
		INSERT INTO publish_log_records (publish_log_id, entity_id, old_version_id, new_version_id, dependencies_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (publish_log_id, entity_id)
		DO UPDATE SET new_version_id = EXCLUDED.new_version_id, dependencies_hash = EXCLUDED.dependencies_hash
		RETURNING id;
	`
	err := s.q(ctx).QueryRowContext(ctx, query, r.PublishLogID, r.EntityID, r.OldVersionID, r.NewVersionID, r.DependenciesHash).Scan(&r.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("publish log or entity not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetPublishLogRecord(ctx context.Context, logID, entityID int64) (*models.PublishLogRecord, apperrors.Error) {
	query := `
		SELECT id, publish_log_id, entity_id, old_version_id, new_version_id, dependencies_hash
		FROM publish_log_records WHERE publish_log_id = $1 AND entity_id = $2;
	`
	return s.scanPublishLogRecord(s.q(ctx).QueryRowContext(ctx, query, logID, entityID))
}

func (s *Store) scanPublishLogRecord(row *sql.Row) (*models.PublishLogRecord, apperrors.Error) {
	r := &models.PublishLogRecord{}
	err := row.Scan(&r.ID, &r.PublishLogID, &r.EntityID, &r.OldVersionID, &r.NewVersionID, &r.DependenciesHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("publish log record not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return r, nil
}

func (s *Store) ListPublishLogRecords(ctx context.Context, logID int64) ([]*models.PublishLogRecord, apperrors.Error) {
	query := `
		SELECT id, publish_log_id, entity_id, old_version_id, new_version_id, dependencies_hash
		FROM publish_log_records WHERE publish_log_id = $1
		ORDER BY id;
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, logID)
	if err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	defer rows.Close()

	var out []*models.PublishLogRecord
	for rows.Next() {
		r := &models.PublishLogRecord{}
		if err := rows.Scan(&r.ID, &r.PublishLogID, &r.EntityID, &r.OldVersionID, &r.NewVersionID, &r.DependenciesHash); err != nil {
			return nil, dberror.ErrStore.Err(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	return out, nil
}

func (s *Store) InsertPublishSideEffect(ctx context.Context, e *models.PublishSideEffect) apperrors.Error {
	query := `
		INSERT INTO publish_side_effects (cause_id, effect_id) VALUES ($1, $2)
		ON CONFLICT (cause_id, effect_id) DO NOTHING;
	`
	if _, err := s.q(ctx).ExecContext(ctx, query, e.CauseID, e.EffectID); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("publish log record not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

// LatestPublishLogRecordUpTo relies on publish_logs.id being monotonically
// increasing (spec §5) to find the most recent record at or before
// upToLogID without walking every record in Go, unlike memstore's linear
// scan over sortedKeys.
func (s *Store) LatestPublishLogRecordUpTo(ctx context.Context, entityID int64, upToLogID int64) (*models.PublishLogRecord, apperrors.Error) {
	query := `
		SELECT id, publish_log_id, entity_id, old_version_id, new_version_id, dependencies_hash
		FROM publish_log_records
		WHERE entity_id = $1 AND publish_log_id <= $2
		ORDER BY publish_log_id DESC LIMIT 1;
	`
	r, err := s.scanPublishLogRecord(s.q(ctx).QueryRowContext(ctx, query, entityID, upToLogID))
	if err != nil {
		if err.StatusCode() == dberror.ErrNotFound.StatusCode() {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func (s *Store) LastPublishLogRecord(ctx context.Context, entityID int64) (*models.PublishLogRecord, apperrors.Error) {
	query := `
		SELECT id, publish_log_id, entity_id, old_version_id, new_version_id, dependencies_hash
		FROM publish_log_records
		WHERE entity_id = $1
		ORDER BY publish_log_id DESC LIMIT 1;
	`
	r, err := s.scanPublishLogRecord(s.q(ctx).QueryRowContext(ctx, query, entityID))
	if err != nil {
		if err.StatusCode() == dberror.ErrNotFound.StatusCode() {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}
