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

func (s *Store) CreateVersion(ctx context.Context, v *models.PublishableEntityVersion) apperrors.Error {
	if v.UUID == "" {
		v.UUID = ids.New().String()
	}
	query := `
		INSERT INTO publishable_entity_versions (uuid, entity_id, version_num, title, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	err := s.q(ctx).QueryRowContext(ctx, query, v.UUID, v.EntityID, v.VersionNum, v.Title, v.CreatedAt, v.CreatedBy).Scan(&v.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23505" {
				return dberror.ErrConflict.Msg("version_num already exists for entity")
			}
			if pgErr.Code == "23503" {
				return dberror.ErrNotFound.Msg("entity not found")
			}
			if pgErr.Code == "23514" {
				return dberror.ErrValidation.Msg("version_num must be >= 1")
			}
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetVersion(ctx context.Context, id int64) (*models.PublishableEntityVersion, apperrors.Error) {
	query := `
		SELECT id, uuid, entity_id, version_num, title, created_at, created_by
		FROM publishable_entity_versions WHERE id = $1;
	`
	return s.scanVersion(s.q(ctx).QueryRowContext(ctx, query, id))
}

func (s *Store) LatestVersion(ctx context.Context, entityID int64) (*models.PublishableEntityVersion, apperrors.Error) {
	query := `
		SELECT id, uuid, entity_id, version_num, title, created_at, created_by
		FROM publishable_entity_versions WHERE entity_id = $1
		ORDER BY version_num DESC LIMIT 1;
	`
	return s.scanVersion(s.q(ctx).QueryRowContext(ctx, query, entityID))
}

func (s *Store) scanVersion(row *sql.Row) (*models.PublishableEntityVersion, apperrors.Error) {
	v := &models.PublishableEntityVersion{}
	err := row.Scan(&v.ID, &v.UUID, &v.EntityID, &v.VersionNum, &v.Title, &v.CreatedAt, &v.CreatedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("version not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return v, nil
}

func (s *Store) ListVersions(ctx context.Context, entityID int64) ([]*models.PublishableEntityVersion, apperrors.Error) {
	query := `
		SELECT id, uuid, entity_id, version_num, title, created_at, created_by
		FROM publishable_entity_versions WHERE entity_id = $1
		ORDER BY version_num;
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	defer rows.Close()

	var out []*models.PublishableEntityVersion
	for rows.Next() {
		v := &models.PublishableEntityVersion{}
		if err := rows.Scan(&v.ID, &v.UUID, &v.EntityID, &v.VersionNum, &v.Title, &v.CreatedAt, &v.CreatedBy); err != nil {
			return nil, dberror.ErrStore.Err(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	return out, nil
}
