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

// CreateEntity inserts the entity row and seeds its draft/published head
// rows (both null) in one atomic unit, mirroring memstore's CreateEntity
// seeding s.drafts/s.published alongside s.entities.
func (s *Store) CreateEntity(ctx context.Context, e *models.PublishableEntity) apperrors.Error {
	if e.UUID == "" {
		e.UUID = ids.New().String()
	}
	return s.withAtomic(ctx, func(ctx context.Context) apperrors.Error {
		query := `
			INSERT INTO publishable_entities (uuid, learning_package_id, key, created_at, created_by, can_stand_alone)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;
		`
		err := s.q(ctx).QueryRowContext(ctx, query, e.UUID, e.LearningPackageID, e.Key, e.CreatedAt, e.CreatedBy, e.CanStandAlone).Scan(&e.ID)
		if err != nil {
			if pgErr, ok := err.(*pgconn.PgError); ok {
				if pgErr.Code == "23505" {
					return dberror.ErrAlreadyExists.Msg("entity key already exists in package: " + e.Key)
				}
				if pgErr.Code == "23503" {
					return dberror.ErrNotFound.Msg("package not found")
				}
			}
			return dberror.ErrStore.Err(err)
		}
		if _, err := s.q(ctx).ExecContext(ctx, `INSERT INTO drafts (entity_id, version_id) VALUES ($1, NULL);`, e.ID); err != nil {
			return dberror.ErrStore.Err(err)
		}
		if _, err := s.q(ctx).ExecContext(ctx, `INSERT INTO published (entity_id, version_id, publish_log_record_id) VALUES ($1, NULL, NULL);`, e.ID); err != nil {
			return dberror.ErrStore.Err(err)
		}
		return nil
	})
}

func (s *Store) GetEntity(ctx context.Context, id int64) (*models.PublishableEntity, apperrors.Error) {
	query := `
		SELECT id, uuid, learning_package_id, key, created_at, created_by, can_stand_alone
		FROM publishable_entities WHERE id = $1;
	`
	return s.scanEntity(s.q(ctx).QueryRowContext(ctx, query, id))
}

func (s *Store) GetEntityByKey(ctx context.Context, packageID int64, key string) (*models.PublishableEntity, apperrors.Error) {
	query := `
		SELECT id, uuid, learning_package_id, key, created_at, created_by, can_stand_alone
		FROM publishable_entities WHERE learning_package_id = $1 AND key = $2;
	`
	return s.scanEntity(s.q(ctx).QueryRowContext(ctx, query, packageID, key))
}

func (s *Store) scanEntity(row *sql.Row) (*models.PublishableEntity, apperrors.Error) {
	e := &models.PublishableEntity{}
	err := row.Scan(&e.ID, &e.UUID, &e.LearningPackageID, &e.Key, &e.CreatedAt, &e.CreatedBy, &e.CanStandAlone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("entity not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return e, nil
}

func (s *Store) ListEntitiesByPackage(ctx context.Context, packageID int64) ([]*models.PublishableEntity, apperrors.Error) {
	query := `
		SELECT id, uuid, learning_package_id, key, created_at, created_by, can_stand_alone
		FROM publishable_entities WHERE learning_package_id = $1
		ORDER BY created_at, id;
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, packageID)
	if err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	defer rows.Close()

	var out []*models.PublishableEntity
	for rows.Next() {
		e := &models.PublishableEntity{}
		if err := rows.Scan(&e.ID, &e.UUID, &e.LearningPackageID, &e.Key, &e.CreatedAt, &e.CreatedBy, &e.CanStandAlone); err != nil {
			return nil, dberror.ErrStore.Err(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	return out, nil
}
