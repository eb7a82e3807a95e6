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

func (s *Store) MarkContainer(ctx context.Context, entityID int64) apperrors.Error {
	query := `INSERT INTO containers (entity_id) VALUES ($1) ON CONFLICT (entity_id) DO NOTHING;`
	if _, err := s.q(ctx).ExecContext(ctx, query, entityID); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return dberror.ErrNotFound.Msg("entity not found")
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) IsContainer(ctx context.Context, entityID int64) (bool, apperrors.Error) {
	query := `SELECT EXISTS(SELECT 1 FROM containers WHERE entity_id = $1);`
	var exists bool
	if err := s.q(ctx).QueryRowContext(ctx, query, entityID).Scan(&exists); err != nil {
		return false, dberror.ErrStore.Err(err)
	}
	return exists, nil
}

// CreateEntityList inserts the list and its rows atomically; lists are
// immutable after creation (spec §4.4 "List reuse rule"), so rows are
// written once here and never mutated afterward.
func (s *Store) CreateEntityList(ctx context.Context, list *models.EntityList, rows []*models.EntityListRow) apperrors.Error {
	if list.UUID == "" {
		list.UUID = ids.New().String()
	}
	return s.withAtomic(ctx, func(ctx context.Context) apperrors.Error {
		query := `INSERT INTO entity_lists (uuid, created_at) VALUES ($1, $2) RETURNING id;`
		if err := s.q(ctx).QueryRowContext(ctx, query, list.UUID, list.CreatedAt).Scan(&list.ID); err != nil {
			return dberror.ErrStore.Err(err)
		}
		for _, r := range rows {
			rowQuery := `
				INSERT INTO entity_list_rows (entity_list_id, order_num, entity_id, entity_version_id)
				VALUES ($1, $2, $3, $4)
				RETURNING id;
			`
			if err := s.q(ctx).QueryRowContext(ctx, rowQuery, list.ID, r.OrderNum, r.EntityID, r.EntityVersionID).Scan(&r.ID); err != nil {
				if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
					return dberror.ErrNotFound.Msg("entity or version not found")
				}
				return dberror.ErrStore.Err(err)
			}
			r.EntityListID = list.ID
		}
		return nil
	})
}

func (s *Store) GetEntityList(ctx context.Context, id int64) (*models.EntityList, apperrors.Error) {
	query := `SELECT id, uuid, created_at FROM entity_lists WHERE id = $1;`
	l := &models.EntityList{}
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(&l.ID, &l.UUID, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("entity list not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return l, nil
}

func (s *Store) ListEntityListRows(ctx context.Context, listID int64) ([]*models.EntityListRow, apperrors.Error) {
	query := `
		SELECT id, entity_list_id, order_num, entity_id, entity_version_id
		FROM entity_list_rows WHERE entity_list_id = $1
		ORDER BY order_num;
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, listID)
	if err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	defer rows.Close()

	var out []*models.EntityListRow
	for rows.Next() {
		r := &models.EntityListRow{}
		if err := rows.Scan(&r.ID, &r.EntityListID, &r.OrderNum, &r.EntityID, &r.EntityVersionID); err != nil {
			return nil, dberror.ErrStore.Err(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	return out, nil
}

func (s *Store) CreateContainerVersion(ctx context.Context, cv *models.ContainerVersion) apperrors.Error {
	query := `
		INSERT INTO container_versions (version_id, container_id, entity_list_id)
		VALUES ($1, $2, $3);
	`
	if _, err := s.q(ctx).ExecContext(ctx, query, cv.VersionID, cv.ContainerID, cv.EntityListID); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23505" {
				return dberror.ErrAlreadyExists.Msg("container version already exists")
			}
			if pgErr.Code == "23503" {
				return dberror.ErrNotFound.Msg("version, container, or entity list not found")
			}
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetContainerVersion(ctx context.Context, versionID int64) (*models.ContainerVersion, apperrors.Error) {
	query := `SELECT version_id, container_id, entity_list_id FROM container_versions WHERE version_id = $1;`
	cv := &models.ContainerVersion{}
	err := s.q(ctx).QueryRowContext(ctx, query, versionID).Scan(&cv.VersionID, &cv.ContainerID, &cv.EntityListID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("container version not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return cv, nil
}

// ContainersReferencingEntity joins container_versions to entity_list_rows
// so side-effect propagation (§4.5, §4.7) and containers_with_entity (§4.7)
// never need to materialize an entity list's rows in Go to answer "which
// containers reference this entity".
func (s *Store) ContainersReferencingEntity(ctx context.Context, entityID int64, includePinned bool) ([]*models.ContainerVersion, apperrors.Error) {
	query := `
		SELECT DISTINCT cv.version_id, cv.container_id, cv.entity_list_id
		FROM container_versions cv
		JOIN entity_list_rows r ON r.entity_list_id = cv.entity_list_id
		WHERE r.entity_id = $1
	`
	if !includePinned {
		query += ` AND r.entity_version_id IS NULL`
	}
	query += ` ORDER BY cv.version_id;`

	rows, err := s.q(ctx).QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	defer rows.Close()

	var out []*models.ContainerVersion
	for rows.Next() {
		cv := &models.ContainerVersion{}
		if err := rows.Scan(&cv.VersionID, &cv.ContainerID, &cv.EntityListID); err != nil {
			return nil, dberror.ErrStore.Err(err)
		}
		out = append(out, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrStore.Err(err)
	}
	return out, nil
}
