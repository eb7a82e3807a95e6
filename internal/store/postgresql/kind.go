package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) UpsertKindRegistration(ctx context.Context, k *models.KindRegistration) apperrors.Error {
	query := `
		INSERT INTO kind_registrations (name, is_container, allowed_child_kinds, schema_version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			is_container = EXCLUDED.is_container,
			allowed_child_kinds = EXCLUDED.allowed_child_kinds,
			schema_version = EXCLUDED.schema_version;
	`
	_, err := s.q(ctx).ExecContext(ctx, query, k.Name, k.IsContainer, pq.Array(k.AllowedChildKinds), k.SchemaVersion)
	if err != nil {
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetKindRegistration(ctx context.Context, name string) (*models.KindRegistration, apperrors.Error) {
	query := `SELECT name, is_container, allowed_child_kinds, schema_version FROM kind_registrations WHERE name = $1;`
	k := &models.KindRegistration{}
	err := s.q(ctx).QueryRowContext(ctx, query, name).Scan(&k.Name, &k.IsContainer, pq.Array(&k.AllowedChildKinds), &k.SchemaVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("kind registration not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return k, nil
}

func (s *Store) SetEntityKind(ctx context.Context, entityID int64, kind string) apperrors.Error {
	query := `
		INSERT INTO entity_kinds (entity_id, kind) VALUES ($1, $2)
		ON CONFLICT (entity_id) DO UPDATE SET kind = EXCLUDED.kind;
	`
	_, err := s.q(ctx).ExecContext(ctx, query, entityID, kind)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23503" {
				return dberror.ErrWrongKind.Msg("kind not registered: " + kind)
			}
		}
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetEntityKind(ctx context.Context, entityID int64) (string, apperrors.Error) {
	query := `SELECT kind FROM entity_kinds WHERE entity_id = $1;`
	var kind string
	err := s.q(ctx).QueryRowContext(ctx, query, entityID).Scan(&kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", dberror.ErrNotFound.Msg("entity kind not found")
		}
		return "", dberror.ErrStore.Err(err)
	}
	return kind, nil
}
