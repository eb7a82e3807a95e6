package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/ids"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/models"
)

func (s *Store) CreatePackage(ctx context.Context, pkg *models.LearningPackage) apperrors.Error {
	if pkg.UUID == "" {
		pkg.UUID = ids.New().String()
	}
	query := `
		INSERT INTO learning_packages (uuid, key, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	err := s.q(ctx).QueryRowContext(ctx, query, pkg.UUID, pkg.Key, pkg.Title, pkg.Description, pkg.CreatedAt, pkg.UpdatedAt).Scan(&pkg.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return dberror.ErrAlreadyExists.Msg("package key already exists: " + pkg.Key)
		}
		log.Ctx(ctx).Error().Err(err).Str("key", pkg.Key).Msg("failed to insert learning package")
		return dberror.ErrStore.Err(err)
	}
	return nil
}

func (s *Store) GetPackage(ctx context.Context, id int64) (*models.LearningPackage, apperrors.Error) {
	query := `SELECT id, uuid, key, title, description, created_at, updated_at FROM learning_packages WHERE id = $1;`
	return s.scanPackage(s.q(ctx).QueryRowContext(ctx, query, id))
}

func (s *Store) GetPackageByKey(ctx context.Context, key string) (*models.LearningPackage, apperrors.Error) {
	query := `SELECT id, uuid, key, title, description, created_at, updated_at FROM learning_packages WHERE key = $1;`
	return s.scanPackage(s.q(ctx).QueryRowContext(ctx, query, key))
}

func (s *Store) scanPackage(row *sql.Row) (*models.LearningPackage, apperrors.Error) {
	pkg := &models.LearningPackage{}
	err := row.Scan(&pkg.ID, &pkg.UUID, &pkg.Key, &pkg.Title, &pkg.Description, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("package not found")
		}
		return nil, dberror.ErrStore.Err(err)
	}
	return pkg, nil
}

func (s *Store) UpdatePackage(ctx context.Context, pkg *models.LearningPackage) apperrors.Error {
	query := `
		UPDATE learning_packages SET key = $2, title = $3, description = $4, updated_at = $5
		WHERE id = $1;
	`
	res, err := s.q(ctx).ExecContext(ctx, query, pkg.ID, pkg.Key, pkg.Title, pkg.Description, pkg.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return dberror.ErrAlreadyExists.Msg("package key already exists: " + pkg.Key)
		}
		return dberror.ErrStore.Err(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("package not found")
	}
	return nil
}

func (s *Store) DeletePackage(ctx context.Context, id int64) apperrors.Error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM learning_packages WHERE id = $1;`, id)
	if err != nil {
		return dberror.ErrStore.Err(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dberror.ErrNotFound.Msg("package not found")
	}
	return nil
}
