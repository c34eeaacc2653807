package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/dbx"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

const uniqueViolation = "23505"

const identityColumns = `id, username, email, full_name, avatar_url, cover_image_url,
		 watch_history, password_hash, refresh_token_hash, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*models.Identity, error) {
	var (
		u       models.Identity
		history []byte
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &u.CoverImageURL,
		&history, &u.PasswordHash, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}

	u.WatchHistory = []string{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &u.WatchHistory); err != nil {
			return nil, fmt.Errorf("decode watch history: %w", err)
		}
	}
	u.RefreshTokenHash = refresh.String
	return &u, nil
}

// mapWriteError turns unique violations into common.ErrAlreadyExists. With
// RETURNING the violation surfaces from Scan, so reads go through it too.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	history := identity.WatchHistory
	if history == nil {
		history = []string{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode watch history: %w", err)
	}

	query :=
		`INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url, watch_history, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING ` + identityColumns

	row := r.db.QueryRowContext(ctx, query,
		identity.ID,
		NormalizeUsername(identity.Username),
		strings.TrimSpace(identity.Email),
		identity.FullName,
		identity.AvatarURL,
		identity.CoverImageURL,
		string(historyJSON),
		identity.PasswordHash,
	)

	return scanIdentity(row)
}

func (r *PostgresRepository) FindByHandleOrEmail(ctx context.Context, handle, email string) (*models.Identity, error) {
	query :=
		`SELECT ` + identityColumns + ` FROM users
		 WHERE username = $1 OR email = $2
		 ORDER BY (username = $1) DESC
		 LIMIT 1`

	return scanIdentity(r.db.QueryRowContext(ctx, query, NormalizeUsername(handle), strings.TrimSpace(email)))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	query :=
		`SELECT ` + identityColumns + ` FROM users
		 WHERE id = $1`

	return scanIdentity(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Identity, error) {
	query :=
		`SELECT ` + identityColumns + ` FROM users
		 WHERE id = $1
		 FOR UPDATE`

	return scanIdentity(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, hash string) error {
	query :=
		`UPDATE users SET refresh_token_hash = $2, updated_at = now()
		 WHERE id = $1`

	return r.execOne(ctx, query, id, hash)
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id, expectedOld, newHash string) (bool, error) {
	if expectedOld == "" {
		return false, nil
	}

	query :=
		`UPDATE users SET refresh_token_hash = $3, updated_at = now()
		 WHERE id = $1 AND refresh_token_hash = $2`

	res, err := r.db.ExecContext(ctx, query, id, expectedOld, newHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET refresh_token_hash = NULL, updated_at = now()
		 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE id = $1`

	return r.execOne(ctx, query, id, hash)
}

func (r *PostgresRepository) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.Identity, error) {
	query :=
		`UPDATE users SET full_name = $2, email = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + identityColumns

	return r.updateReturning(ctx, query, id, fullName, strings.TrimSpace(email))
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, url string) (*models.Identity, error) {
	query :=
		`UPDATE users SET avatar_url = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + identityColumns

	return r.updateReturning(ctx, query, id, url)
}

func (r *PostgresRepository) UpdateCoverImage(ctx context.Context, id, url string) (*models.Identity, error) {
	query :=
		`UPDATE users SET cover_image_url = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + identityColumns

	return r.updateReturning(ctx, query, id, url)
}

func (r *PostgresRepository) updateReturning(ctx context.Context, query string, args ...any) (*models.Identity, error) {
	return scanIdentity(r.db.QueryRowContext(ctx, query, args...))
}

// execOne runs an UPDATE that must hit exactly one row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
