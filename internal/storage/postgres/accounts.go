package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/videotube-accounts/internal/models"
	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

const accountColumns = `id, username, email, full_name, avatar_url, cover_url, password_hash, refresh_token_hash, created_at, updated_at`

// scanAccount читает одну строку accounts в модель.
func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.FullName,
		&a.AvatarURL,
		&a.CoverURL,
		&a.PasswordHash,
		&a.RefreshTokenHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// SaveAccount создает новый аккаунт в БД.
func (s *Storage) SaveAccount(ctx context.Context, account *models.Account) error {
	const op = "storage.postgres.SaveAccount"

	query := `
		INSERT INTO accounts(id, username, email, full_name, avatar_url, cover_url, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.AvatarURL,
		account.CoverURL,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AccountByLogin находит аккаунт по username или email.
// Колонки CITEXT, поэтому сравнение регистронезависимое на стороне БД.
func (s *Storage) AccountByLogin(ctx context.Context, login string) (*models.Account, error) {
	const op = "storage.postgres.AccountByLogin"

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE username = $1 OR email = $1
	`

	account, err := scanAccount(s.db.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}

// AccountByID находит аккаунт по ID.
func (s *Storage) AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	const op = "storage.postgres.AccountByID"

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	account, err := scanAccount(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}

// UpdateAccountDetails обновляет имя и email.
func (s *Storage) UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*models.Account, error) {
	const op = "storage.postgres.UpdateAccountDetails"

	query := `
		UPDATE accounts
		SET full_name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(s.db.QueryRow(ctx, query, id, fullName, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}

// UpdateAvatarURL сохраняет публичную ссылку на аватар.
func (s *Storage) UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) (*models.Account, error) {
	const op = "storage.postgres.UpdateAvatarURL"

	query := `
		UPDATE accounts
		SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(s.db.QueryRow(ctx, query, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}

// UpdateCoverURL сохраняет публичную ссылку на обложку.
func (s *Storage) UpdateCoverURL(ctx context.Context, id uuid.UUID, url string) (*models.Account, error) {
	const op = "storage.postgres.UpdateCoverURL"

	query := `
		UPDATE accounts
		SET cover_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(s.db.QueryRow(ctx, query, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}
