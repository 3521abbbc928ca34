package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

// SetRefreshToken безусловно перезаписывает хэш refresh-токена.
// Точка невозврата для предыдущей сессии: старый токен перестает
// совпадать с хранимым значением немедленно, даже если не истёк.
func (s *Storage) SetRefreshToken(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "storage.postgres.SetRefreshToken"

	query := `
		UPDATE accounts
		SET refresh_token_hash = $2, updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RotateRefreshToken атомарно заменяет oldHash на newHash.
// Единственный UPDATE с условием по старому значению гарантирует, что из
// двух конкурирующих ротаций с одним и тем же устаревшим токеном выиграет
// максимум одна; вторая увидит (false, nil).
func (s *Storage) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string) (bool, error) {
	const op = "storage.postgres.RotateRefreshToken"

	const upd = `
		UPDATE accounts
		SET refresh_token_hash = $3, updated_at = now()
		WHERE id = $1 AND refresh_token_hash = $2
		RETURNING id
	`

	var updated uuid.UUID
	err := s.db.QueryRow(ctx, upd, id, oldHash, newHash).Scan(&updated)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	// CAS не сработал: различаем "аккаунт исчез" и "токен уже не текущий".
	const sel = `
		SELECT 1
		FROM accounts
		WHERE id = $1
	`

	var one int
	err = s.db.QueryRow(ctx, sel, id).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return false, nil
}

// ClearRefreshToken сбрасывает хэш refresh-токена. Идемпотентна:
// отсутствие аккаунта или уже пустое поле не считаются ошибкой.
func (s *Storage) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.ClearRefreshToken"

	query := `
		UPDATE accounts
		SET refresh_token_hash = NULL, updated_at = now()
		WHERE id = $1
	`

	if _, err := s.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdatePasswordHash сохраняет новый хэш пароля и тем же запросом сбрасывает
// refresh-токен: смена пароля — событие, завершающее сессию.
func (s *Storage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const op = "storage.postgres.UpdatePasswordHash"

	query := `
		UPDATE accounts
		SET password_hash = $2, refresh_token_hash = NULL, updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
