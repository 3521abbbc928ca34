package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/videotube-accounts/internal/models"
	"github.com/pribylovaa/videotube-accounts/internal/pkg/log"
	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

// Register регистрирует новый аккаунт.
// Вход не выполняется: клиент после регистрации логинится отдельно.
func (s *Service) Register(ctx context.Context, username, email, fullName, password string) (*models.AccountView, error) {
	const op = "service.accounts.Register"

	normUsername, err := validateUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Предпроверки уникальности; финальную гарантию даёт constraint в БД.
	for _, login := range []string{normUsername, normEmail} {
		_, err = s.storage.AccountByLogin(ctx, login)
		if err == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrAccountTaken)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	hashed, err := s.hashPassword(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Username:     normUsername,
		Email:        normEmail,
		FullName:     fullName,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccountTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account.View(), nil
}

// AccountByID возвращает очищенное представление аккаунта.
// При сконфигурированном кэше — сначала из него; промах дочитывается из БД
// и кладётся обратно best-effort.
func (s *Service) AccountByID(ctx context.Context, id uuid.UUID) (*models.AccountView, error) {
	const op = "service.accounts.AccountByID"

	lg := log.From(ctx)

	if s.icache != nil {
		view, ok, err := s.icache.Get(ctx, id)
		if err != nil {
			lg.Warn("identity_cache_get_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if ok {
			return view, nil
		}
	}

	account, err := s.storage.AccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := account.View()

	if s.icache != nil {
		if err := s.icache.Set(ctx, view, s.icacheTTL); err != nil {
			lg.Warn("identity_cache_set_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	return view, nil
}

// UpdateAccount обновляет имя и email аккаунта.
func (s *Service) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*models.AccountView, error) {
	const op = "service.accounts.UpdateAccount"

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	account, err := s.storage.UpdateAccountDetails(ctx, id, fullName, normEmail)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrAccountTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCached(ctx, id)

	return account.View(), nil
}

// MediaUploadURL выдаёт presigned PUT для загрузки аватара или обложки.
func (s *Service) MediaUploadURL(ctx context.Context, kind storage.MediaKind, accountID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service.accounts.MediaUploadURL"

	if s.media == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMediaUnavailable)
	}

	info, err := s.media.UploadURL(ctx, kind, accountID, contentType, contentLength)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidMedia)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return info, nil
}

// ConfirmMediaUpload подтверждает загрузку объекта и сохраняет его публичный
// URL на аккаунте (в поле, соответствующем kind).
func (s *Service) ConfirmMediaUpload(ctx context.Context, kind storage.MediaKind, accountID uuid.UUID, key string) (*models.AccountView, error) {
	const op = "service.accounts.ConfirmMediaUpload"

	if s.media == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMediaUnavailable)
	}

	publicURL, err := s.media.CheckUpload(ctx, kind, accountID, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrMediaNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrInvalidArgument):
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidMedia)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var account *models.Account
	switch kind {
	case storage.MediaCover:
		account, err = s.storage.UpdateCoverURL(ctx, accountID, publicURL)
	default:
		account, err = s.storage.UpdateAvatarURL(ctx, accountID, publicURL)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCached(ctx, accountID)

	return account.View(), nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.accounts.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validateUsername нормализует и проверяет username:
// 3..32 символа, строчные латинские буквы, цифры и "_".
func validateUsername(raw string) (string, error) {
	const op = "service.accounts.validateUsername"

	username := strings.ToLower(strings.TrimSpace(raw))
	if len(username) < 3 || len(username) > 32 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidUsername)
	}

	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidUsername)
		}
	}

	return username, nil
}
