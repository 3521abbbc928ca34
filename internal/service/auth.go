package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/videotube-accounts/internal/models"
	"github.com/pribylovaa/videotube-accounts/internal/pkg/log"
	"github.com/pribylovaa/videotube-accounts/internal/pkg/redact"
	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

// Login выполняет вход по username/email + паролю.
//
// Успех означает: выпущена новая пара токенов, и хэш нового refresh-токена
// безусловно перезаписал предыдущий — старая сессия завершена немедленно,
// даже если её refresh-токен ещё не истёк.
func (s *Service) Login(ctx context.Context, login, password string) (*models.TokenPair, *models.AccountView, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmptyField)
	}

	if len(password) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	account, err := s.storage.AccountByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Нейтральная ошибка: не раскрываем, существует ли такой аккаунт.
			return nil, nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.checkPassword(ctx, account.PasswordHash, password) {
		lg.Warn("login_wrong_password",
			slog.String("op", op),
			slog.String("login", redact.Login(login)),
			slog.String("password", redact.Password()),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, account)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, account.View(), nil
}

// Refresh обновляет пару токенов по refresh-токену с ротацией.
//
// Предъявленный токен валиден, только если (a) подпись и срок корректны,
// (b) аккаунт существует и (c) хэш токена побайтно совпадает с хранимым.
// Ротация выполняется атомарным compare-and-swap: из двух конкурирующих
// запросов с одним устаревшим токеном успеет максимум один, второй получит
// ErrTokenReused.
func (s *Service) Refresh(ctx context.Context, presented string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.Refresh"

	lg := log.From(ctx)

	accountID, err := s.validateRefreshToken(presented)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	account, err := s.storage.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	presentedHash := refreshHash(presented)

	// Быстрая проверка до выпуска новых токенов; гонку закрывает CAS ниже.
	if account.RefreshTokenHash == nil || *account.RefreshTokenHash != presentedHash {
		lg.Warn("refresh_reuse_detected",
			slog.String("op", op),
			slog.String("account_id", account.ID.String()),
			slog.String("refresh_token", redact.Token()),
		)
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenReused)
	}

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, account, now)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, account.ID, now)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	rotated, err := s.storage.RotateRefreshToken(ctx, account.ID, presentedHash, refreshHash(refreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if !rotated {
		// Параллельная ротация успела раньше: предъявленный токен уже не текущий.
		lg.Warn("refresh_reuse_detected",
			slog.String("op", op),
			slog.String("account_id", account.ID.String()),
			slog.String("refresh_token", redact.Token()),
		)
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenReused)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, account.ID, nil
}

// Logout завершает сессию: сбрасывает хранимый refresh-токен.
// Идемпотентен — повторный logout не является ошибкой.
func (s *Service) Logout(ctx context.Context, accountID uuid.UUID) error {
	const op = "service.auth.Logout"

	if err := s.storage.ClearRefreshToken(ctx, accountID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCached(ctx, accountID)

	return nil
}

// ChangePassword меняет пароль после проверки старого.
// Смена пароля — событие, завершающее сессию: хранимый refresh-токен
// сбрасывается тем же запросом к БД, другие устройства будут вынуждены
// войти заново.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error {
	const op = "service.auth.ChangePassword"

	account, err := s.storage.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.checkPassword(ctx, account.PasswordHash, oldPassword) {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePasswordHash(ctx, accountID, hashed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateCached(ctx, accountID)

	return nil
}

// AuthenticateAccess — проверка access-токена для шлюза авторизации:
// валидирует токен и загружает актуальное представление аккаунта
// (через кэш, если он сконфигурирован).
func (s *Service) AuthenticateAccess(ctx context.Context, accessToken string) (*models.AccountView, error) {
	const op = "service.auth.AuthenticateAccess"

	claims, err := s.validateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accountID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	view, err := s.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Аккаунт удалён после выпуска токена.
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return view, nil
}

// issueTokenPair выпускает новую пару токенов и безусловно персистит
// хэш refresh-токена на аккаунте.
func (s *Service) issueTokenPair(ctx context.Context, account *models.Account) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, account, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, account.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetRefreshToken(ctx, account.ID, refreshHash(refreshToken)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// invalidateCached — best-effort инвалидация кэша аккаунта.
// Ошибка кэша не должна ломать основную операцию: пишем warn и продолжаем.
func (s *Service) invalidateCached(ctx context.Context, accountID uuid.UUID) {
	if s.icache == nil {
		return
	}

	if err := s.icache.Invalidate(ctx, accountID); err != nil {
		log.From(ctx).Warn("identity_cache_invalidate_failed",
			slog.String("account_id", accountID.String()),
			slog.String("err", err.Error()),
		)
	}
}
