package service

import (
	"context"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword хэширует пароль bcrypt-ом со стоимостью из конфига.
// Соль генерируется на каждый вызов, поэтому два вызова для одного пароля
// дают разные байты. Вызов проходит через hashSem: bcrypt CPU-bound, и
// параллельные логины не должны монополизировать планировщик.
func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	const op = "service.password.hashPassword"

	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer s.hashSem.Release(1)

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем (константное время внутри bcrypt).
// Fail-closed: на битом хэше возвращает false, не ошибку.
func (s *Service) checkPassword(ctx context.Context, hash, password string) bool {
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer s.hashSem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная и цифра.
func validatePassword(pw string) error {
	const op = "service.password.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
