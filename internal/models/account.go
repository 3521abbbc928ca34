package models

import (
	"time"

	"github.com/google/uuid"
)

// Account — учётная запись пользователя платформы.
//
// Инварианты:
//   - Username и Email уникальны среди всех аккаунтов (регистронезависимо,
//     хранятся в нижнем регистре);
//   - PasswordHash никогда не пустой и никогда не содержит открытый пароль;
//   - RefreshTokenHash хранит не более одного живого значения: выпуск нового
//     refresh-токена немедленно инвалидирует предыдущий. Поле мутируется
//     только сервисным слоем через атомарные операции хранилища.
type Account struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
	// AvatarURL/CoverURL — публичные ссылки на изображения в медиа-хранилище.
	AvatarURL string
	CoverURL  string
	// PasswordHash — bcrypt-хэш пароля.
	PasswordHash string
	// RefreshTokenHash — SHA-256 от текущего refresh-токена (nil — сессии нет).
	RefreshTokenHash *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AccountView — безопасное представление аккаунта для транспорта и
// контекста запроса: никогда не содержит пароль и refresh-токен.
type AccountView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View возвращает очищенное представление аккаунта.
func (a *Account) View() *AccountView {
	return &AccountView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FullName:  a.FullName,
		AvatarURL: a.AvatarURL,
		CoverURL:  a.CoverURL,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
