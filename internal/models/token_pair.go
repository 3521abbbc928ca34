package models

import "time"

// TokenPair — пара токенов, выдаваемая при входе и ротации.
//
// Описание:
//   - AccessToken — короткоживущий JWT (секрет access) с данными аккаунта;
//   - RefreshToken — долгоживущий JWT (отдельный секрет refresh), клиент
//     предъявляет его для выпуска новой пары; на сервере хранится только
//     его SHA-256-хэш на самом аккаунте;
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
