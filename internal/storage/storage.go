package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/videotube-accounts/internal/models"
)

var (
	// ErrNotFound — запись не найдена (аккаунт).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument — нарушены ограничения запроса к медиа-хранилищу (тип/размер/ключ).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMediaNotFound — объект (ключ) отсутствует в бакете.
	ErrMediaNotFound = errors.New("media object not found")
)

// AccountStorage выполняет операции над аккаунтами.
type AccountStorage interface {
	// SaveAccount создает новый аккаунт в БД.
	SaveAccount(ctx context.Context, account *models.Account) error
	// AccountByLogin находит аккаунт по username или email (одним запросом).
	AccountByLogin(ctx context.Context, login string) (*models.Account, error)
	// AccountByID находит аккаунт по ID.
	AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// UpdateAccountDetails обновляет имя и email, возвращает новое состояние.
	UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*models.Account, error)
	// UpdateAvatarURL сохраняет публичную ссылку на аватар.
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) (*models.Account, error)
	// UpdateCoverURL сохраняет публичную ссылку на обложку.
	UpdateCoverURL(ctx context.Context, id uuid.UUID, url string) (*models.Account, error)
}

// SessionStorage управляет единственным refresh-токеном аккаунта.
// Единственный легитимный мутатор этого поля — сервисный слой сессий.
type SessionStorage interface {
	// SetRefreshToken безусловно записывает хэш нового refresh-токена,
	// перезаписывая предыдущее значение (login: старая сессия гаснет сразу).
	SetRefreshToken(ctx context.Context, id uuid.UUID, hash string) error
	// RotateRefreshToken атомарно заменяет oldHash на newHash (compare-and-swap).
	// Возвращает:
	//   (true, nil)  — предъявленный токен был текущим и заменён;
	//   (false, nil) — аккаунт существует, но хранимое значение иное
	//                  (повторное использование после ротации/отзыва);
	//   (false, ErrNotFound) — аккаунт не найден.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string) (bool, error)
	// ClearRefreshToken сбрасывает хэш в NULL. Идемпотентна.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	// UpdatePasswordHash сохраняет новый хэш пароля и одновременно (тем же
	// запросом) сбрасывает refresh-токен: смена пароля завершает сессию.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// MediaKind — класс загружаемого изображения; определяет префикс ключа в бакете.
type MediaKind string

const (
	MediaAvatar MediaKind = "avatars"
	MediaCover  MediaKind = "covers"
)

// UploadInfo — информация для клиента о presigned PUT загрузке.
//   - UploadURL: конечная URL для PUT-запроса;
//   - Key: ключ (путь) будущего объекта в бакете;
//   - Expires: время жизни подписи;
//   - RequiredHeader: заголовки, которые клиент ОБЯЗАН передать при PUT.
type UploadInfo struct {
	UploadURL      string
	Key            string
	Expires        time.Duration
	RequiredHeader map[string]string
}

// MediaStorage — контракт генерации presigned URL и подтверждения загрузки.
type MediaStorage interface {
	// UploadURL генерирует presigned PUT. Внутри — валидация contentType и contentLength.
	UploadURL(ctx context.Context, kind MediaKind, accountID uuid.UUID, contentType string, contentLength int64) (*UploadInfo, error)
	// CheckUpload проверяет факт загрузки по key (наличие, тип, размер)
	// и возвращает публичный URL объекта.
	CheckUpload(ctx context.Context, kind MediaKind, accountID uuid.UUID, key string) (string, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	AccountStorage
	SessionStorage
	Close()
}
