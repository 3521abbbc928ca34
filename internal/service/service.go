// service содержит бизнес-логику accounts-сервиса: регистрацию и
// аутентификацию аккаунтов, жизненный цикл сессии (login/refresh/logout/
// смена пароля), выпуск и проверку токенов и работу с хранилищем через
// интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Единственный легитимный мутатор поля refresh-токена на аккаунте —
//     методы этого пакета, всегда через атомарные операции хранилища.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pribylovaa/videotube-accounts/internal/cache"
	"github.com/pribylovaa/videotube-accounts/internal/config"
	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

var (
	// ErrInvalidCredentials — пароль (или старый пароль) неверен.
	// Транспорт: HTTP 401 (login) / 400 (change-password).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound — аккаунт с таким username/email не найден.
	// Сообщение наружу нейтральное: нельзя раскрывать, какое из полей не совпало.
	// Транспорт: HTTP 404.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи
	// либо ссылается на несуществующий аккаунт. Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenReused — подпись refresh-токена валидна, но он не совпадает с
	// текущим хранимым значением: предъявлен повторно после ротации либо
	// сессия отозвана. Наружу отдаётся тот же 401, что и ErrInvalidToken,
	// но в логах различается — это сигнал возможной компрометации.
	ErrTokenReused = errors.New("refresh token expired or reused")

	// ErrAccountTaken — username или email уже заняты. Транспорт: HTTP 409.
	ErrAccountTaken = errors.New("username or email already taken")

	// ErrInvalidEmail — email имеет некорректный формат. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidUsername — username не проходит политику валидации. Транспорт: HTTP 400.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности. Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrEmptyField — обязательное поле запроса пустое. Транспорт: HTTP 400.
	ErrEmptyField = errors.New("required field is empty")

	// ErrMediaUnavailable — медиа-хранилище не сконфигурировано. Транспорт: HTTP 503.
	ErrMediaUnavailable = errors.New("media storage is not configured")

	// ErrInvalidMedia — тип или размер загружаемого файла не проходит
	// ограничения, либо ключ некорректен. Транспорт: HTTP 400.
	ErrInvalidMedia = errors.New("invalid media upload")
)

// Service описывает бизнес-логику accounts-сервиса.
type Service struct {
	storage   storage.Storage
	media     storage.MediaStorage // может быть nil, если S3 не сконфигурирован
	cfg       config.AuthConfig
	icache    cache.IdentityCache // может быть nil, если кэш не сконфигурирован
	icacheTTL time.Duration

	// hashSem ограничивает число одновременных bcrypt-вызовов: хэширование
	// CPU-bound, и без ограничения всплеск логинов вытесняет все остальные
	// горутины с процессора.
	hashSem *semaphore.Weighted
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		hashSem: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// SetIdentityCache устанавливает кэш аккаунтов для шлюза авторизации (опционально).
func (s *Service) SetIdentityCache(c cache.IdentityCache, ttl time.Duration) {
	s.icache = c
	s.icacheTTL = ttl
}

// SetMediaStorage устанавливает медиа-хранилище presigned-загрузок (опционально).
func (s *Service) SetMediaStorage(m storage.MediaStorage) {
	s.media = m
}
