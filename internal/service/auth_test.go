package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/videotube-accounts/internal/storage"
)

func mustHashPW(t *testing.T, svc *Service, pw string) string {
	t.Helper()
	h, err := svc.hashPassword(context.Background(), pw)
	require.NoError(t, err)
	return h
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	pw := "Secret123!"
	account := testAccount()
	account.PasswordHash = mustHashPW(t, svc, pw)

	st.EXPECT().AccountByLogin(gomock.Any(), "ada").Return(account, nil)
	st.EXPECT().SetRefreshToken(gomock.Any(), account.ID, gomock.Any()).Return(nil)

	pair, view, err := svc.Login(ctx, "  Ada ", pw)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.WithinDuration(t, time.Now().Add(svc.cfg.AccessTokenTTL), pair.AccessExpiresAt, 2*time.Second)

	require.Equal(t, account.ID, view.ID)
	require.Equal(t, account.Username, view.Username)
}

func TestLogin_EmptyLogin(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.Login(context.Background(), "   ", "Secret123!")
	require.ErrorIs(t, err, ErrEmptyField)
}

func TestLogin_EmptyPassword(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.Login(context.Background(), "ada", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_AccountNotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().AccountByLogin(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "Secret123!")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount()
	account.PasswordHash = mustHashPW(t, svc, "Secret123!")

	st.EXPECT().AccountByLogin(gomock.Any(), "ada").Return(account, nil)

	_, _, err := svc.Login(context.Background(), "ada", "Wrong456?")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StorageErrorPropagated(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().AccountByLogin(gomock.Any(), "ada").Return(nil, errors.New("db down"))

	_, _, err := svc.Login(context.Background(), "ada", "Secret123!")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_OK_WithRotation(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	account := testAccount()

	rt, err := svc.generateRefreshToken(ctx, account.ID, time.Now().UTC())
	require.NoError(t, err)
	currentHash := refreshHash(rt)
	account.RefreshTokenHash = &currentHash

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)
	st.EXPECT().RotateRefreshToken(gomock.Any(), account.ID, currentHash, gomock.Any()).Return(true, nil)

	pair, uid, err := svc.Refresh(ctx, rt)
	require.NoError(t, err)
	require.Equal(t, account.ID, uid)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	// Новый refresh-токен отличается от предъявленного.
	require.NotEqual(t, rt, pair.RefreshToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_AccountGone(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	id := uuid.New()
	rt, err := svc.generateRefreshToken(context.Background(), id, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().AccountByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	_, _, err = svc.Refresh(context.Background(), rt)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Предъявление токена, не совпадающего с хранимым — повторное использование
// после ротации либо отозванная сессия.
func TestRefresh_ReuseDetected(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount()
	stale, err := svc.generateRefreshToken(context.Background(), account.ID, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	otherHash := refreshHash("some-newer-token")
	account.RefreshTokenHash = &otherHash

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	_, _, err = svc.Refresh(context.Background(), stale)
	require.ErrorIs(t, err, ErrTokenReused)
}

func TestRefresh_NoStoredSession(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount() // RefreshTokenHash == nil: сессии нет (logout).
	rt, err := svc.generateRefreshToken(context.Background(), account.ID, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	_, _, err = svc.Refresh(context.Background(), rt)
	require.ErrorIs(t, err, ErrTokenReused)
}

// Гонка двух refresh-ов: CAS в хранилище не прошёл -> второй получает
// ErrTokenReused, а не вторую валидную пару.
func TestRefresh_LostRace(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount()
	rt, err := svc.generateRefreshToken(context.Background(), account.ID, time.Now().UTC())
	require.NoError(t, err)
	currentHash := refreshHash(rt)
	account.RefreshTokenHash = &currentHash

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)
	st.EXPECT().RotateRefreshToken(gomock.Any(), account.ID, currentHash, gomock.Any()).Return(false, nil)

	_, _, err = svc.Refresh(context.Background(), rt)
	require.ErrorIs(t, err, ErrTokenReused)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	cfg := svc.cfg
	cfg.RefreshTokenTTL = -time.Minute
	svc.cfg = cfg

	rt, err := svc.generateRefreshToken(context.Background(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), rt)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestLogout_OKAndIdempotent(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	id := uuid.New()

	// Clear идемпотентен в хранилище, сервис зовёт его безусловно.
	st.EXPECT().ClearRefreshToken(gomock.Any(), id).Return(nil).Times(2)

	require.NoError(t, svc.Logout(context.Background(), id))
	require.NoError(t, svc.Logout(context.Background(), id))
}

func TestLogout_StorageErrorPropagated(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	id := uuid.New()
	st.EXPECT().ClearRefreshToken(gomock.Any(), id).Return(errors.New("db down"))

	require.Error(t, svc.Logout(context.Background(), id))
}

func TestChangePassword_OK_RevokesSession(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	old := "Secret123!"
	account := testAccount()
	account.PasswordHash = mustHashPW(t, svc, old)

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)
	// UpdatePasswordHash в хранилище тем же запросом сбрасывает refresh-токен.
	st.EXPECT().UpdatePasswordHash(gomock.Any(), account.ID, gomock.Any()).Return(nil)

	require.NoError(t, svc.ChangePassword(context.Background(), account.ID, old, "Another456?"))
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount()
	account.PasswordHash = mustHashPW(t, svc, "Secret123!")

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	err := svc.ChangePassword(context.Background(), account.ID, "Wrong456?", "Another456?")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	old := "Secret123!"
	account := testAccount()
	account.PasswordHash = mustHashPW(t, svc, old)

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	err := svc.ChangePassword(context.Background(), account.ID, old, "weak")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestChangePassword_AccountNotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	id := uuid.New()
	st.EXPECT().AccountByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	err := svc.ChangePassword(context.Background(), id, "Secret123!", "Another456?")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticateAccess_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount()
	at, err := svc.generateAccessToken(context.Background(), account, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	view, err := svc.AuthenticateAccess(context.Background(), at)
	require.NoError(t, err)
	require.Equal(t, account.ID, view.ID)
	require.Equal(t, account.Email, view.Email)
}

func TestAuthenticateAccess_AccountDeleted(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := testAccount()
	at, err := svc.generateAccessToken(context.Background(), account, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(nil, storage.ErrNotFound)

	_, err = svc.AuthenticateAccess(context.Background(), at)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateAccess_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	cfg := svc.cfg
	cfg.AccessTokenTTL = -time.Minute
	svc.cfg = cfg

	at, err := svc.generateAccessToken(context.Background(), testAccount(), time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.AuthenticateAccess(context.Background(), at)
	require.ErrorIs(t, err, ErrTokenExpired)
}
