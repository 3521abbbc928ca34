package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_SaltedAndVerifiable(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	pw := "Secret123!"

	h1, err := svc.hashPassword(ctx, pw)
	require.NoError(t, err)
	h2, err := svc.hashPassword(ctx, pw)
	require.NoError(t, err)

	// Соль на каждый вызов: одинаковый пароль -> разные хэши.
	require.NotEqual(t, h1, h2)

	require.True(t, svc.checkPassword(ctx, h1, pw))
	require.True(t, svc.checkPassword(ctx, h2, pw))
	require.False(t, svc.checkPassword(ctx, h1, "Secret123?"))
}

func TestCheckPassword_FailClosedOnBrokenHash(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	require.False(t, svc.checkPassword(context.Background(), "not-a-bcrypt-hash", "Secret123!"))
	require.False(t, svc.checkPassword(context.Background(), "", "Secret123!"))
}

func TestValidatePassword_Policy(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, validatePassword(""), ErrEmptyPassword)
	require.ErrorIs(t, validatePassword("Ab1"), ErrWeakPassword)
	require.ErrorIs(t, validatePassword("alllowercase1"), ErrWeakPassword)
	require.ErrorIs(t, validatePassword("NoDigitsHere"), ErrWeakPassword)
	require.ErrorIs(t, validatePassword("ALLUPPER123"), ErrWeakPassword)

	require.NoError(t, validatePassword("Secret123"))
	require.NoError(t, validatePassword("Secret123!"))
}
