package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store/memory"
)

func newProvider(t *testing.T) *JWTProvider {
	t.Helper()
	st := memory.New()
	t.Cleanup(func() { _ = st.Close() })
	return NewJWTProvider(st, "test-secret", time.Hour)
}

func TestRegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	user, err := p.Register(ctx, "Ops@Example.com", "hunter2", "Night Shift")
	require.NoError(t, err)
	assert.NotEmpty(t, user.UID)
	assert.Equal(t, "ops@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	token, logged, err := p.Login(ctx, "ops@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.UID, logged.UID)

	verified, err := p.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.UID, verified.UID)
	assert.Empty(t, verified.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Register(ctx, "ops@example.com", "hunter2", "First")
	require.NoError(t, err)

	_, err = p.Register(ctx, "OPS@example.com", "hunter3", "Second")
	assert.True(t, errors.IsConflict(err), "expected conflict, got %v", err)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Register(ctx, "not-an-email", "hunter2", "X")
	assert.True(t, errors.IsValidation(err))

	_, err = p.Register(ctx, "ops@example.com", "short", "X")
	assert.True(t, errors.IsValidation(err))

	_, err = p.Register(ctx, "ops@example.com", "hunter2", "  ")
	assert.True(t, errors.IsValidation(err))
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Register(ctx, "ops@example.com", "hunter2", "X")
	require.NoError(t, err)

	_, _, err = p.Login(ctx, "ops@example.com", "wrong")
	require.Error(t, err)
	// Unknown account and bad password are indistinguishable to the caller.
	_, _, err2 := p.Login(ctx, "nobody@example.com", "hunter2")
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Register(ctx, "ops@example.com", "hunter2", "X")
	require.NoError(t, err)
	token, _, err := p.Login(ctx, "ops@example.com", "hunter2")
	require.NoError(t, err)

	require.NoError(t, p.Logout(ctx, token))
	_, err = p.Verify(ctx, token)
	assert.Error(t, err)

	// A second logout of the same token stays harmless.
	assert.NoError(t, p.Logout(ctx, token))
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	_, err := p.Register(ctx, "ops@example.com", "hunter2", "X")
	require.NoError(t, err)
	token, _, err := p.Login(ctx, "ops@example.com", "hunter2")
	require.NoError(t, err)

	other := NewJWTProvider(memory.New(), "different-secret", time.Hour)
	_, err = other.Verify(ctx, token)
	assert.Error(t, err)
}

func TestUpdateEmailMovesIndex(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	user, err := p.Register(ctx, "old@example.com", "hunter2", "X")
	require.NoError(t, err)

	require.NoError(t, p.UpdateEmail(ctx, user.UID, "new@example.com"))

	// Old address is free again, new one is taken.
	_, err = p.Register(ctx, "old@example.com", "hunter2", "Y")
	assert.NoError(t, err)
	_, err = p.Register(ctx, "new@example.com", "hunter2", "Z")
	assert.True(t, errors.IsConflict(err))

	_, logged, err := p.Login(ctx, "new@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.UID, logged.UID)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	user, err := p.Register(ctx, "ops@example.com", "hunter2", "X")
	require.NoError(t, err)

	require.NoError(t, p.UpdatePassword(ctx, user.UID, "betterpass"))

	_, _, err = p.Login(ctx, "ops@example.com", "hunter2")
	assert.Error(t, err)
	_, _, err = p.Login(ctx, "ops@example.com", "betterpass")
	assert.NoError(t, err)
}
