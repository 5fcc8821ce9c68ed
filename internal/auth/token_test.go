package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTMaker_CreateAndVerifyToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecret, 15*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  int64
		isAdmin bool
	}{
		{name: "regular user", userID: 42, isAdmin: false},
		{name: "admin user", userID: 1, isAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.CreateToken(tt.userID, tt.isAdmin)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.VerifyToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.isAdmin, claims.IsAdmin)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_VerifyToken_Invalid(t *testing.T) {
	maker, err := NewJWTMaker(testSecret, 15*time.Minute)
	require.NoError(t, err)

	otherMaker, err := NewJWTMaker("ffffffffffffffffffffffffffffffff", 15*time.Minute)
	require.NoError(t, err)

	wrongKeyToken, err := otherMaker.CreateToken(42, false)
	require.NoError(t, err)

	expiredMaker, err := NewJWTMaker(testSecret, -time.Hour)
	require.NoError(t, err)
	expiredToken, err := expiredMaker.CreateToken(42, false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty token", token: "", wantErr: ErrInvalidToken},
		{name: "malformed token", token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "wrong signing key", token: wrongKeyToken, wantErr: ErrInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.VerifyToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestNewJWTMaker_ShortSecret(t *testing.T) {
	_, err := NewJWTMaker("short", time.Minute)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.NoError(t, CheckPassword("s3cret-password", hash))
	assert.ErrorIs(t, CheckPassword("wrong-password", hash), ErrWrongPassword)
}
