package utils

import (
	"testing"
	"time"

	"meganote_dashboard/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = model.User{ID: "u1", Username: "alice", Role: model.RoleAdmin}

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1)

	tokenString, err := jwtUtil.GenerateToken(testUser)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "u1", claims.UserInfo.ID)
	assert.Equal(t, model.RoleAdmin, claims.UserInfo.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1)

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -1)

	tokenString, _ := jwtUtil.GenerateToken(testUser)

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	tokenString, _ := NewJWTUtil("secret1", 1).GenerateToken(testUser)

	_, err := NewJWTUtil("secret2", 1).ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 1)
	claims := &TokenClaims{
		UserInfo: testUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}

func TestDecodeToken_IgnoresSignature(t *testing.T) {
	tokenString, err := NewJWTUtil("some-backend-secret", 1).GenerateToken(testUser)
	require.NoError(t, err)

	claims, err := DecodeToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserInfo.Username)
	assert.Equal(t, "u1", claims.UserInfo.ID)
}

func TestDecodeToken_Errors(t *testing.T) {
	_, err := DecodeToken("")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = DecodeToken("not-a-jwt")
	assert.Error(t, err)
}

func TestIsValidToken(t *testing.T) {
	now := time.Now()
	mint := func(exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &TokenClaims{
			UserInfo:         testUser,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		})
		s, err := token.SignedString([]byte("k"))
		require.NoError(t, err)
		return s
	}

	assert.True(t, IsValidToken(mint(now.Add(time.Hour)), now))
	assert.False(t, IsValidToken(mint(now.Add(-time.Hour)), now))
	assert.False(t, IsValidToken(mint(now.Add(time.Hour)), now.Add(2*time.Hour)))
	assert.False(t, IsValidToken("", now))
	assert.False(t, IsValidToken("garbage", now))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &TokenClaims{UserInfo: testUser}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.False(t, IsValidToken(noExp, now), "token without exp is never usable")
}
