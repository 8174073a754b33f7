package util

import (
	"skillnest_backend/internal/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *model.User {
	u := &model.User{Email: "amy@example.com", Role: model.Teacher}
	u.ID = 7
	return u
}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestParseJWT_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "another-secret-another-secret-xx")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	assert.Nil(t, claims)
}

func TestParseJWT_RejectsExpired(t *testing.T) {
	token, err := GenerateJWT(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestParseJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: 7,
		Role:   model.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{"HS512": hs512, "none": none} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseJWT(token, testSecret)
			assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
			assert.Nil(t, got)
		})
	}
}

func TestParseJWT_RejectsForeignIssuerAndMissingExpiry(t *testing.T) {
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseJWT(foreign, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	forever, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseJWT(forever, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}
