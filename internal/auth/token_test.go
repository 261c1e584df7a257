package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/logist-zp/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	parser := NewParser("secret")

	token, err := parser.Issue(42, model.RoleDispatcher, time.Hour)
	require.NoError(t, err)

	principal, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.Principal{UserID: 42, Role: model.RoleDispatcher}, principal)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := NewParser("other").Issue(1, model.RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = NewParser("secret").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	parser := NewParser("secret")
	token, err := parser.Issue(1, model.RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	claims := Claims{
		Role: "driver",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewParser("secret").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueRejectsInvalidRole(t *testing.T) {
	_, err := NewParser("secret").Issue(1, "guest", time.Hour)
	assert.Error(t, err)
}
