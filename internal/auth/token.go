package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/logist-zp/internal/model"
)

var signingMethod = jwt.SigningMethodHS256

var ErrInvalidToken = errors.New("invalid token")

// Claims are the access token claims. The subject carries the numeric user id.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates the token and returns the principal it was issued for.
func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		strings.TrimSpace(tokenString),
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return model.Principal{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	if !claims.Role.IsValid() {
		return model.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return model.Principal{UserID: userID, Role: claims.Role}, nil
}

// Issue signs an access token. Used by tooling and tests; login lives elsewhere.
func (p *Parser) Issue(userID int64, role model.Role, ttl time.Duration) (string, error) {
	if len(p.secret) == 0 {
		return "", fmt.Errorf("jwt secret is required")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role %q", role)
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
