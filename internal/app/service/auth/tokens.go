package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/fatflowers/gymdesk/pkg/tool"
	"github.com/fatflowers/gymdesk/pkg/types"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	issuer           = "gymdesk"
)

// Claims is the payload of both token kinds. Refresh tokens carry only the
// subject; the role is re-read from the user row on rotation.
type Claims struct {
	Role      types.Role `json:"role,omitempty"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name,omitempty"`
	TokenType string     `json:"typ"`
	jwt.StandardClaims
}

func (c *Claims) UserID() string { return c.Subject }

var errTokenType = errors.New("unexpected token type")

func sign(claims *Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func newClaims(userID, tokenType string, issuedAt time.Time, ttl time.Duration) *Claims {
	return &Claims{
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        tool.GenerateUUIDV7(),
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(ttl).Unix(),
		},
	}
}

func parse(token, secret, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType || claims.Subject == "" {
		return nil, errTokenType
	}
	return claims, nil
}

// hashToken is the lookup key of a stored refresh token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
