// Package auth verifies identity tokens issued by the account service.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gitshopapp/storefront/internal/models"
)

const issuer = "storefront-accounts"

var ErrInvalidToken = errors.New("invalid identity token")

// Claims defines the identity token payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Staff bool   `json:"staff"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 bytes")
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(issuer),
		),
		now: time.Now,
	}, nil
}

// Issue signs a token for shopper valid for ttl.
func (v *Verifier) Issue(shopper models.Shopper, ttl time.Duration) (string, error) {
	if !shopper.Authenticated() {
		return "", fmt.Errorf("user id is required")
	}
	now := v.now()
	claims := &Claims{
		Email: shopper.Email,
		Staff: shopper.Staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(shopper.UserID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses token and returns the shopper it identifies.
func (v *Verifier) Verify(token string) (models.Shopper, error) {
	var claims Claims
	parsed, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Shopper{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Shopper{}, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Subject)
	}

	return models.Shopper{UserID: userID, Email: claims.Email, Staff: claims.Staff}, nil
}

// BearerToken returns the token from an Authorization header, or "".
func BearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
