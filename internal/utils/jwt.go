package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("JWT_SECRET is not configured")

// Claims mirrors the principal carried by every authenticated request.
// HospitalID is the tenant: the doctor's own id, or the employer of a
// receptionist.
type Claims struct {
	UserID        uint   `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	HospitalID    uint   `json:"hospitalId"`
	AcceptedTAndC bool   `json:"acceptedTAndC,omitempty"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT signs claims with HS256 and the configured expiry.
func (t *TokenIssuer) GenerateJWT(claims Claims) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := t.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) ValidateJWT(tokenStr string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
