package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// JWTTokenService issues and validates HS256-signed session tokens. It holds
// no state beyond the signing secret and is safe for concurrent use.
type JWTTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTTokenService(secret string, ttl time.Duration) *JWTTokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTTokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token carrying subject, role set and expiry for the user.
func (s *JWTTokenService) Issue(user *domain.User) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.Username,
		"roles": user.RoleNames(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	if user.EmployeeID != "" {
		claims["employee_id"] = user.EmployeeID
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate parses and verifies a token, mapping parser failures onto the
// domain taxonomy so expiry stays distinguishable from tampering.
func (s *JWTTokenService) Validate(token string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenSignatureInvalid
		default:
			return nil, domain.ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}

	return decodeClaims(claims)
}

func decodeClaims(claims jwt.MapClaims) (*ports.TokenClaims, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrTokenMalformed
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrTokenMalformed
	}

	out := &ports.TokenClaims{Subject: sub, ExpiresAt: exp.Time}

	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if name, ok := r.(string); ok {
				out.Roles = append(out.Roles, name)
			}
		}
	}
	if id, ok := claims["employee_id"].(string); ok {
		out.EmployeeID = id
	}

	return out, nil
}
