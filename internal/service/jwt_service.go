package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"noteful-api/internal/domain"
)

// JWTService emite y valida tokens JWT firmados con HS256.
// Los tokens son autocontenidos: no hay lista de revocacion.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Claims es el payload del token: el usuario embebido mas los claims registrados.
type Claims struct {
	User domain.UserClaim `json:"user"`
	jwt.RegisteredClaims
}

var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

const defaultTokenTTL = 7 * 24 * time.Hour

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj; usado en tests de expiracion.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token con el claim y subject dados, expirando en now + TTL.
func (s *JWTService) Issue(claim domain.UserClaim, subject string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalidSignature
	}
	if strings.TrimSpace(subject) == "" {
		subject = claim.Username
	}
	now := s.now().UTC()
	claims := Claims{
		User: claim,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida firma, algoritmo y expiracion y devuelve el claim embebido sin tocarlo.
func (s *JWTService) Verify(tokenString string) (domain.UserClaim, error) {
	if len(s.secret) == 0 {
		return domain.UserClaim{}, ErrTokenInvalidSignature
	}
	if strings.TrimSpace(tokenString) == "" {
		return domain.UserClaim{}, ErrTokenMalformed
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return domain.UserClaim{}, err
	}
	// Firmado con nuestro secreto pero sin claim "user": no lo emitio Issue.
	if strings.TrimSpace(claims.User.Username) == "" {
		return domain.UserClaim{}, ErrTokenMalformed
	}
	return claims.User, nil
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrTokenInvalidSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	return claims, nil
}
