package redirect

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrStateInvalid is returned for expired, tampered, or foreign state tokens.
var ErrStateInvalid = errors.New("invalid redirect state")

const issuer = "routegate"

// Config controls state token signing.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Leeway time.Duration
}

// Manager signs and verifies the return-to state carried through the login
// redirect, so a denied navigation can land back on its original destination
// without trusting a raw query parameter.
type Manager struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

type stateClaims struct {
	Location string `json:"loc"`
	jwt.RegisteredClaims
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("redirect state secret must be >= 32 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("redirect state TTL must be > 0")
	}
	if cfg.Leeway < 0 {
		return nil, errors.New("redirect state leeway must be >= 0")
	}

	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		leeway: cfg.Leeway,
	}, nil
}

// Sign wraps the original destination in a short-lived HS256 token.
func (m *Manager) Sign(location string) (string, error) {
	now := time.Now()

	claims := stateClaims{
		Location: location,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies a state token and returns the original destination.
func (m *Manager) Parse(state string) (string, error) {
	claims := &stateClaims{}

	token, err := jwt.ParseWithClaims(
		state,
		claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(m.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrStateInvalid
	}
	if claims.Location == "" {
		return "", ErrStateInvalid
	}

	return claims.Location, nil
}
