package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordlegame-go/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAuthDisabled       = errors.New("admin login is not configured")
)

// RoleAdmin is the only role tokens are issued for
const RoleAdmin = "admin"

const issuer = "wordlegame"

// Claims are the JWT claims carried by an admin token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed admin token and its expiry
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs tokens with HS256
	Secret string
	// PasswordHash is the bcrypt hash of the admin password
	PasswordHash string
	TokenTTL     time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 12 * time.Hour,
	}
}

// Service issues and checks admin tokens
type Service struct {
	cfg   Config
	clock clock.Clock
}

// New creates a new auth Service
func New(cfg Config, clk clock.Clock) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{cfg: cfg, clock: clk}
}

// Enabled reports whether both a signing secret and a password hash are set
func (s *Service) Enabled() bool {
	return s.cfg.Secret != "" && s.cfg.PasswordHash != ""
}

// Login checks the admin password and returns a fresh token
func (s *Service) Login(password string) (Token, error) {
	if !s.Enabled() {
		return Token{}, ErrAuthDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	now := s.clock.Now()
	exp := now.Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Validate parses a token and checks its signature, expiry and role
func (s *Service) Validate(value string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash to put in the admin config
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
