package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordlegame-go/internal/dependencies/mocks"
)

const testSecret = "test-secret"

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(Config{Secret: testSecret, PasswordHash: string(hash), TokenTTL: time.Hour}, s.clock)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	token, err := s.service.Login("hunter22")
	s.Require().NoError(err)

	s.NotEmpty(token.Value)
	s.Equal(s.clock.Now().Add(time.Hour), token.ExpiresAt)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, err := s.service.Login("hunter23")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginDisabledWithoutConfig() {
	svc := New(Config{}, s.clock)
	s.False(svc.Enabled())

	_, err := svc.Login("hunter22")
	s.ErrorIs(err, ErrAuthDisabled)
}

// Validate tests

func (s *ServiceSuite) TestValidateAcceptsIssuedToken() {
	token, err := s.service.Login("hunter22")
	s.Require().NoError(err)

	claims, err := s.service.Validate(token.Value)
	s.Require().NoError(err)
	s.Equal(RoleAdmin, claims.Role)
	s.Equal(issuer, claims.Issuer)
}

func (s *ServiceSuite) TestValidateRejectsExpiredToken() {
	token, err := s.service.Login("hunter22")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.service.Validate(token.Value)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateRejectsOtherSecret() {
	token, err := s.service.Login("hunter22")
	s.Require().NoError(err)

	other := New(Config{Secret: "other", PasswordHash: s.service.cfg.PasswordHash}, s.clock)
	_, err = other.Validate(token.Value)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateRejectsGarbage() {
	_, err := s.service.Validate("not.a.token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateRejectsWrongRole() {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "player",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	s.Require().NoError(err)

	_, err = s.service.Validate(signed)
	s.ErrorIs(err, ErrInvalidToken)
}

// HashPassword tests

func (s *ServiceSuite) TestHashPasswordRoundTrips() {
	hash, err := HashPassword("letmein")
	s.Require().NoError(err)
	s.NotEqual("letmein", hash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(hash), []byte("letmein")))
}

func (s *ServiceSuite) TestHashPasswordRejectsEmpty() {
	_, err := HashPassword("")
	s.Error(err)
}
