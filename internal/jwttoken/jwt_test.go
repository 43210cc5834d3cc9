package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "machsafe/pkg/domain-errors"
)

// JWTServiceSuite tests token generation and validation round trips.
//
// Justification: the auth middleware trusts these claims to stamp the actor
// and tenant onto every request; a validation gap here bypasses tenancy.
type JWTServiceSuite struct {
	suite.Suite
	service *JWTService
}

func TestJWTServiceSuite(t *testing.T) {
	suite.Run(t, new(JWTServiceSuite))
}

func (s *JWTServiceSuite) SetupTest() {
	s.service = NewJWTService("test-signing-key", "machsafe", "machsafe-ui")
}

func (s *JWTServiceSuite) TestRoundTrip() {
	userID := uuid.New()
	tenantID := uuid.New()

	token, err := s.service.GenerateAccessToken(userID, "ana@x.com", tenantID, time.Hour)
	s.Require().NoError(err)
	s.NotEmpty(token)

	claims, err := s.service.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(userID.String(), claims.UserID)
	s.Equal("ana@x.com", claims.Email)
	s.Equal(tenantID.String(), claims.TenantID)
}

func (s *JWTServiceSuite) TestExpiredToken() {
	token, err := s.service.GenerateAccessToken(uuid.New(), "ana@x.com", uuid.New(), -time.Minute)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *JWTServiceSuite) TestWrongKey() {
	other := NewJWTService("other-key", "machsafe", "machsafe-ui")
	token, err := other.GenerateAccessToken(uuid.New(), "ana@x.com", uuid.New(), time.Hour)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.Error(err)
}
