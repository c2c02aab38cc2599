package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/domain/user"
	"github.com/deskhub/deskhub-api/internal/pkg/jwt"
	"github.com/deskhub/deskhub-api/internal/pkg/password"
)

// DefaultScopes is the capability set granted to every issued token.
// Endpoints check individual scopes; tokens for integrations may be
// issued with a narrower set.
var DefaultScopes = []string{
	"office.create",
	"office.update",
	"office.delete",
	"reservations.make",
	"reservations.show",
	"reservations.cancel",
}

// Service handles credential issuance. The rest of the system only ever
// consumes the resulting user id and scope set from the request context.
type Service struct {
	users user.Repository
	jwt   *jwt.Service
}

// NewService creates auth service
func NewService(users user.Repository, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService}
}

// Register creates an account and issues a token
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.issue(u)
}

// Login verifies credentials and issues a token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *Service) issue(u *user.User) (*TokenResponse, error) {
	token, err := s.jwt.GenerateAccessToken(u.ID, u.IsAdmin, DefaultScopes)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwt.GetAccessTTL() / time.Second),
		UserID:      u.ID,
	}, nil
}
