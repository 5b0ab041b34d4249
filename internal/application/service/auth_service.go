package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer creates signed bearer credentials for authenticated users
type TokenIssuer interface {
	Issue(userID int64, role entity.Role) (string, error)
}

// AuthService authenticates users and issues bearer tokens
type AuthService interface {
	// Login verifies the credentials and returns a signed token plus the
	// account. A bad username and a bad password are indistinguishable
	// to the caller.
	Login(ctx context.Context, username, password string) (string, *entity.User, error)
}

type authServiceImpl struct {
	userRepo port.UserRepository
	issuer   TokenIssuer
	logger   Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo port.UserRepository, issuer TokenIssuer, logger Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

func (s *authServiceImpl) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	if username == "" || password == "" {
		return "", nil, apperr.New(apperr.KindValidation, "username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindUpstream, "get user", err)
	}
	if user == nil {
		return "", nil, apperr.New(apperr.KindAuthorization, "invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Login failed", "username", username)
		return "", nil, apperr.New(apperr.KindAuthorization, "invalid username or password")
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindUpstream, "issue token", err)
	}

	s.logger.Info("Login succeeded", "user_id", user.ID, "role", string(user.Role))
	return token, user, nil
}
