package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages employee and admin accounts. Password hashes never
// leave this layer; read APIs return entities whose hash is not serialized.
type UserService interface {
	Create(ctx context.Context, actor *entity.User, u *entity.User, password string) error
	Update(ctx context.Context, actor *entity.User, u *entity.User, newPassword string) error
	Get(ctx context.Context, actor *entity.User, id int64) (*entity.User, error)
	List(ctx context.Context, actor *entity.User) ([]*entity.User, error)
}

type userServiceImpl struct {
	userRepo port.UserRepository
	logger   Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userServiceImpl) Create(ctx context.Context, actor *entity.User, u *entity.User, password string) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "only admins may create accounts")
	}
	if u.Username == "" || u.Name == "" {
		return apperr.New(apperr.KindValidation, "name and username are required")
	}
	if len(password) < 8 {
		return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}
	if u.Email != "" {
		if err := utils.ValidateEmail(u.Email); err != nil {
			return apperr.Wrap(apperr.KindValidation, "invalid email", err)
		}
	}
	if u.Role != entity.RoleAdmin && u.Role != entity.RoleEmployee {
		return apperr.New(apperr.KindValidation, "role must be admin or employee")
	}

	existing, err := s.userRepo.GetByUsername(ctx, u.Username)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "check username", err)
	}
	if existing != nil {
		return apperr.Newf(apperr.KindValidation, "username %q is already taken", u.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "hash password", err)
	}
	u.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, u); err != nil {
		s.logger.Error("Failed to create user", "username", u.Username, "error", err)
		return apperr.Wrap(apperr.KindUpstream, "create user", err)
	}

	s.logger.Info("User created", "user_id", u.ID, "username", u.Username, "role", string(u.Role))
	return nil
}

func (s *userServiceImpl) Update(ctx context.Context, actor *entity.User, u *entity.User, newPassword string) error {
	// Admins may edit anyone; employees only their own profile, and
	// never their role.
	if !actor.IsAdmin() && actor.ID != u.ID {
		return apperr.New(apperr.KindAuthorization, "cannot edit another user's account")
	}

	existing, err := s.userRepo.GetByID(ctx, u.ID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "get user", err)
	}
	if existing == nil {
		return apperr.Newf(apperr.KindNotFound, "user %d not found", u.ID)
	}

	if !actor.IsAdmin() {
		u.Role = existing.Role
	}
	u.Username = existing.Username // usernames are immutable
	u.PasswordHash = existing.PasswordHash

	if newPassword != "" {
		if len(newPassword) < 8 {
			return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Wrap(apperr.KindUpstream, "hash password", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		s.logger.Error("Failed to update user", "user_id", u.ID, "error", err)
		return apperr.Wrap(apperr.KindUpstream, "update user", err)
	}

	s.logger.Info("User updated", "user_id", u.ID)
	return nil
}

func (s *userServiceImpl) Get(ctx context.Context, actor *entity.User, id int64) (*entity.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, apperr.New(apperr.KindAuthorization, "cannot view another user's account")
	}
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "get user", err)
	}
	if u == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "user %d not found", id)
	}
	return u, nil
}

func (s *userServiceImpl) List(ctx context.Context, actor *entity.User) ([]*entity.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "only admins may list accounts")
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list users", err)
	}
	return users, nil
}
