package service

import (
	"context"
	"errors"
	"strings"

	"polling-backend/errs"
	"polling-backend/models"
	"polling-backend/repository"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UserService is the identity gateway: account creation, credential
// verification and user resolution. The poll engine consumes it only for
// id and role lookups.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*UserView, error)
	Login(ctx context.Context, email, password string) (*UserView, error)
	GetUser(ctx context.Context, userID uint) (*UserView, error)
	UpdateProfile(ctx context.Context, userID uint, username, email string) (*UserView, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*UserView, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" {
		return nil, errs.Validation("Username is required")
	}
	if email == "" {
		return nil, errs.Validation("Email is required")
	}
	if len(input.Password) < 8 {
		return nil, errs.Validation("Password must be at least 8 characters")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Business("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Concurrent signups with the same email resolve at the unique
		// index; the loser sees the same error as the checked path.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, errs.Business("Email already registered")
		}
		return nil, err
	}

	return toUserView(user), nil
}

// Login verifies credentials. The error never reveals which part was
// wrong.
func (s *userService) Login(ctx context.Context, email, password string) (*UserView, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.Business("Invalid email or password")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errs.Business("Invalid email or password")
	}

	return toUserView(user), nil
}

func (s *userService) GetUser(ctx context.Context, userID uint) (*UserView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("User not found with id %d", userID)
		}
		return nil, err
	}
	return toUserView(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, username, email string) (*UserView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("User not found with id %d", userID)
		}
		return nil, err
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, errs.Validation("Username and email are required")
	}

	if email != user.Email {
		exists, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errs.Business("Email already taken")
		}
	}

	user.Username = username
	user.Email = email
	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, errs.Business("Email already taken")
		}
		return nil, err
	}

	return toUserView(user), nil
}

func toUserView(user *models.User) *UserView {
	return &UserView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
