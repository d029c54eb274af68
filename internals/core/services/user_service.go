package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/utils"
)

const minPasswordLength = 6

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type ProfileInput struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

type UserService struct {
	users  repository.UserRepository
	tokens *utils.TokenManager
}

func NewUserService(users repository.UserRepository, tokens *utils.TokenManager) *UserService {
	return &UserService{users: users, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*responses.AuthResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.ErrRegisterFields
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, apperr.ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken.Wrap(err)
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*responses.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err, apperr.ErrInvalidCredentials)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*responses.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &responses.AuthResponse{Token: token, User: *user}, nil
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperr.ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error) {
	fields := patch{}
	if in.Name != nil {
		if trimmed(in.Name) == "" {
			return nil, apperr.ErrRegisterFields
		}
		fields.str("name", in.Name)
	}
	fields.str("phone", in.Phone)
	fields.str("avatar_url", in.AvatarURL)

	if len(fields) > 0 {
		if err := s.users.UpdateUser(ctx, userID, fields); err != nil {
			return nil, notFound(err, apperr.ErrUserNotFound)
		}
	}
	return s.Me(ctx, userID)
}

func (s *UserService) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.ErrTokenRequired
	}
	return notFound(s.users.UpdateFCMToken(ctx, userID, token), apperr.ErrUserNotFound)
}

// Authenticate resolves a bearer token to a user id.
func (s *UserService) Authenticate(token string) (uuid.UUID, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return uuid.Nil, apperr.ErrUnauthorized.Wrap(err)
	}
	return id, nil
}
