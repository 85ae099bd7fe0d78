package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-blog-api/internal/model"
	"go-blog-api/internal/validation"
)

const bcryptCost = 12

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	req.Username = strings.TrimSpace(req.Username)

	if err := validation.Struct(req); err != nil {
		return model.User{}, err
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, model.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user.ID, err = s.users.Create(ctx, user)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (model.UserProfile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserProfile{}, err
	}
	return user.Profile(), nil
}
