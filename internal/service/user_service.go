package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// validate is the same rule set gin binding tags use in the gateway.
var validate = validator.New()

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Validation("name must not be blank")
	}
	return nil
}

// validateEmail accepts a bare address only, no display name.
func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.Validation("email must not be blank")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.Validation("email %q is not valid", email)
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := validateName(user.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(user.Email); err != nil {
		return nil, err
	}

	created := &models.User{Name: user.Name, Email: user.Email}
	if err := s.repo.CreateUser(ctx, created); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", created.ID).Msg("user created")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// UpdateUser applies only the supplied fields.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
