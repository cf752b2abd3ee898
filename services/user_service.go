package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

type UserService interface {
	// GetOrCreateByDiscordID возвращает пользователя по snowflake, при
	// необходимости создавая запись. Имя обновляется, если изменилось.
	GetOrCreateByDiscordID(ctx context.Context, discordID, displayName string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetOrCreateByDiscordID(ctx context.Context, discordID, displayName string) (*models.User, error) {
	if discordID == "" {
		return nil, fmt.Errorf("%w: discord id is empty", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err == nil {
		if displayName != "" && user.DisplayName != displayName {
			user.DisplayName = displayName
			if err := s.userRepo.Save(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to refresh display name for user %d: %w", user.ID, err)
			}
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", discordID, err)
	}

	user = &models.User{
		DiscordID:   discordID,
		DisplayName: displayName,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Параллельный вызов мог создать пользователя первым.
		if errors.Is(err, repositories.ErrUserConflict) {
			return s.userRepo.GetByDiscordID(ctx, discordID)
		}
		return nil, fmt.Errorf("failed to create user %s: %w", discordID, err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", discordID, err)
	}
	return user, nil
}
