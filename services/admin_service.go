package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voltstriker/scrimbot/database"
	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

type AdminService interface {
	// Resolve проверяет право администратора для пользователя: сначала
	// персональный грант, затем гранты ролей сервера. Результат никогда не
	// кешируется — отзыв права действует со следующей команды.
	Resolve(ctx context.Context, discordUserID, discordServerID string, roleIDs []string) (*models.AdminGrant, error)

	AddUserAdmin(ctx context.Context, discordUserID string, grantedByUserID int) (*models.AdminGrant, error)
	AddRoleAdmin(ctx context.Context, discordServerID, discordRoleID string, grantedByUserID int) (*models.AdminGrant, error)
	RemoveAdmin(ctx context.Context, grantID int) error
	ListAdmins(ctx context.Context, discordServerID string) ([]*models.AdminGrant, error)

	// ResetDatabase сбрасывает все таблицы (кроме журнала) и пересоздаёт
	// схему. Возвращает число удалённых таблиц.
	ResetDatabase(ctx context.Context) (int, error)
	TableExists(ctx context.Context, table string) (bool, error)
}

type adminService struct {
	adminRepo repositories.AdminRepository
	engine    *database.Engine
	db        *sql.DB
	logger    *slog.Logger
}

func NewAdminService(adminRepo repositories.AdminRepository, engine *database.Engine, db *sql.DB, logger *slog.Logger) AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminService{
		adminRepo: adminRepo,
		engine:    engine,
		db:        db,
		logger:    logger,
	}
}

func (s *adminService) Resolve(ctx context.Context, discordUserID, discordServerID string, roleIDs []string) (*models.AdminGrant, error) {
	grant, err := s.adminRepo.GetByUser(ctx, discordUserID)
	if err == nil {
		return grant, nil
	}
	if !errors.Is(err, repositories.ErrAdminGrantNotFound) {
		return nil, fmt.Errorf("failed to resolve user grant: %w", err)
	}

	for _, roleID := range roleIDs {
		grant, err := s.adminRepo.GetByServerAndRole(ctx, discordServerID, roleID)
		if err == nil {
			return grant, nil
		}
		if !errors.Is(err, repositories.ErrAdminGrantNotFound) {
			return nil, fmt.Errorf("failed to resolve role grant: %w", err)
		}
	}
	return nil, ErrNotAuthorized
}

func (s *adminService) AddUserAdmin(ctx context.Context, discordUserID string, grantedByUserID int) (*models.AdminGrant, error) {
	if discordUserID == "" {
		return nil, fmt.Errorf("%w: discord user id is required", ErrValidationFailed)
	}

	if existing, err := s.adminRepo.GetByUser(ctx, discordUserID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repositories.ErrAdminGrantNotFound) {
		return nil, fmt.Errorf("failed to check existing grant: %w", err)
	}

	grant := &models.AdminGrant{
		Scope:         models.AdminScopeUser,
		DiscordUserID: discordUserID,
		CreatedBy:     grantedByUserID,
	}
	if err := s.adminRepo.Save(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to save admin grant: %w", err)
	}
	s.logger.Info("admin grant added",
		slog.String("scope", string(grant.Scope)),
		slog.String("discord_user_id", discordUserID))
	return grant, nil
}

func (s *adminService) AddRoleAdmin(ctx context.Context, discordServerID, discordRoleID string, grantedByUserID int) (*models.AdminGrant, error) {
	if discordServerID == "" || discordRoleID == "" {
		return nil, fmt.Errorf("%w: discord server and role ids are required", ErrValidationFailed)
	}

	if existing, err := s.adminRepo.GetByServerAndRole(ctx, discordServerID, discordRoleID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repositories.ErrAdminGrantNotFound) {
		return nil, fmt.Errorf("failed to check existing grant: %w", err)
	}

	grant := &models.AdminGrant{
		Scope:           models.AdminScopeRole,
		DiscordServerID: discordServerID,
		DiscordRoleID:   discordRoleID,
		CreatedBy:       grantedByUserID,
	}
	if err := s.adminRepo.Save(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to save admin grant: %w", err)
	}
	s.logger.Info("admin grant added",
		slog.String("scope", string(grant.Scope)),
		slog.String("discord_server_id", discordServerID),
		slog.String("discord_role_id", discordRoleID))
	return grant, nil
}

func (s *adminService) RemoveAdmin(ctx context.Context, grantID int) error {
	affected, err := s.adminRepo.Delete(ctx, grantID)
	if err != nil {
		return fmt.Errorf("failed to remove admin grant %d: %w", grantID, err)
	}
	if affected == 0 {
		return ErrGrantNotFound
	}
	s.logger.Info("admin grant removed", slog.Int("grant_id", grantID))
	return nil
}

func (s *adminService) ListAdmins(ctx context.Context, discordServerID string) ([]*models.AdminGrant, error) {
	grants, err := s.adminRepo.List(ctx, discordServerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin grants: %w", err)
	}
	return grants, nil
}

func (s *adminService) ResetDatabase(ctx context.Context) (int, error) {
	dropped, err := s.engine.DropAllTables(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to drop tables: %w", err)
	}
	if err := database.InitSchema(ctx, s.db); err != nil {
		return dropped, fmt.Errorf("failed to recreate schema: %w", err)
	}
	s.logger.Warn("database reset", slog.Int("tables_dropped", dropped))
	return dropped, nil
}

func (s *adminService) TableExists(ctx context.Context, table string) (bool, error) {
	return s.engine.TableExists(ctx, table)
}
