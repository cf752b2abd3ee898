package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

// GameService управляет справочными данными: играми, картами и форматами
// матчей. Изменения доступны только администраторам (проверяется на уровне
// бота через AdminService.Resolve).
type GameService interface {
	AddGame(ctx context.Context, name, series string) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)

	AddMap(ctx context.Context, gameID int, name, mode string) (*models.Map, error)
	ListMaps(ctx context.Context, gameID int) ([]*models.Map, error)

	AddFormat(ctx context.Context, maxPlayers, matchCount int) (*models.MatchFormat, error)
	PermitMap(ctx context.Context, formatID, mapID int) error
}

type gameService struct {
	gameRepo repositories.GameRepository
}

func NewGameService(gameRepo repositories.GameRepository) GameService {
	return &gameService{gameRepo: gameRepo}
}

func (s *gameService) AddGame(ctx context.Context, name, series string) (*models.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrValidationFailed)
	}

	game := &models.Game{Name: name, Series: strings.TrimSpace(series)}
	if err := s.gameRepo.SaveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to add game: %w", err)
	}
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context) ([]*models.Game, error) {
	games, err := s.gameRepo.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *gameService) AddMap(ctx context.Context, gameID int, name, mode string) (*models.Map, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: map name is required", ErrValidationFailed)
	}

	if _, err := s.gameRepo.GetGameByID(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}

	m := &models.Map{Name: name, Mode: strings.TrimSpace(mode), GameID: gameID}
	if err := s.gameRepo.SaveMap(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to add map: %w", err)
	}
	return m, nil
}

func (s *gameService) ListMaps(ctx context.Context, gameID int) ([]*models.Map, error) {
	maps, err := s.gameRepo.ListMapsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps for game %d: %w", gameID, err)
	}
	return maps, nil
}

func (s *gameService) AddFormat(ctx context.Context, maxPlayers, matchCount int) (*models.MatchFormat, error) {
	if maxPlayers < 1 || matchCount < 1 {
		return nil, fmt.Errorf("%w: players and match count must be positive", ErrValidationFailed)
	}

	format := &models.MatchFormat{MaxPlayers: maxPlayers, MatchCount: matchCount}
	if err := s.gameRepo.SaveFormat(ctx, format); err != nil {
		return nil, fmt.Errorf("failed to add match format: %w", err)
	}
	return format, nil
}

func (s *gameService) PermitMap(ctx context.Context, formatID, mapID int) error {
	if _, err := s.gameRepo.GetFormatByID(ctx, formatID); err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return ErrFormatNotFound
		}
		return fmt.Errorf("failed to get match format %d: %w", formatID, err)
	}
	if _, err := s.gameRepo.GetMapByID(ctx, mapID); err != nil {
		if errors.Is(err, repositories.ErrMapNotFound) {
			return ErrMapNotFound
		}
		return fmt.Errorf("failed to get map %d: %w", mapID, err)
	}

	if err := s.gameRepo.PermitMap(ctx, &models.PermittedMap{MatchFormatID: formatID, MapID: mapID}); err != nil {
		return fmt.Errorf("failed to permit map %d for format %d: %w", mapID, formatID, err)
	}
	return nil
}
