package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

type LeagueService interface {
	CreateLeague(ctx context.Context, name, discordServer string, gameID, formatID, currentUserID int) (*models.League, error)
	GetLeague(ctx context.Context, leagueID int) (*models.League, error)
	ListLeagues(ctx context.Context, discordServer string) ([]*models.League, error)

	// JoinLeague — только капитан вводит команду в лигу. Повторный вход
	// идемпотентен.
	JoinLeague(ctx context.Context, leagueID, teamID, currentUserID int) error
	ListLeagueTeams(ctx context.Context, leagueID int) ([]*models.Team, error)
}

type leagueService struct {
	leagueRepo repositories.LeagueRepository
	teamRepo   repositories.TeamRepository
	gameRepo   repositories.GameRepository
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
) LeagueService {
	return &leagueService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		gameRepo:   gameRepo,
	}
}

func (s *leagueService) CreateLeague(ctx context.Context, name, discordServer string, gameID, formatID, currentUserID int) (*models.League, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: league name is required", ErrValidationFailed)
	}

	if _, err := s.gameRepo.GetGameByID(ctx, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if _, err := s.gameRepo.GetFormatByID(ctx, formatID); err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, ErrFormatNotFound
		}
		return nil, fmt.Errorf("failed to get match format %d: %w", formatID, err)
	}

	league := &models.League{
		Name:          name,
		GameID:        gameID,
		MatchFormatID: formatID,
		DiscordServer: discordServer,
		CreatedBy:     currentUserID,
	}
	if err := s.leagueRepo.Save(ctx, league); err != nil {
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

func (s *leagueService) GetLeague(ctx context.Context, leagueID int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	return league, nil
}

func (s *leagueService) ListLeagues(ctx context.Context, discordServer string) ([]*models.League, error) {
	leagues, err := s.leagueRepo.ListByServer(ctx, discordServer)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	return leagues, nil
}

func (s *leagueService) JoinLeague(ctx context.Context, leagueID, teamID, currentUserID int) error {
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}

	membership := &models.LeagueMembership{
		LeagueID: leagueID,
		TeamID:   teamID,
		JoinedBy: currentUserID,
	}
	if err := s.leagueRepo.JoinLeague(ctx, membership); err != nil {
		return fmt.Errorf("failed to join league %d: %w", leagueID, err)
	}
	return nil
}

func (s *leagueService) ListLeagueTeams(ctx context.Context, leagueID int) ([]*models.Team, error) {
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	memberships, err := s.leagueRepo.ListMembershipsByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league %d memberships: %w", leagueID, err)
	}

	teams := make([]*models.Team, 0, len(memberships))
	for _, m := range memberships {
		team, err := s.teamRepo.GetByID(ctx, m.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get team %d: %w", m.TeamID, err)
		}
		teams = append(teams, team)
	}
	return teams, nil
}
