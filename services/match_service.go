package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

type MatchService interface {
	// Challenge выставляет вызов другой команде. Обе команды обязаны состоять
	// в одной лиге — матч привязывается к ней.
	Challenge(ctx context.Context, challengingTeamID, defendingTeamID, currentUserID int, matchDate time.Time) (*models.Match, error)

	// AcceptChallenge — только капитан защищающейся команды.
	AcceptChallenge(ctx context.Context, matchID, currentUserID int) error

	// CancelMatch — капитан любой из сторон, пока матч не принят.
	CancelMatch(ctx context.Context, matchID, currentUserID int) error

	// RecordResult фиксирует результат раунда. Карта должна входить в список
	// разрешённых для формата лиги; ничья невозможна. После последнего раунда
	// победитель матча определяется по числу выигранных раундов.
	RecordResult(ctx context.Context, matchID, round, mapID, challengingScore, defendingScore, currentUserID int) (*models.MatchResult, error)
	ListResults(ctx context.Context, matchID int) ([]*models.MatchResult, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Match, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	leagueRepo repositories.LeagueRepository
	teamRepo   repositories.TeamRepository
	gameRepo   repositories.GameRepository
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		gameRepo:   gameRepo,
	}
}

func (s *matchService) Challenge(ctx context.Context, challengingTeamID, defendingTeamID, currentUserID int, matchDate time.Time) (*models.Match, error) {
	if challengingTeamID == defendingTeamID {
		return nil, ErrSameTeamChallenge
	}

	challenging, err := s.getTeam(ctx, challengingTeamID)
	if err != nil {
		return nil, err
	}
	if challenging.CaptainID != currentUserID {
		return nil, ErrCaptainActionForbidden
	}
	if _, err := s.getTeam(ctx, defendingTeamID); err != nil {
		return nil, err
	}

	leagueID, err := s.leagueRepo.SharedLeague(ctx, challengingTeamID, defendingTeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueMembershipNotFound) {
			return nil, ErrTeamsNotInSameLeague
		}
		return nil, fmt.Errorf("failed to find shared league: %w", err)
	}

	match := &models.Match{
		LeagueID:        leagueID,
		ChallengingTeam: challengingTeamID,
		DefendingTeam:   defendingTeamID,
		IssuedBy:        currentUserID,
		MatchDate:       matchDate.UTC(),
	}
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) AcceptChallenge(ctx context.Context, matchID, currentUserID int) error {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Cancelled {
		return ErrMatchCancelled
	}
	if match.Accepted {
		return ErrMatchAlreadyAccepted
	}

	defending, err := s.getTeam(ctx, match.DefendingTeam)
	if err != nil {
		return err
	}
	if defending.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}

	match.Accepted = true
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return fmt.Errorf("failed to accept match %d: %w", matchID, err)
	}
	return nil
}

func (s *matchService) CancelMatch(ctx context.Context, matchID, currentUserID int) error {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if match.Cancelled {
		return ErrMatchCancelled
	}

	challenging, err := s.getTeam(ctx, match.ChallengingTeam)
	if err != nil {
		return err
	}
	defending, err := s.getTeam(ctx, match.DefendingTeam)
	if err != nil {
		return err
	}
	if challenging.CaptainID != currentUserID && defending.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}

	match.Cancelled = true
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return fmt.Errorf("failed to cancel match %d: %w", matchID, err)
	}
	return nil
}

func (s *matchService) RecordResult(ctx context.Context, matchID, round, mapID, challengingScore, defendingScore, currentUserID int) (*models.MatchResult, error) {
	if round < 1 {
		return nil, fmt.Errorf("%w: round must be positive", ErrValidationFailed)
	}
	if challengingScore == defendingScore {
		return nil, ErrResultTied
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Cancelled {
		return nil, ErrMatchCancelled
	}
	if !match.Accepted {
		return nil, fmt.Errorf("%w: match %d has not been accepted", ErrValidationFailed, matchID)
	}

	challenging, err := s.getTeam(ctx, match.ChallengingTeam)
	if err != nil {
		return nil, err
	}
	defending, err := s.getTeam(ctx, match.DefendingTeam)
	if err != nil {
		return nil, err
	}
	if challenging.CaptainID != currentUserID && defending.CaptainID != currentUserID {
		return nil, ErrCaptainActionForbidden
	}

	league, format, err := s.leagueFormat(ctx, match.LeagueID)
	if err != nil {
		return nil, err
	}
	permitted, err := s.gameRepo.IsMapPermitted(ctx, format.ID, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to check permitted map: %w", err)
	}
	if !permitted {
		return nil, ErrMapNotPermitted
	}

	// Формат не привязан к игре, поэтому разрешённая для формата карта может
	// принадлежать чужой игре. Матч принимает только карты игры своей лиги.
	playedMap, err := s.gameRepo.GetMapByID(ctx, mapID)
	if err != nil {
		if errors.Is(err, repositories.ErrMapNotFound) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to get map %d: %w", mapID, err)
	}
	if playedMap.GameID != league.GameID {
		return nil, ErrMapNotPermitted
	}

	winner := match.ChallengingTeam
	if defendingScore > challengingScore {
		winner = match.DefendingTeam
	}

	result := &models.MatchResult{
		MatchID:              matchID,
		Round:                round,
		MapID:                mapID,
		ChallengingTeamScore: challengingScore,
		DefendingTeamScore:   defendingScore,
		WinningTeam:          winner,
	}
	if err := s.matchRepo.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to record result for match %d round %d: %w", matchID, round, err)
	}

	if err := s.finalizeIfComplete(ctx, match, format); err != nil {
		return nil, err
	}
	return result, nil
}

// finalizeIfComplete выставляет победителя матча, когда сыграны все раунды
// формата. Победитель — команда с большинством выигранных раундов.
func (s *matchService) finalizeIfComplete(ctx context.Context, match *models.Match, format *models.MatchFormat) error {
	results, err := s.matchRepo.ListResults(ctx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to list results for match %d: %w", match.ID, err)
	}
	if len(results) < format.MatchCount {
		return nil
	}

	wins := make(map[int]int)
	for _, r := range results {
		wins[r.WinningTeam]++
	}
	winner := match.ChallengingTeam
	if wins[match.DefendingTeam] > wins[match.ChallengingTeam] {
		winner = match.DefendingTeam
	}

	match.WinningTeam = &winner
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return fmt.Errorf("failed to finalize match %d: %w", match.ID, err)
	}
	return nil
}

func (s *matchService) ListResults(ctx context.Context, matchID int) ([]*models.MatchResult, error) {
	if _, err := s.getMatch(ctx, matchID); err != nil {
		return nil, err
	}
	results, err := s.matchRepo.ListResults(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for match %d: %w", matchID, err)
	}
	return results, nil
}

func (s *matchService) ListByLeague(ctx context.Context, leagueID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}
	return matches, nil
}

func (s *matchService) leagueFormat(ctx context.Context, leagueID int) (*models.League, *models.MatchFormat, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, nil, ErrLeagueNotFound
		}
		return nil, nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	format, err := s.gameRepo.GetFormatByID(ctx, league.MatchFormatID)
	if err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, nil, ErrFormatNotFound
		}
		return nil, nil, fmt.Errorf("failed to get match format %d: %w", league.MatchFormatID, err)
	}
	return league, format, nil
}

func (s *matchService) getMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}
