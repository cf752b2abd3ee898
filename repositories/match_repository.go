package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voltstriker/scrimbot/database"
	"github.com/voltstriker/scrimbot/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Save(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Match, error)

	// SaveResult — upsert результата раунда по составному ключу (match_id, round).
	SaveResult(ctx context.Context, result *models.MatchResult) error
	ListResults(ctx context.Context, matchID int) ([]*models.MatchResult, error)
}

type sqliteMatchRepository struct {
	db *sql.DB
}

func NewSQLiteMatchRepository(db *sql.DB) MatchRepository {
	return &sqliteMatchRepository{db: db}
}

func (r *sqliteMatchRepository) Save(ctx context.Context, match *models.Match) error {
	if match.ID == 0 {
		if match.IssuedDate.IsZero() {
			match.IssuedDate = time.Now().UTC()
		}
		query := `INSERT INTO matches
		          (league_id, challenging_team, defending_team, issued_date, issued_by, match_date, winning_team, match_accepted, match_cancelled)
		          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		result, err := r.db.ExecContext(ctx, query,
			match.LeagueID, match.ChallengingTeam, match.DefendingTeam,
			formatTime(match.IssuedDate), match.IssuedBy, formatTime(match.MatchDate),
			nullableInt(match.WinningTeam), boolToInt(match.Accepted), boolToInt(match.Cancelled))
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: match references missing league %d or team: %w",
					database.ErrConstraintViolation, match.LeagueID, err)
			}
			return fmt.Errorf("failed to insert match: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted match id: %w", err)
		}
		match.ID = int(id)
		return nil
	}

	query := `UPDATE matches SET match_date = ?, winning_team = ?, match_accepted = ?, match_cancelled = ?
	          WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		formatTime(match.MatchDate), nullableInt(match.WinningTeam),
		boolToInt(match.Accepted), boolToInt(match.Cancelled), match.ID)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: match %d", ErrNoRowsAffected, match.ID))
}

func (r *sqliteMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT id, league_id, challenging_team, defending_team, issued_date, issued_by, match_date, winning_team, match_accepted, match_cancelled
	          FROM matches WHERE id = ?`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *sqliteMatchRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Match, error) {
	query := `SELECT id, league_id, challenging_team, defending_team, issued_date, issued_by, match_date, winning_team, match_accepted, match_cancelled
	          FROM matches WHERE league_id = ? ORDER BY issued_date DESC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func scanMatch(scan func(dest ...any) error) (*models.Match, error) {
	var (
		match     models.Match
		issued    string
		matchDate string
		winner    sql.NullInt64
		accepted  int
		cancelled int
	)
	err := scan(&match.ID, &match.LeagueID, &match.ChallengingTeam, &match.DefendingTeam,
		&issued, &match.IssuedBy, &matchDate, &winner, &accepted, &cancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	if match.IssuedDate, err = parseTime(issued); err != nil {
		return nil, err
	}
	if match.MatchDate, err = parseTime(matchDate); err != nil {
		return nil, err
	}
	if winner.Valid {
		winningTeam := int(winner.Int64)
		match.WinningTeam = &winningTeam
	}
	match.Accepted = accepted != 0
	match.Cancelled = cancelled != 0
	return &match, nil
}

func (r *sqliteMatchRepository) SaveResult(ctx context.Context, result *models.MatchResult) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM match_results WHERE match_id = ? AND round = ?`,
		result.MatchID, result.Round).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to probe match result: %w", err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		query := `INSERT INTO match_results (match_id, round, map_id, challenging_team_score, defending_team_score, winning_team)
		          VALUES (?, ?, ?, ?, ?, ?)`
		_, err := r.db.ExecContext(ctx, query,
			result.MatchID, result.Round, result.MapID,
			result.ChallengingTeamScore, result.DefendingTeamScore, result.WinningTeam)
		if err != nil {
			if database.IsConstraintViolation(err) {
				return fmt.Errorf("%w: result for match %d round %d: %w",
					database.ErrConstraintViolation, result.MatchID, result.Round, err)
			}
			return fmt.Errorf("failed to insert match result: %w", err)
		}
		return nil
	}

	query := `UPDATE match_results SET map_id = ?, challenging_team_score = ?, defending_team_score = ?, winning_team = ?
	          WHERE match_id = ? AND round = ?`
	res, err := r.db.ExecContext(ctx, query,
		result.MapID, result.ChallengingTeamScore, result.DefendingTeamScore, result.WinningTeam,
		result.MatchID, result.Round)
	if err != nil {
		return fmt.Errorf("failed to update match result: %w", err)
	}
	return checkAffectedRows(res,
		fmt.Errorf("%w: match %d round %d", ErrNoRowsAffected, result.MatchID, result.Round))
}

func (r *sqliteMatchRepository) ListResults(ctx context.Context, matchID int) ([]*models.MatchResult, error) {
	query := `SELECT match_id, round, map_id, challenging_team_score, defending_team_score, winning_team
	          FROM match_results WHERE match_id = ? ORDER BY round`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for match %d: %w", matchID, err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		var result models.MatchResult
		if err := rows.Scan(&result.MatchID, &result.Round, &result.MapID,
			&result.ChallengingTeamScore, &result.DefendingTeamScore, &result.WinningTeam); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
