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

var (
	ErrLeagueNotFound           = errors.New("league not found")
	ErrLeagueMembershipNotFound = errors.New("league membership not found")
)

type LeagueRepository interface {
	Save(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	ListByServer(ctx context.Context, discordServer string) ([]*models.League, error)
	Delete(ctx context.Context, id int) (int64, error)

	// JoinLeague — upsert участия команды по составному ключу.
	JoinLeague(ctx context.Context, membership *models.LeagueMembership) error
	ListMembershipsByTeam(ctx context.Context, teamID int) ([]*models.LeagueMembership, error)
	ListMembershipsByLeague(ctx context.Context, leagueID int) ([]*models.LeagueMembership, error)

	// SharedLeague возвращает ID лиги, в которой состоят обе команды, либо
	// ErrLeagueMembershipNotFound.
	SharedLeague(ctx context.Context, teamA, teamB int) (int, error)
}

type sqliteLeagueRepository struct {
	db *sql.DB
}

func NewSQLiteLeagueRepository(db *sql.DB) LeagueRepository {
	return &sqliteLeagueRepository{db: db}
}

func (r *sqliteLeagueRepository) Save(ctx context.Context, league *models.League) error {
	if league.ID == 0 {
		if league.CreatedDate.IsZero() {
			league.CreatedDate = time.Now().UTC()
		}
		query := `INSERT INTO leagues (name, game_id, match_format, discord_server, created_date, created_by)
		          VALUES (?, ?, ?, ?, ?, ?)`
		result, err := r.db.ExecContext(ctx, query,
			league.Name, league.GameID, league.MatchFormatID, league.DiscordServer,
			formatTime(league.CreatedDate), league.CreatedBy)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: league references missing game %d or format %d: %w",
					database.ErrConstraintViolation, league.GameID, league.MatchFormatID, err)
			}
			return fmt.Errorf("failed to insert league: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted league id: %w", err)
		}
		league.ID = int(id)
		return nil
	}

	query := `UPDATE leagues SET name = ?, game_id = ?, match_format = ?, updated_date = ?, updated_by = ?
	          WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		league.Name, league.GameID, league.MatchFormatID,
		formatNullTime(league.UpdatedDate), league.UpdatedBy, league.ID)
	if err != nil {
		return fmt.Errorf("failed to update league %d: %w", league.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: league %d", ErrNoRowsAffected, league.ID))
}

func (r *sqliteLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT id, name, game_id, match_format, discord_server, created_date, created_by, updated_date, updated_by
	          FROM leagues WHERE id = ?`

	var (
		league  models.League
		server  sql.NullString
		created string
		updated sql.NullString
		by      sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&league.ID, &league.Name, &league.GameID, &league.MatchFormatID,
		&server, &created, &league.CreatedBy, &updated, &by)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league: %w", err)
	}
	league.DiscordServer = server.String
	if league.CreatedDate, err = parseTime(created); err != nil {
		return nil, err
	}
	if league.UpdatedDate, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	if by.Valid {
		updatedBy := int(by.Int64)
		league.UpdatedBy = &updatedBy
	}
	return &league, nil
}

func (r *sqliteLeagueRepository) ListByServer(ctx context.Context, discordServer string) ([]*models.League, error) {
	query := `SELECT id, name, game_id, match_format, discord_server, created_date, created_by, updated_date, updated_by
	          FROM leagues WHERE discord_server = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, discordServer)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues for server %s: %w", discordServer, err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		var (
			league  models.League
			server  sql.NullString
			created string
			updated sql.NullString
			by      sql.NullInt64
		)
		if err := rows.Scan(&league.ID, &league.Name, &league.GameID, &league.MatchFormatID,
			&server, &created, &league.CreatedBy, &updated, &by); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		league.DiscordServer = server.String
		if league.CreatedDate, err = parseTime(created); err != nil {
			return nil, err
		}
		if league.UpdatedDate, err = parseNullTime(updated); err != nil {
			return nil, err
		}
		if by.Valid {
			updatedBy := int(by.Int64)
			league.UpdatedBy = &updatedBy
		}
		leagues = append(leagues, &league)
	}
	return leagues, rows.Err()
}

func (r *sqliteLeagueRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leagues WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete league %d: %w", id, err)
	}
	return result.RowsAffected()
}

func (r *sqliteLeagueRepository) JoinLeague(ctx context.Context, membership *models.LeagueMembership) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM league_membership WHERE league_id = ? AND team_id = ?`,
		membership.LeagueID, membership.TeamID).Scan(&exists)
	if err == nil {
		// Команда уже в лиге — идемпотентно.
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to probe league membership: %w", err)
	}

	if membership.JoinedDate.IsZero() {
		membership.JoinedDate = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO league_membership (league_id, team_id, joined_date, joined_by) VALUES (?, ?, ?, ?)`,
		membership.LeagueID, membership.TeamID, formatTime(membership.JoinedDate), membership.JoinedBy)
	if err != nil {
		if database.IsConstraintViolation(err) {
			return fmt.Errorf("%w: league %d team %d: %w",
				database.ErrConstraintViolation, membership.LeagueID, membership.TeamID, err)
		}
		return fmt.Errorf("failed to insert league membership: %w", err)
	}
	return nil
}

func (r *sqliteLeagueRepository) ListMembershipsByTeam(ctx context.Context, teamID int) ([]*models.LeagueMembership, error) {
	return r.listMemberships(ctx,
		`SELECT league_id, team_id, joined_date, joined_by FROM league_membership WHERE team_id = ?`, teamID)
}

func (r *sqliteLeagueRepository) ListMembershipsByLeague(ctx context.Context, leagueID int) ([]*models.LeagueMembership, error) {
	return r.listMemberships(ctx,
		`SELECT league_id, team_id, joined_date, joined_by FROM league_membership WHERE league_id = ?`, leagueID)
}

func (r *sqliteLeagueRepository) listMemberships(ctx context.Context, query string, arg any) ([]*models.LeagueMembership, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list league memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.LeagueMembership, 0)
	for rows.Next() {
		var (
			m      models.LeagueMembership
			joined string
		)
		if err := rows.Scan(&m.LeagueID, &m.TeamID, &joined, &m.JoinedBy); err != nil {
			return nil, fmt.Errorf("failed to scan league membership: %w", err)
		}
		if m.JoinedDate, err = parseTime(joined); err != nil {
			return nil, err
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

func (r *sqliteLeagueRepository) SharedLeague(ctx context.Context, teamA, teamB int) (int, error) {
	query := `SELECT a.league_id
	          FROM league_membership a
	          JOIN league_membership b ON a.league_id = b.league_id
	          WHERE a.team_id = ? AND b.team_id = ?
	          LIMIT 1`

	var leagueID int
	err := r.db.QueryRowContext(ctx, query, teamA, teamB).Scan(&leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: teams %d and %d", ErrLeagueMembershipNotFound, teamA, teamB)
		}
		return 0, fmt.Errorf("failed to find shared league: %w", err)
	}
	return leagueID, nil
}
