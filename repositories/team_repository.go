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
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name and tag already in use on this server")
)

type TeamRepository interface {
	// CreateWithCaptain вставляет команду и членство основателя одной
	// транзакцией, записывая сгенерированный ID обратно в team.
	CreateWithCaptain(ctx context.Context, team *models.Team) error
	Save(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByServer(ctx context.Context, discordServer string) ([]*models.Team, error)

	// TransferCaptain атомарно переназначает капитана: одна условная
	// UPDATE, без промежуточного состояния с нулём или двумя капитанами.
	// Возвращает ErrNoRowsAffected, если fromUserID уже не капитан.
	TransferCaptain(ctx context.Context, teamID, fromUserID, toUserID int) error

	// DeleteWithMembers удаляет команду вместе с её членствами,
	// приглашениями и участием в лигах одной транзакцией.
	DeleteWithMembers(ctx context.Context, teamID int) error
}

type sqliteTeamRepository struct {
	db *sql.DB
}

func NewSQLiteTeamRepository(db *sql.DB) TeamRepository {
	return &sqliteTeamRepository{db: db}
}

func (r *sqliteTeamRepository) CreateWithCaptain(ctx context.Context, team *models.Team) error {
	if team.CreatedDate.IsZero() {
		team.CreatedDate = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertTeam(ctx, tx, team)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s [%s]: %w", ErrTeamNameConflict, team.Name, team.Tag, err)
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}

	founder := &models.TeamMembership{
		UserID:     team.CaptainID,
		TeamID:     int(id),
		JoinedDate: team.CreatedDate,
	}
	if err := insertMembership(ctx, tx, founder); err != nil {
		return fmt.Errorf("failed to insert founder membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team creation: %w", err)
	}

	team.ID = int(id)
	return nil
}

func insertTeam(ctx context.Context, exec SQLExecutor, team *models.Team) (int64, error) {
	result, err := exec.ExecContext(ctx,
		`INSERT INTO teams (name, tag, captain_id, created_date, created_by, discord_server)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		team.Name, team.Tag, team.CaptainID, formatTime(team.CreatedDate), team.CreatedBy, team.DiscordServer)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *sqliteTeamRepository) Save(ctx context.Context, team *models.Team) error {
	if team.ID == 0 {
		return fmt.Errorf("team without id: use CreateWithCaptain")
	}

	query := `UPDATE teams SET name = ?, tag = ?, captain_id = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.Tag, team.CaptainID, team.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s [%s]: %w", ErrTeamNameConflict, team.Name, team.Tag, err)
		}
		return fmt.Errorf("failed to update team %d: %w", team.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: team %d", ErrNoRowsAffected, team.ID))
}

func (r *sqliteTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, tag, captain_id, created_date, created_by, discord_server
	          FROM teams WHERE id = ?`

	var (
		team    models.Team
		created string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Tag, &team.CaptainID, &created, &team.CreatedBy, &team.DiscordServer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	if team.CreatedDate, err = parseTime(created); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *sqliteTeamRepository) ListByServer(ctx context.Context, discordServer string) ([]*models.Team, error) {
	query := `SELECT id, name, tag, captain_id, created_date, created_by, discord_server
	          FROM teams WHERE discord_server = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, discordServer)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for server %s: %w", discordServer, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var (
			team    models.Team
			created string
		)
		if err := rows.Scan(&team.ID, &team.Name, &team.Tag, &team.CaptainID, &created, &team.CreatedBy, &team.DiscordServer); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if team.CreatedDate, err = parseTime(created); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

func (r *sqliteTeamRepository) TransferCaptain(ctx context.Context, teamID, fromUserID, toUserID int) error {
	query := `UPDATE teams SET captain_id = ? WHERE id = ? AND captain_id = ?`
	result, err := r.db.ExecContext(ctx, query, toUserID, teamID, fromUserID)
	if err != nil {
		return fmt.Errorf("failed to transfer captain of team %d: %w", teamID, err)
	}
	return checkAffectedRows(result,
		fmt.Errorf("%w: team %d captain is no longer user %d", ErrNoRowsAffected, teamID, fromUserID))
}

func (r *sqliteTeamRepository) DeleteWithMembers(ctx context.Context, teamID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_invites WHERE team_id = ?`, teamID); err != nil {
		return fmt.Errorf("failed to delete team invites: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM league_membership WHERE team_id = ?`, teamID); err != nil {
		return fmt.Errorf("failed to delete league memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_membership WHERE team_id = ?`, teamID); err != nil {
		return fmt.Errorf("failed to delete team memberships: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}
	if err := checkAffectedRows(result, fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)); err != nil {
		return err
	}

	return tx.Commit()
}
