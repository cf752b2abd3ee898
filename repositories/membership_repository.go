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

var ErrMembershipNotFound = errors.New("team membership not found")

type MembershipRepository interface {
	// Save для составного ключа: проверка существования по (user_id, team_id),
	// затем вставка либо обновление — суррогатного ID для ветвления нет.
	Save(ctx context.Context, membership *models.TeamMembership) error
	Get(ctx context.Context, userID, teamID int) (*models.TeamMembership, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.TeamMembership, error)
	ListByUser(ctx context.Context, userID int) ([]*models.TeamMembership, error)
	CountByTeam(ctx context.Context, teamID int) (int, error)
	Delete(ctx context.Context, userID, teamID int) (int64, error)

	// DeleteNonCaptain удаляет членство только если пользователь не является
	// текущим капитаном команды — одна условная DELETE без гонки
	// «проверили, потом удалили».
	DeleteNonCaptain(ctx context.Context, userID, teamID int) (int64, error)
}

type sqliteMembershipRepository struct {
	db *sql.DB
}

func NewSQLiteMembershipRepository(db *sql.DB) MembershipRepository {
	return &sqliteMembershipRepository{db: db}
}

func (r *sqliteMembershipRepository) Save(ctx context.Context, membership *models.TeamMembership) error {
	existing, err := r.Get(ctx, membership.UserID, membership.TeamID)
	if err != nil && !errors.Is(err, ErrMembershipNotFound) {
		return err
	}

	if existing == nil {
		if membership.JoinedDate.IsZero() {
			membership.JoinedDate = time.Now().UTC()
		}
		if err := insertMembership(ctx, r.db, membership); err != nil {
			if database.IsConstraintViolation(err) {
				return fmt.Errorf("%w: membership user %d team %d: %w",
					database.ErrConstraintViolation, membership.UserID, membership.TeamID, err)
			}
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		return nil
	}

	now := time.Now().UTC()
	membership.UpdatedDate = &now
	result, err := r.db.ExecContext(ctx,
		`UPDATE team_membership SET updated_date = ? WHERE user_id = ? AND team_id = ?`,
		formatTime(now), membership.UserID, membership.TeamID)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return checkAffectedRows(result,
		fmt.Errorf("%w: user %d team %d", ErrNoRowsAffected, membership.UserID, membership.TeamID))
}

// insertMembership выполняет вставку через произвольный SQLExecutor: Save
// работает поверх *sql.DB, а создание команды вставляет членство основателя
// внутри своей транзакции.
func insertMembership(ctx context.Context, exec SQLExecutor, m *models.TeamMembership) error {
	_, err := exec.ExecContext(ctx,
		`INSERT INTO team_membership (user_id, team_id, joined_date, updated_date) VALUES (?, ?, ?, ?)`,
		m.UserID, m.TeamID, formatTime(m.JoinedDate), formatNullTime(m.UpdatedDate))
	return err
}

func (r *sqliteMembershipRepository) Get(ctx context.Context, userID, teamID int) (*models.TeamMembership, error) {
	query := `SELECT user_id, team_id, joined_date, updated_date
	          FROM team_membership WHERE user_id = ? AND team_id = ?`

	var (
		m       models.TeamMembership
		joined  string
		updated sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID, teamID).Scan(&m.UserID, &m.TeamID, &joined, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to scan membership: %w", err)
	}
	if m.JoinedDate, err = parseTime(joined); err != nil {
		return nil, err
	}
	if m.UpdatedDate, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sqliteMembershipRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.TeamMembership, error) {
	return r.list(ctx,
		`SELECT user_id, team_id, joined_date, updated_date FROM team_membership WHERE team_id = ? ORDER BY joined_date`,
		teamID)
}

func (r *sqliteMembershipRepository) ListByUser(ctx context.Context, userID int) ([]*models.TeamMembership, error) {
	return r.list(ctx,
		`SELECT user_id, team_id, joined_date, updated_date FROM team_membership WHERE user_id = ? ORDER BY joined_date`,
		userID)
}

func (r *sqliteMembershipRepository) list(ctx context.Context, query string, arg any) ([]*models.TeamMembership, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.TeamMembership, 0)
	for rows.Next() {
		var (
			m       models.TeamMembership
			joined  string
			updated sql.NullString
		)
		if err := rows.Scan(&m.UserID, &m.TeamID, &joined, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		if m.JoinedDate, err = parseTime(joined); err != nil {
			return nil, err
		}
		if m.UpdatedDate, err = parseNullTime(updated); err != nil {
			return nil, err
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

func (r *sqliteMembershipRepository) CountByTeam(ctx context.Context, teamID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_membership WHERE team_id = ?`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members of team %d: %w", teamID, err)
	}
	return count, nil
}

func (r *sqliteMembershipRepository) Delete(ctx context.Context, userID, teamID int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_membership WHERE user_id = ? AND team_id = ?`, userID, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete membership: %w", err)
	}
	return result.RowsAffected()
}

func (r *sqliteMembershipRepository) DeleteNonCaptain(ctx context.Context, userID, teamID int) (int64, error) {
	query := `DELETE FROM team_membership
	          WHERE user_id = ? AND team_id = ?
	            AND user_id != (SELECT captain_id FROM teams WHERE id = ?)`
	result, err := r.db.ExecContext(ctx, query, userID, teamID, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete membership: %w", err)
	}
	return result.RowsAffected()
}
