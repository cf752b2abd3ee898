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
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteNotPending = errors.New("invite is not pending")
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.TeamInvite) error
	GetByID(ctx context.Context, id int) (*models.TeamInvite, error)

	// GetPending возвращает действующее приглашение пользователя в команду,
	// либо ErrInviteNotFound.
	GetPending(ctx context.Context, teamID, userID int) (*models.TeamInvite, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.TeamInvite, error)

	// UpdateStatus переводит приглашение из issued в новое состояние одной
	// условной UPDATE. ErrInviteNotPending, если статус уже изменился.
	UpdateStatus(ctx context.Context, id int, status models.InviteStatus) error
	Delete(ctx context.Context, id int) (int64, error)
}

type sqliteInviteRepository struct {
	db *sql.DB
}

func NewSQLiteInviteRepository(db *sql.DB) InviteRepository {
	return &sqliteInviteRepository{db: db}
}

func (r *sqliteInviteRepository) Create(ctx context.Context, invite *models.TeamInvite) error {
	if invite.CreatedDate.IsZero() {
		invite.CreatedDate = time.Now().UTC()
	}
	if invite.Status == "" {
		invite.Status = models.InviteStatusIssued
	}

	query := `INSERT INTO team_invites (team_id, user_id, invited_by, status, created_date, expires_date)
	          VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		invite.TeamID, invite.UserID, invite.InvitedBy, string(invite.Status),
		formatTime(invite.CreatedDate), formatTime(invite.ExpiresDate))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: invite references missing team %d or user %d: %w",
				database.ErrConstraintViolation, invite.TeamID, invite.UserID, err)
		}
		return fmt.Errorf("failed to insert invite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted invite id: %w", err)
	}
	invite.ID = int(id)
	return nil
}

func (r *sqliteInviteRepository) GetByID(ctx context.Context, id int) (*models.TeamInvite, error) {
	query := `SELECT id, team_id, user_id, invited_by, status, created_date, expires_date, updated_date
	          FROM team_invites WHERE id = ?`
	return r.scanInvite(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteInviteRepository) GetPending(ctx context.Context, teamID, userID int) (*models.TeamInvite, error) {
	query := `SELECT id, team_id, user_id, invited_by, status, created_date, expires_date, updated_date
	          FROM team_invites WHERE team_id = ? AND user_id = ? AND status = ?`
	return r.scanInvite(r.db.QueryRowContext(ctx, query, teamID, userID, string(models.InviteStatusIssued)))
}

func (r *sqliteInviteRepository) scanInvite(row *sql.Row) (*models.TeamInvite, error) {
	var (
		invite  models.TeamInvite
		status  string
		created string
		expires string
		updated sql.NullString
	)
	err := row.Scan(&invite.ID, &invite.TeamID, &invite.UserID, &invite.InvitedBy,
		&status, &created, &expires, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to scan invite: %w", err)
	}
	invite.Status = models.InviteStatus(status)
	if invite.CreatedDate, err = parseTime(created); err != nil {
		return nil, err
	}
	if invite.ExpiresDate, err = parseTime(expires); err != nil {
		return nil, err
	}
	if invite.UpdatedDate, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *sqliteInviteRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.TeamInvite, error) {
	query := `SELECT id, team_id, user_id, invited_by, status, created_date, expires_date, updated_date
	          FROM team_invites WHERE team_id = ? ORDER BY created_date DESC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for team %d: %w", teamID, err)
	}
	defer rows.Close()

	invites := make([]*models.TeamInvite, 0)
	for rows.Next() {
		var (
			invite  models.TeamInvite
			status  string
			created string
			expires string
			updated sql.NullString
		)
		if err := rows.Scan(&invite.ID, &invite.TeamID, &invite.UserID, &invite.InvitedBy,
			&status, &created, &expires, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invite.Status = models.InviteStatus(status)
		if invite.CreatedDate, err = parseTime(created); err != nil {
			return nil, err
		}
		if invite.ExpiresDate, err = parseTime(expires); err != nil {
			return nil, err
		}
		if invite.UpdatedDate, err = parseNullTime(updated); err != nil {
			return nil, err
		}
		invites = append(invites, &invite)
	}
	return invites, rows.Err()
}

func (r *sqliteInviteRepository) UpdateStatus(ctx context.Context, id int, status models.InviteStatus) error {
	query := `UPDATE team_invites SET status = ?, updated_date = ? WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, query,
		string(status), formatTime(time.Now().UTC()), id, string(models.InviteStatusIssued))
	if err != nil {
		return fmt.Errorf("failed to update invite %d status: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: invite %d", ErrInviteNotPending, id))
}

func (r *sqliteInviteRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_invites WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invite %d: %w", id, err)
	}
	return result.RowsAffected()
}
