package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voltstriker/scrimbot/models"
)

var ErrAdminGrantNotFound = errors.New("admin grant not found")

type AdminRepository interface {
	Save(ctx context.Context, grant *models.AdminGrant) error
	Delete(ctx context.Context, id int) (int64, error)
	List(ctx context.Context, discordServerID string) ([]*models.AdminGrant, error)

	// GetByUser ищет персональное право конкретного пользователя.
	GetByUser(ctx context.Context, discordUserID string) (*models.AdminGrant, error)

	// GetByServerAndRole ищет право, выданное роли сервера.
	GetByServerAndRole(ctx context.Context, discordServerID, discordRoleID string) (*models.AdminGrant, error)
}

type sqliteAdminRepository struct {
	db *sql.DB
}

func NewSQLiteAdminRepository(db *sql.DB) AdminRepository {
	return &sqliteAdminRepository{db: db}
}

func (r *sqliteAdminRepository) Save(ctx context.Context, grant *models.AdminGrant) error {
	if grant.ID == 0 {
		if grant.CreatedDate.IsZero() {
			grant.CreatedDate = time.Now().UTC()
		}
		query := `INSERT INTO admins (scope, discord_user_id, discord_server_id, discord_role_id, created_date, created_by)
		          VALUES (?, ?, ?, ?, ?, ?)`
		result, err := r.db.ExecContext(ctx, query,
			string(grant.Scope), nullableString(grant.DiscordUserID),
			nullableString(grant.DiscordServerID), nullableString(grant.DiscordRoleID),
			formatTime(grant.CreatedDate), grant.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert admin grant: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted grant id: %w", err)
		}
		grant.ID = int(id)
		return nil
	}

	now := time.Now().UTC()
	grant.UpdatedDate = &now
	query := `UPDATE admins SET scope = ?, discord_user_id = ?, discord_server_id = ?, discord_role_id = ?, updated_date = ?, updated_by = ?
	          WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		string(grant.Scope), nullableString(grant.DiscordUserID),
		nullableString(grant.DiscordServerID), nullableString(grant.DiscordRoleID),
		formatTime(now), nullableInt(grant.UpdatedBy), grant.ID)
	if err != nil {
		return fmt.Errorf("failed to update admin grant %d: %w", grant.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: grant %d", ErrNoRowsAffected, grant.ID))
}

func (r *sqliteAdminRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete admin grant %d: %w", id, err)
	}
	return result.RowsAffected()
}

func (r *sqliteAdminRepository) List(ctx context.Context, discordServerID string) ([]*models.AdminGrant, error) {
	query := `SELECT id, scope, discord_user_id, discord_server_id, discord_role_id, created_date, created_by, updated_date, updated_by
	          FROM admins WHERE scope = ? OR discord_server_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, string(models.AdminScopeUser), discordServerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin grants: %w", err)
	}
	defer rows.Close()

	grants := make([]*models.AdminGrant, 0)
	for rows.Next() {
		grant, err := scanAdminGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

func (r *sqliteAdminRepository) GetByUser(ctx context.Context, discordUserID string) (*models.AdminGrant, error) {
	query := `SELECT id, scope, discord_user_id, discord_server_id, discord_role_id, created_date, created_by, updated_date, updated_by
	          FROM admins WHERE scope = ? AND discord_user_id = ?`

	grant, err := scanAdminGrant(r.db.QueryRowContext(ctx, query, string(models.AdminScopeUser), discordUserID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminGrantNotFound
		}
		return nil, err
	}
	return grant, nil
}

func (r *sqliteAdminRepository) GetByServerAndRole(ctx context.Context, discordServerID, discordRoleID string) (*models.AdminGrant, error) {
	query := `SELECT id, scope, discord_user_id, discord_server_id, discord_role_id, created_date, created_by, updated_date, updated_by
	          FROM admins WHERE scope = ? AND discord_server_id = ? AND discord_role_id = ?`

	grant, err := scanAdminGrant(r.db.QueryRowContext(ctx, query,
		string(models.AdminScopeRole), discordServerID, discordRoleID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminGrantNotFound
		}
		return nil, err
	}
	return grant, nil
}

func scanAdminGrant(scan func(dest ...any) error) (*models.AdminGrant, error) {
	var (
		grant    models.AdminGrant
		scope    string
		userID   sql.NullString
		serverID sql.NullString
		roleID   sql.NullString
		created  string
		updated  sql.NullString
		by       sql.NullInt64
	)
	err := scan(&grant.ID, &scope, &userID, &serverID, &roleID, &created, &grant.CreatedBy, &updated, &by)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan admin grant: %w", err)
	}
	grant.Scope = models.AdminScope(scope)
	grant.DiscordUserID = userID.String
	grant.DiscordServerID = serverID.String
	grant.DiscordRoleID = roleID.String
	if grant.CreatedDate, err = parseTime(created); err != nil {
		return nil, err
	}
	if grant.UpdatedDate, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	if by.Valid {
		updatedBy := int(by.Int64)
		grant.UpdatedBy = &updatedBy
	}
	return &grant, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
