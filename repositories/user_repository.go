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
	ErrUserNotFound = errors.New("user not found")
	ErrUserConflict = errors.New("user discord id conflict")
)

type UserRepository interface {
	// Save вставляет пользователя при нулевом ID (записывая новый ID обратно
	// в объект) либо обновляет существующую запись по первичному ключу.
	Save(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int) (int64, error)
}

type sqliteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Save(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		if user.CreatedDate.IsZero() {
			user.CreatedDate = time.Now().UTC()
		}
		query := `INSERT INTO users (discord_id, display_name, created_date) VALUES (?, ?, ?)`
		result, err := r.db.ExecContext(ctx, query, user.DiscordID, user.DisplayName, formatTime(user.CreatedDate))
		if err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: discord id %s: %w", ErrUserConflict, user.DiscordID, err)
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted user id: %w", err)
		}
		user.ID = int(id)
		return nil
	}

	query := `UPDATE users SET discord_id = ?, display_name = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, user.DiscordID, user.DisplayName, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: user %d", ErrNoRowsAffected, user.ID))
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, discord_id, display_name, created_date FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteUserRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	query := `SELECT id, discord_id, display_name, created_date FROM users WHERE discord_id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, discordID))
}

func (r *sqliteUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user        models.User
		displayName sql.NullString
		created     string
	)
	err := row.Scan(&user.ID, &user.DiscordID, &displayName, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.DisplayName = displayName.String
	if user.CreatedDate, err = parseTime(created); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *sqliteUserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, discord_id, display_name, created_date FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var (
			user        models.User
			displayName sql.NullString
			created     string
		)
		if err := rows.Scan(&user.ID, &user.DiscordID, &displayName, &created); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.DisplayName = displayName.String
		if user.CreatedDate, err = parseTime(created); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (r *sqliteUserRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return result.RowsAffected()
}
