package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voltstriker/scrimbot/database"
	"github.com/voltstriker/scrimbot/models"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrMapNotFound    = errors.New("map not found")
	ErrFormatNotFound = errors.New("match format not found")
)

// GameRepository обслуживает справочные данные: игры, карты, форматы матчей
// и разрешённые карты форматов.
type GameRepository interface {
	SaveGame(ctx context.Context, game *models.Game) error
	GetGameByID(ctx context.Context, id int) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	DeleteGame(ctx context.Context, id int) (int64, error)

	SaveMap(ctx context.Context, m *models.Map) error
	GetMapByID(ctx context.Context, id int) (*models.Map, error)
	ListMapsByGame(ctx context.Context, gameID int) ([]*models.Map, error)

	SaveFormat(ctx context.Context, format *models.MatchFormat) error
	GetFormatByID(ctx context.Context, id int) (*models.MatchFormat, error)

	PermitMap(ctx context.Context, permitted *models.PermittedMap) error
	IsMapPermitted(ctx context.Context, formatID, mapID int) (bool, error)
	ListPermittedMaps(ctx context.Context, formatID int) ([]*models.PermittedMap, error)
}

type sqliteGameRepository struct {
	db *sql.DB
}

func NewSQLiteGameRepository(db *sql.DB) GameRepository {
	return &sqliteGameRepository{db: db}
}

func (r *sqliteGameRepository) SaveGame(ctx context.Context, game *models.Game) error {
	if game.ID == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO games (name, series) VALUES (?, ?)`, game.Name, game.Series)
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted game id: %w", err)
		}
		game.ID = int(id)
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE games SET name = ?, series = ? WHERE id = ?`, game.Name, game.Series, game.ID)
	if err != nil {
		return fmt.Errorf("failed to update game %d: %w", game.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: game %d", ErrNoRowsAffected, game.ID))
}

func (r *sqliteGameRepository) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	var (
		game   models.Game
		series sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, series FROM games WHERE id = ?`, id).Scan(&game.ID, &game.Name, &series)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	game.Series = series.String
	return &game, nil
}

func (r *sqliteGameRepository) ListGames(ctx context.Context) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, series FROM games ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		var (
			game   models.Game
			series sql.NullString
		)
		if err := rows.Scan(&game.ID, &game.Name, &series); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		game.Series = series.String
		games = append(games, &game)
	}
	return games, rows.Err()
}

func (r *sqliteGameRepository) DeleteGame(ctx context.Context, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: game %d is referenced by maps or leagues: %w",
				database.ErrConstraintViolation, id, err)
		}
		return 0, fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return result.RowsAffected()
}

func (r *sqliteGameRepository) SaveMap(ctx context.Context, m *models.Map) error {
	if m.ID == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO maps (name, mode, game_id) VALUES (?, ?, ?)`, m.Name, m.Mode, m.GameID)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: map references missing game %d: %w",
					database.ErrConstraintViolation, m.GameID, err)
			}
			return fmt.Errorf("failed to insert map: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted map id: %w", err)
		}
		m.ID = int(id)
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE maps SET name = ?, mode = ?, game_id = ? WHERE id = ?`, m.Name, m.Mode, m.GameID, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update map %d: %w", m.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: map %d", ErrNoRowsAffected, m.ID))
}

func (r *sqliteGameRepository) GetMapByID(ctx context.Context, id int) (*models.Map, error) {
	var m models.Map
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, mode, game_id FROM maps WHERE id = ?`, id).Scan(&m.ID, &m.Name, &m.Mode, &m.GameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to scan map: %w", err)
	}
	return &m, nil
}

func (r *sqliteGameRepository) ListMapsByGame(ctx context.Context, gameID int) ([]*models.Map, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, mode, game_id FROM maps WHERE game_id = ? ORDER BY name`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps for game %d: %w", gameID, err)
	}
	defer rows.Close()

	maps := make([]*models.Map, 0)
	for rows.Next() {
		var m models.Map
		if err := rows.Scan(&m.ID, &m.Name, &m.Mode, &m.GameID); err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		maps = append(maps, &m)
	}
	return maps, rows.Err()
}

func (r *sqliteGameRepository) SaveFormat(ctx context.Context, format *models.MatchFormat) error {
	if format.ID == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO match_formats (max_players, match_count, map_list_id) VALUES (?, ?, ?)`,
			format.MaxPlayers, format.MatchCount, format.MapListID)
		if err != nil {
			return fmt.Errorf("failed to insert match format: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted format id: %w", err)
		}
		format.ID = int(id)
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE match_formats SET max_players = ?, match_count = ?, map_list_id = ? WHERE id = ?`,
		format.MaxPlayers, format.MatchCount, format.MapListID, format.ID)
	if err != nil {
		return fmt.Errorf("failed to update match format %d: %w", format.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: match format %d", ErrNoRowsAffected, format.ID))
}

func (r *sqliteGameRepository) GetFormatByID(ctx context.Context, id int) (*models.MatchFormat, error) {
	var (
		format  models.MatchFormat
		mapList sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, max_players, match_count, map_list_id FROM match_formats WHERE id = ?`, id).Scan(
		&format.ID, &format.MaxPlayers, &format.MatchCount, &mapList)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormatNotFound
		}
		return nil, fmt.Errorf("failed to scan match format: %w", err)
	}
	format.MapListID = int(mapList.Int64)
	return &format, nil
}

func (r *sqliteGameRepository) PermitMap(ctx context.Context, permitted *models.PermittedMap) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM permitted_maps WHERE match_format_id = ? AND map_id = ?`,
		permitted.MatchFormatID, permitted.MapID).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to probe permitted map: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO permitted_maps (match_format_id, map_id) VALUES (?, ?)`,
		permitted.MatchFormatID, permitted.MapID)
	if err != nil {
		if database.IsConstraintViolation(err) {
			return fmt.Errorf("%w: format %d map %d: %w",
				database.ErrConstraintViolation, permitted.MatchFormatID, permitted.MapID, err)
		}
		return fmt.Errorf("failed to insert permitted map: %w", err)
	}
	return nil
}

func (r *sqliteGameRepository) IsMapPermitted(ctx context.Context, formatID, mapID int) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM permitted_maps WHERE match_format_id = ? AND map_id = ?`, formatID, mapID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check permitted map: %w", err)
	}
	return true, nil
}

func (r *sqliteGameRepository) ListPermittedMaps(ctx context.Context, formatID int) ([]*models.PermittedMap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_format_id, map_id FROM permitted_maps WHERE match_format_id = ?`, formatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permitted maps for format %d: %w", formatID, err)
	}
	defer rows.Close()

	permitted := make([]*models.PermittedMap, 0)
	for rows.Next() {
		var p models.PermittedMap
		if err := rows.Scan(&p.MatchFormatID, &p.MapID); err != nil {
			return nil, fmt.Errorf("failed to scan permitted map: %w", err)
		}
		permitted = append(permitted, &p)
	}
	return permitted, rows.Err()
}
