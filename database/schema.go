package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements создают полный набор таблиц бота. Только CREATE TABLE
// IF NOT EXISTS — схема никогда не мигрируется на месте.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS logs (
		log_id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		level TEXT NOT NULL,
		logger_name TEXT NOT NULL,
		message TEXT NOT NULL,
		module TEXT,
		function TEXT,
		line_number INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		discord_id TEXT NOT NULL UNIQUE,
		display_name TEXT,
		created_date TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		series TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS maps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		mode TEXT NOT NULL,
		game_id INTEGER NOT NULL,
		FOREIGN KEY (game_id) REFERENCES games(id)
	)`,
	`CREATE TABLE IF NOT EXISTS match_formats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		max_players INTEGER NOT NULL,
		match_count INTEGER NOT NULL,
		map_list_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS permitted_maps (
		match_format_id INTEGER NOT NULL,
		map_id INTEGER NOT NULL,
		PRIMARY KEY (match_format_id, map_id),
		FOREIGN KEY (match_format_id) REFERENCES match_formats(id),
		FOREIGN KEY (map_id) REFERENCES maps(id)
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		tag TEXT NOT NULL,
		captain_id INTEGER NOT NULL,
		created_date TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		discord_server TEXT NOT NULL,
		UNIQUE (name, tag, discord_server),
		FOREIGN KEY (captain_id) REFERENCES users(id),
		FOREIGN KEY (created_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS team_membership (
		user_id INTEGER NOT NULL,
		team_id INTEGER NOT NULL,
		joined_date TEXT NOT NULL,
		updated_date TEXT,
		PRIMARY KEY (user_id, team_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (team_id) REFERENCES teams(id)
	)`,
	`CREATE TABLE IF NOT EXISTS team_invites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		invited_by INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'issued',
		created_date TEXT NOT NULL,
		expires_date TEXT NOT NULL,
		updated_date TEXT,
		FOREIGN KEY (team_id) REFERENCES teams(id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (invited_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS leagues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		game_id INTEGER NOT NULL,
		match_format INTEGER NOT NULL,
		discord_server TEXT,
		created_date TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		updated_date TEXT,
		updated_by INTEGER,
		FOREIGN KEY (game_id) REFERENCES games(id),
		FOREIGN KEY (match_format) REFERENCES match_formats(id),
		FOREIGN KEY (created_by) REFERENCES users(id),
		FOREIGN KEY (updated_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS league_membership (
		league_id INTEGER NOT NULL,
		team_id INTEGER NOT NULL,
		joined_date TEXT NOT NULL,
		joined_by INTEGER NOT NULL,
		PRIMARY KEY (league_id, team_id),
		FOREIGN KEY (league_id) REFERENCES leagues(id),
		FOREIGN KEY (team_id) REFERENCES teams(id),
		FOREIGN KEY (joined_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		league_id INTEGER NOT NULL,
		challenging_team INTEGER NOT NULL,
		defending_team INTEGER NOT NULL,
		issued_date TEXT NOT NULL,
		issued_by INTEGER NOT NULL,
		match_date TEXT NOT NULL,
		winning_team INTEGER,
		match_accepted INTEGER NOT NULL DEFAULT 0,
		match_cancelled INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (league_id) REFERENCES leagues(id),
		FOREIGN KEY (challenging_team) REFERENCES teams(id),
		FOREIGN KEY (defending_team) REFERENCES teams(id),
		FOREIGN KEY (winning_team) REFERENCES teams(id),
		FOREIGN KEY (issued_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS match_results (
		match_id INTEGER NOT NULL,
		round INTEGER NOT NULL,
		map_id INTEGER NOT NULL,
		challenging_team_score INTEGER NOT NULL,
		defending_team_score INTEGER NOT NULL,
		winning_team INTEGER NOT NULL,
		PRIMARY KEY (match_id, round),
		FOREIGN KEY (match_id) REFERENCES matches(id),
		FOREIGN KEY (map_id) REFERENCES maps(id),
		FOREIGN KEY (winning_team) REFERENCES teams(id)
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scope TEXT NOT NULL,
		discord_user_id TEXT,
		discord_server_id TEXT,
		discord_role_id TEXT,
		created_date TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		updated_date TEXT,
		updated_by INTEGER
	)`,
}

// InitSchema creates every table the bot needs if it does not already exist.
// Safe to run on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialise schema: %w", err)
		}
	}
	return nil
}
