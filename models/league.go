package models

import "time"

type League struct {
	ID            int        `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	GameID        int        `json:"game_id" db:"game_id"`
	MatchFormatID int        `json:"match_format" db:"match_format"`
	DiscordServer string     `json:"discord_server,omitempty" db:"discord_server"`
	CreatedDate   time.Time  `json:"created_date" db:"created_date"`
	CreatedBy     int        `json:"created_by" db:"created_by"`
	UpdatedDate   *time.Time `json:"updated_date,omitempty" db:"updated_date"`
	UpdatedBy     *int       `json:"updated_by,omitempty" db:"updated_by"`
}

// LeagueMembership — участие команды в лиге (составной ключ).
type LeagueMembership struct {
	LeagueID   int       `json:"league_id" db:"league_id"`
	TeamID     int       `json:"team_id" db:"team_id"`
	JoinedDate time.Time `json:"joined_date" db:"joined_date"`
	JoinedBy   int       `json:"joined_by" db:"joined_by"`
}
