package models

import "time"

type Team struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Tag           string    `json:"tag" db:"tag"`
	CaptainID     int       `json:"captain_id" db:"captain_id"`
	CreatedDate   time.Time `json:"created_date" db:"created_date"`
	CreatedBy     int       `json:"created_by" db:"created_by"`
	DiscordServer string    `json:"discord_server" db:"discord_server"`

	Captain *User  `json:"captain,omitempty" db:"-"`
	Members []User `json:"members,omitempty" db:"-"`
}

// TeamMembership — членство пользователя в команде (составной ключ).
type TeamMembership struct {
	UserID      int        `json:"user_id" db:"user_id"`
	TeamID      int        `json:"team_id" db:"team_id"`
	JoinedDate  time.Time  `json:"joined_date" db:"joined_date"`
	UpdatedDate *time.Time `json:"updated_date,omitempty" db:"updated_date"`
}
