package models

import "time"

type AdminScope string

const (
	AdminScopeUser AdminScope = "user"
	AdminScopeRole AdminScope = "role"
)

// AdminGrant — право администратора бота, привязанное либо к пользователю,
// либо к роли в пределах сервера.
type AdminGrant struct {
	ID              int        `json:"id" db:"id"`
	Scope           AdminScope `json:"scope" db:"scope"`
	DiscordUserID   string     `json:"discord_user_id,omitempty" db:"discord_user_id"`
	DiscordServerID string     `json:"discord_server_id,omitempty" db:"discord_server_id"`
	DiscordRoleID   string     `json:"discord_role_id,omitempty" db:"discord_role_id"`
	CreatedDate     time.Time  `json:"created_date" db:"created_date"`
	CreatedBy       int        `json:"created_by" db:"created_by"`
	UpdatedDate     *time.Time `json:"updated_date,omitempty" db:"updated_date"`
	UpdatedBy       *int       `json:"updated_by,omitempty" db:"updated_by"`
}
