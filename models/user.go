package models

import "time"

// User — пользователь Discord, известный боту. Snowflake хранится как текст,
// чтобы не терять точность больших идентификаторов.
type User struct {
	ID          int       `json:"id" db:"id"`
	DiscordID   string    `json:"discord_id" db:"discord_id"`
	DisplayName string    `json:"display_name,omitempty" db:"display_name"`
	CreatedDate time.Time `json:"created_date" db:"created_date"`
}
