package models

type Game struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Series string `json:"series,omitempty" db:"series"`
}

type Map struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Mode   string `json:"mode" db:"mode"`
	GameID int    `json:"game_id" db:"game_id"`
}

type MatchFormat struct {
	ID         int `json:"id" db:"id"`
	MaxPlayers int `json:"max_players" db:"max_players"`
	MatchCount int `json:"match_count" db:"match_count"`
	MapListID  int `json:"map_list_id" db:"map_list_id"`
}

// PermittedMap — карта, разрешённая для формата матча (составной ключ).
type PermittedMap struct {
	MatchFormatID int `json:"match_format_id" db:"match_format_id"`
	MapID         int `json:"map_id" db:"map_id"`
}
