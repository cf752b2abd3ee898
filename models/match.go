package models

import "time"

type Match struct {
	ID              int       `json:"id" db:"id"`
	LeagueID        int       `json:"league_id" db:"league_id"`
	ChallengingTeam int       `json:"challenging_team" db:"challenging_team"`
	DefendingTeam   int       `json:"defending_team" db:"defending_team"`
	IssuedDate      time.Time `json:"issued_date" db:"issued_date"`
	IssuedBy        int       `json:"issued_by" db:"issued_by"`
	MatchDate       time.Time `json:"match_date" db:"match_date"`
	WinningTeam     *int      `json:"winning_team,omitempty" db:"winning_team"`
	Accepted        bool      `json:"match_accepted" db:"match_accepted"`
	Cancelled       bool      `json:"match_cancelled" db:"match_cancelled"`
}

// MatchResult — результат одного раунда матча (составной ключ match+round).
type MatchResult struct {
	MatchID              int `json:"match_id" db:"match_id"`
	Round                int `json:"round" db:"round"`
	MapID                int `json:"map_id" db:"map_id"`
	ChallengingTeamScore int `json:"challenging_team_score" db:"challenging_team_score"`
	DefendingTeamScore   int `json:"defending_team_score" db:"defending_team_score"`
	WinningTeam          int `json:"winning_team" db:"winning_team"`
}
