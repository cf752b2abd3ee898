package models

import "time"

type InviteStatus string

// Жизненный цикл приглашения: issued -> accepted | declined | revoked.
// expired выставляется лениво при первом обращении после истечения срока.
const (
	InviteStatusIssued   InviteStatus = "issued"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusRevoked  InviteStatus = "revoked"
	InviteStatusExpired  InviteStatus = "expired"
)

type TeamInvite struct {
	ID          int          `json:"id" db:"id"`
	TeamID      int          `json:"team_id" db:"team_id"`
	UserID      int          `json:"user_id" db:"user_id"`
	InvitedBy   int          `json:"invited_by" db:"invited_by"`
	Status      InviteStatus `json:"status" db:"status"`
	CreatedDate time.Time    `json:"created_date" db:"created_date"`
	ExpiresDate time.Time    `json:"expires_date" db:"expires_date"`
	UpdatedDate *time.Time   `json:"updated_date,omitempty" db:"updated_date"`
}

// Expired reports whether the invite's validity window has passed.
func (i *TeamInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresDate)
}
