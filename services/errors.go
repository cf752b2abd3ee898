package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге ответов бота.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed  = errors.New("validation failed") // Общая ошибка валидации
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrTeamTagRequired   = errors.New("team tag is required")
	ErrUserAlreadyInTeam = errors.New("user is already a member of this team")
	ErrUserNotTeamMember = errors.New("user is not a member of this team")

	// Ошибки капитанства
	ErrCannotRemoveCaptain      = errors.New("cannot remove the team captain")
	ErrCaptainMustTransferFirst = errors.New("captain must transfer captaincy before leaving")
	ErrSelfTransfer             = errors.New("cannot transfer captaincy to yourself")
	ErrTransferNotProposed      = errors.New("no captaincy transfer has been proposed")
	ErrTransferExpired          = errors.New("captaincy transfer proposal has expired")

	// Ошибки приглашений
	ErrInviteNotPending     = errors.New("invite is no longer pending")
	ErrInviteNotForUser     = errors.New("invite was issued to a different user")
	ErrInviteExpired        = errors.New("invite has expired")
	ErrInviteAlreadyPending = errors.New("user already has a pending invite to this team")

	// Ошибки матчей и лиг
	ErrTeamsNotInSameLeague = errors.New("teams do not share a league")
	ErrSameTeamChallenge    = errors.New("a team cannot challenge itself")
	ErrMatchAlreadyAccepted = errors.New("match has already been accepted")
	ErrMatchCancelled       = errors.New("match has been cancelled")
	ErrMapNotPermitted      = errors.New("map is not permitted for this match format")
	ErrResultTied           = errors.New("round result cannot be a tie")

	// Ошибки конфликтов
	ErrTeamNameConflict = errors.New("team name and tag are already in use on this server")

	// Ошибки авторизации
	ErrNotAuthorized          = errors.New("user is not a bot administrator")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")
	ErrSelfLeaveForbidden     = errors.New("only the team captain or the member themselves can perform this action")

	// Ошибки, специфичные для сущностей (дают больше контекста, чем ErrNotFound)
	ErrUserNotFound   = errors.New("user not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrLeagueNotFound = errors.New("league not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrMapNotFound    = errors.New("map not found")
	ErrFormatNotFound = errors.New("match format not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrGrantNotFound  = errors.New("admin grant not found")
)
