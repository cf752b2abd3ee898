package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

// inviteDuration — срок действия приглашения (48 часов).
const inviteDuration = 48 * time.Hour

type InviteService interface {
	// IssueInvite — только капитан; получатель не должен состоять в команде
	// и не должен иметь действующего приглашения.
	IssueInvite(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.TeamInvite, error)

	// AcceptInvite переводит приглашение в accepted и добавляет членство.
	// Принять может только приглашённый пользователь.
	AcceptInvite(ctx context.Context, inviteID, currentUserID int) error
	DeclineInvite(ctx context.Context, inviteID, currentUserID int) error

	// RevokeInvite — только капитан команды приглашения.
	RevokeInvite(ctx context.Context, inviteID, currentUserID int) error
	ListTeamInvites(ctx context.Context, teamID, currentUserID int) ([]*models.TeamInvite, error)
}

type inviteService struct {
	inviteRepo     repositories.InviteRepository
	teamRepo       repositories.TeamRepository
	membershipRepo repositories.MembershipRepository

	now func() time.Time
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
) InviteService {
	return &inviteService{
		inviteRepo:     inviteRepo,
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		now:            time.Now,
	}
}

func (s *inviteService) IssueInvite(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.TeamInvite, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.CaptainID != currentUserID {
		return nil, ErrCaptainActionForbidden
	}

	if _, err := s.membershipRepo.Get(ctx, targetUserID, teamID); err == nil {
		return nil, ErrUserAlreadyInTeam
	} else if !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	pending, err := s.inviteRepo.GetPending(ctx, teamID, targetUserID)
	if err == nil {
		if !pending.Expired(s.now()) {
			return nil, ErrInviteAlreadyPending
		}
		// Просроченное зависшее приглашение помечаем лениво и выдаём новое.
		if err := s.inviteRepo.UpdateStatus(ctx, pending.ID, models.InviteStatusExpired); err != nil &&
			!errors.Is(err, repositories.ErrInviteNotPending) {
			return nil, fmt.Errorf("failed to expire invite %d: %w", pending.ID, err)
		}
	} else if !errors.Is(err, repositories.ErrInviteNotFound) {
		return nil, fmt.Errorf("failed to check pending invite: %w", err)
	}

	now := s.now().UTC()
	invite := &models.TeamInvite{
		TeamID:      teamID,
		UserID:      targetUserID,
		InvitedBy:   currentUserID,
		Status:      models.InviteStatusIssued,
		CreatedDate: now,
		ExpiresDate: now.Add(inviteDuration),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return invite, nil
}

func (s *inviteService) AcceptInvite(ctx context.Context, inviteID, currentUserID int) error {
	invite, err := s.getPendingInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.UserID != currentUserID {
		return ErrInviteNotForUser
	}
	if invite.Expired(s.now()) {
		if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteStatusExpired); err != nil &&
			!errors.Is(err, repositories.ErrInviteNotPending) {
			return fmt.Errorf("failed to expire invite %d: %w", invite.ID, err)
		}
		return ErrInviteExpired
	}

	// Сначала переводим статус условной UPDATE: повторное принятие или
	// гонка с отзывом отваливаются здесь.
	if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteStatusAccepted); err != nil {
		if errors.Is(err, repositories.ErrInviteNotPending) {
			return ErrInviteNotPending
		}
		return fmt.Errorf("failed to accept invite %d: %w", invite.ID, err)
	}

	membership := &models.TeamMembership{
		UserID: invite.UserID,
		TeamID: invite.TeamID,
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return fmt.Errorf("failed to add user %d to team %d: %w", invite.UserID, invite.TeamID, err)
	}
	return nil
}

func (s *inviteService) DeclineInvite(ctx context.Context, inviteID, currentUserID int) error {
	invite, err := s.getPendingInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.UserID != currentUserID {
		return ErrInviteNotForUser
	}

	if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteStatusDeclined); err != nil {
		if errors.Is(err, repositories.ErrInviteNotPending) {
			return ErrInviteNotPending
		}
		return fmt.Errorf("failed to decline invite %d: %w", invite.ID, err)
	}
	return nil
}

func (s *inviteService) RevokeInvite(ctx context.Context, inviteID, currentUserID int) error {
	invite, err := s.getPendingInvite(ctx, inviteID)
	if err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, invite.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", invite.TeamID, err)
	}
	if team.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}

	if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteStatusRevoked); err != nil {
		if errors.Is(err, repositories.ErrInviteNotPending) {
			return ErrInviteNotPending
		}
		return fmt.Errorf("failed to revoke invite %d: %w", invite.ID, err)
	}
	return nil
}

func (s *inviteService) ListTeamInvites(ctx context.Context, teamID, currentUserID int) ([]*models.TeamInvite, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.CaptainID != currentUserID {
		return nil, ErrCaptainActionForbidden
	}

	invites, err := s.inviteRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for team %d: %w", teamID, err)
	}

	// Показываем только действующие приглашения; просроченные помечаем лениво.
	active := make([]*models.TeamInvite, 0, len(invites))
	now := s.now()
	for _, invite := range invites {
		if invite.Status != models.InviteStatusIssued {
			continue
		}
		if invite.Expired(now) {
			if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteStatusExpired); err != nil &&
				!errors.Is(err, repositories.ErrInviteNotPending) {
				return nil, fmt.Errorf("failed to expire invite %d: %w", invite.ID, err)
			}
			continue
		}
		active = append(active, invite)
	}
	return active, nil
}

func (s *inviteService) getPendingInvite(ctx context.Context, inviteID int) (*models.TeamInvite, error) {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %d: %w", inviteID, err)
	}
	if invite.Status != models.InviteStatusIssued {
		return nil, ErrInviteNotPending
	}
	return invite, nil
}
