package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

// transferTTL — срок действия предложения передачи капитанства.
const transferTTL = 5 * time.Minute

type TeamService interface {
	CreateTeam(ctx context.Context, name, tag, discordServer string, creatorUserID int) (*models.Team, error)
	EditTeam(ctx context.Context, teamID, currentUserID int, name, tag string) (*models.Team, error)
	GetTeam(ctx context.Context, teamID int) (*models.Team, error)
	ListTeams(ctx context.Context, discordServer string) ([]*models.Team, error)
	ListMembers(ctx context.Context, teamID int) ([]models.User, error)

	// LeaveTeam: рядовой участник выходит сразу; капитан единственного состава
	// распускает команду; капитан с участниками обязан сначала передать
	// капитанство.
	LeaveTeam(ctx context.Context, teamID, userID int) error
	RemoveMember(ctx context.Context, teamID, currentUserID, targetUserID int) error

	// Передача капитанства в два шага: капитан предлагает, получатель
	// подтверждает. Предложение живёт transferTTL и хранится только в памяти.
	ProposeTransfer(ctx context.Context, teamID, currentUserID, targetUserID int) error
	ConfirmTransfer(ctx context.Context, teamID, currentUserID int) error
	DeclineTransfer(ctx context.Context, teamID, currentUserID int) error
}

type transferProposal struct {
	fromUserID int
	toUserID   int
	proposedAt time.Time
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	membershipRepo repositories.MembershipRepository
	userRepo       repositories.UserRepository

	mu        sync.Mutex
	proposals map[int]transferProposal // teamID -> активное предложение
	now       func() time.Time
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
	userRepo repositories.UserRepository,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		proposals:      make(map[int]transferProposal),
		now:            time.Now,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, name, tag, discordServer string, creatorUserID int) (*models.Team, error) {
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if tag == "" {
		return nil, ErrTeamTagRequired
	}

	// Пользователь может состоять только в одной команде на сервере.
	memberships, err := s.membershipRepo.ListByUser(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships of user %d: %w", creatorUserID, err)
	}
	for _, m := range memberships {
		existing, err := s.teamRepo.GetByID(ctx, m.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get team %d: %w", m.TeamID, err)
		}
		if existing.DiscordServer == discordServer {
			return nil, ErrUserAlreadyInTeam
		}
	}

	team := &models.Team{
		Name:          name,
		Tag:           tag,
		CaptainID:     creatorUserID,
		CreatedBy:     creatorUserID,
		DiscordServer: discordServer,
	}
	if err := s.teamRepo.CreateWithCaptain(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) EditTeam(ctx context.Context, teamID, currentUserID int, name, tag string) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CaptainID != currentUserID {
		return nil, ErrCaptainActionForbidden
	}

	if name = strings.TrimSpace(name); name != "" {
		team.Name = name
	}
	if tag = strings.TrimSpace(tag); tag != "" {
		team.Tag = tag
	}
	if team.Name == "" {
		return nil, ErrTeamNameRequired
	}
	if team.Tag == "" {
		return nil, ErrTeamTagRequired
	}

	if err := s.teamRepo.Save(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	captain, err := s.userRepo.GetByID(ctx, team.CaptainID)
	if err == nil {
		team.Captain = captain
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get captain of team %d: %w", teamID, err)
	}

	members, err := s.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, discordServer string) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByServer(ctx, discordServer)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) ListMembers(ctx context.Context, teamID int) ([]models.User, error) {
	memberships, err := s.membershipRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}

	members := make([]models.User, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.userRepo.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get member %d: %w", m.UserID, err)
		}
		members = append(members, *user)
	}
	return members, nil
}

func (s *teamService) LeaveTeam(ctx context.Context, teamID, userID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}

	if _, err := s.membershipRepo.Get(ctx, userID, teamID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrUserNotTeamMember
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}

	if team.CaptainID == userID {
		count, err := s.membershipRepo.CountByTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("failed to count members of team %d: %w", teamID, err)
		}
		if count > 1 {
			return ErrCaptainMustTransferFirst
		}
		// Капитан — последний участник: команда распускается целиком.
		if err := s.teamRepo.DeleteWithMembers(ctx, teamID); err != nil {
			return fmt.Errorf("failed to disband team %d: %w", teamID, err)
		}
		s.dropProposal(teamID)
		return nil
	}

	affected, err := s.membershipRepo.DeleteNonCaptain(ctx, userID, teamID)
	if err != nil {
		return fmt.Errorf("failed to leave team %d: %w", teamID, err)
	}
	if affected == 0 {
		// Между проверкой и удалением пользователь стал капитаном.
		return ErrCaptainMustTransferFirst
	}
	return nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, currentUserID, targetUserID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}
	if team.CaptainID == targetUserID {
		return ErrCannotRemoveCaptain
	}

	affected, err := s.membershipRepo.DeleteNonCaptain(ctx, targetUserID, teamID)
	if err != nil {
		return fmt.Errorf("failed to remove user %d from team %d: %w", targetUserID, teamID, err)
	}
	if affected == 0 {
		return ErrUserNotTeamMember
	}
	return nil
}

func (s *teamService) ProposeTransfer(ctx context.Context, teamID, currentUserID, targetUserID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainID != currentUserID {
		return ErrCaptainActionForbidden
	}
	if currentUserID == targetUserID {
		return ErrSelfTransfer
	}

	if _, err := s.membershipRepo.Get(ctx, targetUserID, teamID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrUserNotTeamMember
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[teamID] = transferProposal{
		fromUserID: currentUserID,
		toUserID:   targetUserID,
		proposedAt: s.now(),
	}
	return nil
}

func (s *teamService) ConfirmTransfer(ctx context.Context, teamID, currentUserID int) error {
	s.mu.Lock()
	proposal, ok := s.proposals[teamID]
	s.mu.Unlock()
	if !ok {
		return ErrTransferNotProposed
	}

	// Подтвердить может только получатель — не тот, кто предложил.
	if proposal.toUserID != currentUserID {
		return ErrForbiddenOperation
	}
	if s.now().Sub(proposal.proposedAt) > transferTTL {
		s.dropProposal(teamID)
		return ErrTransferExpired
	}

	err := s.teamRepo.TransferCaptain(ctx, teamID, proposal.fromUserID, proposal.toUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRowsAffected) {
			// Капитан сменился, пока предложение висело.
			s.dropProposal(teamID)
			return ErrTransferNotProposed
		}
		return fmt.Errorf("failed to transfer captaincy of team %d: %w", teamID, err)
	}
	s.dropProposal(teamID)
	return nil
}

func (s *teamService) DeclineTransfer(ctx context.Context, teamID, currentUserID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[teamID]
	if !ok {
		return ErrTransferNotProposed
	}
	if proposal.fromUserID != currentUserID && proposal.toUserID != currentUserID {
		return ErrForbiddenOperation
	}
	delete(s.proposals, teamID)
	return nil
}

func (s *teamService) dropProposal(teamID int) {
	s.mu.Lock()
	delete(s.proposals, teamID)
	s.mu.Unlock()
}

func (s *teamService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}
