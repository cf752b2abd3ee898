package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/models"
)

func TestIssueInviteRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	// Только капитан приглашает.
	_, err := env.invites.IssueInvite(ctx, team.ID, member.ID, member.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	// Капитана приглашать некуда — он уже в команде.
	_, err = env.invites.IssueInvite(ctx, team.ID, captain.ID, captain.ID)
	assert.ErrorIs(t, err, ErrUserAlreadyInTeam)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusIssued, invite.Status)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), invite.ExpiresDate, time.Minute)

	// Дубль действующего приглашения запрещён.
	_, err = env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	assert.ErrorIs(t, err, ErrInviteAlreadyPending)
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	outsider := env.seedUser(t, "102")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)

	// Принять может только адресат.
	err = env.invites.AcceptInvite(ctx, invite.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrInviteNotForUser)

	require.NoError(t, env.invites.AcceptInvite(ctx, invite.ID, member.ID))

	members, err := env.teams.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// Повторное принятие не проходит.
	err = env.invites.AcceptInvite(ctx, invite.ID, member.ID)
	assert.ErrorIs(t, err, ErrInviteNotPending)
}

func TestAcceptExpiredInvite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	svc := env.invites.(*inviteService)
	now := time.Now()
	svc.now = func() time.Time { return now }

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(inviteDuration + time.Hour) }
	err = env.invites.AcceptInvite(ctx, invite.ID, member.ID)
	assert.ErrorIs(t, err, ErrInviteExpired)

	// Статус выставлен лениво, членство не появилось.
	members, err := env.teams.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	// После истечения можно выдать новое приглашение.
	_, err = env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	assert.NoError(t, err)
}

func TestDeclineAndRevokeInvite(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.DeclineInvite(ctx, invite.ID, member.ID))

	// Отклонённое приглашение отозвать нельзя.
	err = env.invites.RevokeInvite(ctx, invite.ID, captain.ID)
	assert.ErrorIs(t, err, ErrInviteNotPending)

	second, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)

	// Отзыв — только капитан.
	err = env.invites.RevokeInvite(ctx, second.ID, member.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	require.NoError(t, env.invites.RevokeInvite(ctx, second.ID, captain.ID))
	err = env.invites.AcceptInvite(ctx, second.ID, member.ID)
	assert.ErrorIs(t, err, ErrInviteNotPending)
}

func TestListTeamInvitesFiltersInactive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	a := env.seedUser(t, "101")
	b := env.seedUser(t, "102")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	first, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.DeclineInvite(ctx, first.ID, a.ID))

	second, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, b.ID)
	require.NoError(t, err)

	_, err = env.invites.ListTeamInvites(ctx, team.ID, a.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	active, err := env.invites.ListTeamInvites(ctx, team.ID, captain.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}
