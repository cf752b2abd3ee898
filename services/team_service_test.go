package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeamValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "100")

	_, err := env.teams.CreateTeam(ctx, "  ", "ES", "guild-1", user.ID)
	assert.ErrorIs(t, err, ErrTeamNameRequired)

	_, err = env.teams.CreateTeam(ctx, "Elite Squad", "", "guild-1", user.ID)
	assert.ErrorIs(t, err, ErrTeamTagRequired)

	team, err := env.teams.CreateTeam(ctx, "Elite Squad", "ES", "guild-1", user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, team.CaptainID)

	// Второй состав на том же сервере — нельзя.
	_, err = env.teams.CreateTeam(ctx, "Second Squad", "SS", "guild-1", user.ID)
	assert.ErrorIs(t, err, ErrUserAlreadyInTeam)

	// На другом сервере — можно.
	_, err = env.teams.CreateTeam(ctx, "Second Squad", "SS", "guild-2", user.ID)
	assert.NoError(t, err)
}

func TestCreateTeamNameConflict(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.seedUser(t, "100")
	b := env.seedUser(t, "101")

	env.seedTeam(t, "Elite Squad", "ES", a)
	_, err := env.teams.CreateTeam(ctx, "Elite Squad", "ES", "guild-1", b.ID)
	assert.ErrorIs(t, err, ErrTeamNameConflict)
}

func TestEditTeamCaptainOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	outsider := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	_, err := env.teams.EditTeam(ctx, team.ID, outsider.ID, "Renamed", "")
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	updated, err := env.teams.EditTeam(ctx, team.ID, captain.ID, "Renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "ES", updated.Tag, "empty tag keeps the old value")
}

func TestLeaveTeam(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.AcceptInvite(ctx, invite.ID, member.ID))

	// Капитан с участниками сначала передаёт капитанство.
	err = env.teams.LeaveTeam(ctx, team.ID, captain.ID)
	assert.ErrorIs(t, err, ErrCaptainMustTransferFirst)

	// Рядовой участник выходит сразу.
	require.NoError(t, env.teams.LeaveTeam(ctx, team.ID, member.ID))
	err = env.teams.LeaveTeam(ctx, team.ID, member.ID)
	assert.ErrorIs(t, err, ErrUserNotTeamMember)

	// Капитан-одиночка распускает команду.
	require.NoError(t, env.teams.LeaveTeam(ctx, team.ID, captain.ID))
	_, err = env.teams.GetTeam(ctx, team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.AcceptInvite(ctx, invite.ID, member.ID))

	err = env.teams.RemoveMember(ctx, team.ID, member.ID, captain.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	err = env.teams.RemoveMember(ctx, team.ID, captain.ID, captain.ID)
	assert.ErrorIs(t, err, ErrCannotRemoveCaptain)

	require.NoError(t, env.teams.RemoveMember(ctx, team.ID, captain.ID, member.ID))
	members, err := env.teams.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestCaptaincyTransferFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.AcceptInvite(ctx, invite.ID, member.ID))

	// Без предложения подтверждать нечего.
	err = env.teams.ConfirmTransfer(ctx, team.ID, member.ID)
	assert.ErrorIs(t, err, ErrTransferNotProposed)

	err = env.teams.ProposeTransfer(ctx, team.ID, captain.ID, captain.ID)
	assert.ErrorIs(t, err, ErrSelfTransfer)

	err = env.teams.ProposeTransfer(ctx, team.ID, member.ID, captain.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	require.NoError(t, env.teams.ProposeTransfer(ctx, team.ID, captain.ID, member.ID))

	// Подтвердить может только получатель.
	err = env.teams.ConfirmTransfer(ctx, team.ID, captain.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	require.NoError(t, env.teams.ConfirmTransfer(ctx, team.ID, member.ID))

	loaded, err := env.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, loaded.CaptainID)

	// Обратная передача восстанавливает исходное состояние.
	require.NoError(t, env.teams.ProposeTransfer(ctx, team.ID, member.ID, captain.ID))
	require.NoError(t, env.teams.ConfirmTransfer(ctx, team.ID, captain.ID))

	loaded, err = env.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, captain.ID, loaded.CaptainID)
}

func TestCaptaincyTransferExpires(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.AcceptInvite(ctx, invite.ID, member.ID))

	svc := env.teams.(*teamService)
	now := time.Now()
	svc.now = func() time.Time { return now }

	require.NoError(t, env.teams.ProposeTransfer(ctx, team.ID, captain.ID, member.ID))

	svc.now = func() time.Time { return now.Add(transferTTL + time.Second) }
	err = env.teams.ConfirmTransfer(ctx, team.ID, member.ID)
	assert.ErrorIs(t, err, ErrTransferExpired)

	// Просроченное предложение сгорает и не подтверждается повторно.
	err = env.teams.ConfirmTransfer(ctx, team.ID, member.ID)
	assert.ErrorIs(t, err, ErrTransferNotProposed)

	loaded, err := env.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, captain.ID, loaded.CaptainID)
}

func TestDeclineTransfer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	captain := env.seedUser(t, "100")
	member := env.seedUser(t, "101")
	outsider := env.seedUser(t, "102")
	team := env.seedTeam(t, "Elite Squad", "ES", captain)

	invite, err := env.invites.IssueInvite(ctx, team.ID, captain.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, env.invites.AcceptInvite(ctx, invite.ID, member.ID))

	require.NoError(t, env.teams.ProposeTransfer(ctx, team.ID, captain.ID, member.ID))

	err = env.teams.DeclineTransfer(ctx, team.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	require.NoError(t, env.teams.DeclineTransfer(ctx, team.ID, member.ID))
	err = env.teams.ConfirmTransfer(ctx, team.ID, member.ID)
	assert.ErrorIs(t, err, ErrTransferNotProposed)
}
