package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/models"
)

func TestInviteStatusTransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSQLiteInviteRepository(db)

	captain := seedUser(t, db, "100")
	target := seedUser(t, db, "101")
	team := seedTeam(t, db, "Eclipse", captain)

	invite := &models.TeamInvite{
		TeamID:      team.ID,
		UserID:      target.ID,
		InvitedBy:   captain.ID,
		ExpiresDate: time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, invite))
	require.NotZero(t, invite.ID)
	assert.Equal(t, models.InviteStatusIssued, invite.Status)

	pending, err := repo.GetPending(ctx, team.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, invite.ID, pending.ID)

	require.NoError(t, repo.UpdateStatus(ctx, invite.ID, models.InviteStatusAccepted))

	// Принятое приглашение нельзя перевести ещё раз: гонка accept/revoke
	// разрешается в пользу первого.
	err = repo.UpdateStatus(ctx, invite.ID, models.InviteStatusRevoked)
	assert.ErrorIs(t, err, ErrInviteNotPending)

	loaded, err := repo.GetByID(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteStatusAccepted, loaded.Status)
	assert.NotNil(t, loaded.UpdatedDate)

	_, err = repo.GetPending(ctx, team.ID, target.ID)
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteCreateRejectsMissingTeam(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSQLiteInviteRepository(db)

	user := seedUser(t, db, "100")
	invite := &models.TeamInvite{
		TeamID:      9999,
		UserID:      user.ID,
		InvitedBy:   user.ID,
		ExpiresDate: time.Now().Add(time.Hour),
	}
	err := repo.Create(ctx, invite)
	assert.Error(t, err)
}
