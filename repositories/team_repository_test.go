package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/models"
)

func TestCreateWithCaptain(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	captain := seedUser(t, db, "100")

	team := seedTeam(t, db, "Eclipse", captain)

	// Основатель сразу состоит в команде.
	membership, err := NewSQLiteMembershipRepository(db).Get(ctx, captain.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, captain.ID, membership.UserID)

	loaded, err := NewSQLiteTeamRepository(db).GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eclipse", loaded.Name)
	assert.Equal(t, captain.ID, loaded.CaptainID)
	assert.False(t, loaded.CreatedDate.IsZero())
}

func TestCreateWithCaptainUniqueConflict(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	captain := seedUser(t, db, "100")
	other := seedUser(t, db, "101")

	first := seedTeam(t, db, "Eclipse", captain)

	dup := *first
	dup.ID = 0
	dup.CaptainID = other.ID
	dup.CreatedBy = other.ID
	err := NewSQLiteTeamRepository(db).CreateWithCaptain(ctx, &dup)
	assert.ErrorIs(t, err, ErrTeamNameConflict)

	// Неудачная вставка не оставляет членства.
	_, err = NewSQLiteMembershipRepository(db).Get(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestTransferCaptainIsConditional(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSQLiteTeamRepository(db)

	captain := seedUser(t, db, "100")
	member := seedUser(t, db, "101")
	team := seedTeam(t, db, "Eclipse", captain)

	require.NoError(t, repo.TransferCaptain(ctx, team.ID, captain.ID, member.ID))

	loaded, err := repo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, loaded.CaptainID)

	// Повтор от прежнего капитана не проходит: условие captain_id уже не выполняется.
	err = repo.TransferCaptain(ctx, team.ID, captain.ID, member.ID)
	assert.ErrorIs(t, err, ErrNoRowsAffected)

	loaded, err = repo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, loaded.CaptainID, "exactly one captain at all times")
}

func TestDeleteNonCaptain(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	membershipRepo := NewSQLiteMembershipRepository(db)

	captain := seedUser(t, db, "100")
	member := seedUser(t, db, "101")
	team := seedTeam(t, db, "Eclipse", captain)

	require.NoError(t, membershipRepo.Save(ctx, &models.TeamMembership{UserID: member.ID, TeamID: team.ID}))

	// Капитан защищён условной DELETE.
	affected, err := membershipRepo.DeleteNonCaptain(ctx, captain.ID, team.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = membershipRepo.DeleteNonCaptain(ctx, member.ID, team.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	count, err := membershipRepo.CountByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteWithMembers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	teamRepo := NewSQLiteTeamRepository(db)
	membershipRepo := NewSQLiteMembershipRepository(db)

	captain := seedUser(t, db, "100")
	team := seedTeam(t, db, "Eclipse", captain)

	require.NoError(t, teamRepo.DeleteWithMembers(ctx, team.ID))

	_, err := teamRepo.GetByID(ctx, team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	count, err := membershipRepo.CountByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Повторное удаление сообщает об отсутствии команды.
	err = teamRepo.DeleteWithMembers(ctx, team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestUserSaveBindsInsertedID(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSQLiteUserRepository(db)

	user := &models.User{DiscordID: "2045"}
	require.NoError(t, repo.Save(ctx, user))
	require.NotZero(t, user.ID)

	user.DisplayName = "Volt"
	require.NoError(t, repo.Save(ctx, user))

	loaded, err := repo.GetByDiscordID(ctx, "2045")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
	assert.Equal(t, "Volt", loaded.DisplayName)

	dup := &models.User{DiscordID: "2045"}
	err = repo.Save(ctx, dup)
	assert.ErrorIs(t, err, ErrUserConflict)
}
