package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/models"
)

// Вставка членства идёт через общий insertMembership: при создании команды —
// внутри транзакции, при обычном Save — напрямую через *sql.DB.
func TestMembershipInsertSharedBetweenPaths(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSQLiteMembershipRepository(db)

	captain := seedUser(t, db, "100")
	recruit := seedUser(t, db, "101")
	team := seedTeam(t, db, "Alpha", captain)

	founder, err := repo.Get(ctx, captain.ID, team.ID)
	require.NoError(t, err)
	assert.False(t, founder.JoinedDate.IsZero())
	assert.Nil(t, founder.UpdatedDate)

	require.NoError(t, repo.Save(ctx, &models.TeamMembership{UserID: recruit.ID, TeamID: team.ID}))

	members, err := repo.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// Повторный Save существующего членства обновляет, а не дублирует.
	require.NoError(t, repo.Save(ctx, &models.TeamMembership{UserID: recruit.ID, TeamID: team.ID}))
	updated, err := repo.Get(ctx, recruit.ID, team.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.UpdatedDate)
}
