package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/database"
	"github.com/voltstriker/scrimbot/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "repo_test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.InitSchema(context.Background(), db))
	return db
}

func seedUser(t *testing.T, db *sql.DB, discordID string) *models.User {
	t.Helper()

	user := &models.User{DiscordID: discordID, DisplayName: "user-" + discordID}
	require.NoError(t, NewSQLiteUserRepository(db).Save(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func seedTeam(t *testing.T, db *sql.DB, name string, captain *models.User) *models.Team {
	t.Helper()

	team := &models.Team{
		Name:          name,
		Tag:           name[:min(3, len(name))],
		CaptainID:     captain.ID,
		CreatedBy:     captain.ID,
		DiscordServer: "guild-1",
	}
	require.NoError(t, NewSQLiteTeamRepository(db).CreateWithCaptain(context.Background(), team))
	require.NotZero(t, team.ID)
	return team
}
