package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/database"
	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/repositories"
)

// testEnv собирает сервисный слой поверх настоящей базы во временном файле.
type testEnv struct {
	db *sql.DB

	users   UserService
	teams   TeamService
	invites InviteService
	leagues LeagueService
	matches MatchService
	admins  AdminService

	userRepo       repositories.UserRepository
	teamRepo       repositories.TeamRepository
	membershipRepo repositories.MembershipRepository
	inviteRepo     repositories.InviteRepository
	leagueRepo     repositories.LeagueRepository
	gameRepo       repositories.GameRepository
	matchRepo      repositories.MatchRepository
	adminRepo      repositories.AdminRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "service_test.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.InitSchema(context.Background(), db))

	env := &testEnv{
		db:             db,
		userRepo:       repositories.NewSQLiteUserRepository(db),
		teamRepo:       repositories.NewSQLiteTeamRepository(db),
		membershipRepo: repositories.NewSQLiteMembershipRepository(db),
		inviteRepo:     repositories.NewSQLiteInviteRepository(db),
		leagueRepo:     repositories.NewSQLiteLeagueRepository(db),
		gameRepo:       repositories.NewSQLiteGameRepository(db),
		matchRepo:      repositories.NewSQLiteMatchRepository(db),
		adminRepo:      repositories.NewSQLiteAdminRepository(db),
	}
	env.users = NewUserService(env.userRepo)
	env.teams = NewTeamService(env.teamRepo, env.membershipRepo, env.userRepo)
	env.invites = NewInviteService(env.inviteRepo, env.teamRepo, env.membershipRepo)
	env.leagues = NewLeagueService(env.leagueRepo, env.teamRepo, env.gameRepo)
	env.matches = NewMatchService(env.matchRepo, env.leagueRepo, env.teamRepo, env.gameRepo)
	env.admins = NewAdminService(env.adminRepo, database.NewEngine(db, nil), db, nil)
	return env
}

func (e *testEnv) seedUser(t *testing.T, discordID string) *models.User {
	t.Helper()

	user, err := e.users.GetOrCreateByDiscordID(context.Background(), discordID, "user-"+discordID)
	require.NoError(t, err)
	return user
}

func (e *testEnv) seedTeam(t *testing.T, name, tag string, captain *models.User) *models.Team {
	t.Helper()

	team, err := e.teams.CreateTeam(context.Background(), name, tag, "guild-1", captain.ID)
	require.NoError(t, err)
	return team
}

// seedLeague создаёт игру, формат и лигу одним вызовом.
func (e *testEnv) seedLeague(t *testing.T, name string, rounds int, creator *models.User) *models.League {
	t.Helper()
	ctx := context.Background()

	game := &models.Game{Name: "Game for " + name}
	require.NoError(t, e.gameRepo.SaveGame(ctx, game))

	format := &models.MatchFormat{MaxPlayers: 5, MatchCount: rounds}
	require.NoError(t, e.gameRepo.SaveFormat(ctx, format))

	league, err := e.leagues.CreateLeague(ctx, name, "guild-1", game.ID, format.ID, creator.ID)
	require.NoError(t, err)
	return league
}

func (e *testEnv) seedPermittedMap(t *testing.T, league *models.League) *models.Map {
	t.Helper()
	ctx := context.Background()

	loaded, err := e.leagues.GetLeague(ctx, league.ID)
	require.NoError(t, err)

	m := &models.Map{Name: "Stronghold", Mode: "ctf", GameID: loaded.GameID}
	require.NoError(t, e.gameRepo.SaveMap(ctx, m))
	require.NoError(t, e.gameRepo.PermitMap(ctx, &models.PermittedMap{
		MatchFormatID: loaded.MatchFormatID,
		MapID:         m.ID,
	}))
	return m
}
