package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltstriker/scrimbot/models"
)

func TestChallengeRequiresSharedLeague(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	capA := env.seedUser(t, "100")
	capB := env.seedUser(t, "101")
	teamA := env.seedTeam(t, "Alpha", "AL", capA)
	teamB := env.seedTeam(t, "Bravo", "BR", capB)

	matchDate := time.Now().Add(24 * time.Hour)

	_, err := env.matches.Challenge(ctx, teamA.ID, teamA.ID, capA.ID, matchDate)
	assert.ErrorIs(t, err, ErrSameTeamChallenge)

	// Команды пока не состоят ни в одной общей лиге.
	_, err = env.matches.Challenge(ctx, teamA.ID, teamB.ID, capA.ID, matchDate)
	assert.ErrorIs(t, err, ErrTeamsNotInSameLeague)

	league := env.seedLeague(t, "Season One", 3, capA)
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamA.ID, capA.ID))

	// Одной команды в лиге недостаточно.
	_, err = env.matches.Challenge(ctx, teamA.ID, teamB.ID, capA.ID, matchDate)
	assert.ErrorIs(t, err, ErrTeamsNotInSameLeague)

	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamB.ID, capB.ID))

	// Вызывает только капитан.
	_, err = env.matches.Challenge(ctx, teamA.ID, teamB.ID, capB.ID, matchDate)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	match, err := env.matches.Challenge(ctx, teamA.ID, teamB.ID, capA.ID, matchDate)
	require.NoError(t, err)
	assert.Equal(t, league.ID, match.LeagueID)
	assert.False(t, match.Accepted)
}

func TestAcceptAndCancelChallenge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	capA := env.seedUser(t, "100")
	capB := env.seedUser(t, "101")
	teamA := env.seedTeam(t, "Alpha", "AL", capA)
	teamB := env.seedTeam(t, "Bravo", "BR", capB)
	league := env.seedLeague(t, "Season One", 3, capA)
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamA.ID, capA.ID))
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamB.ID, capB.ID))

	match, err := env.matches.Challenge(ctx, teamA.ID, teamB.ID, capA.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Принимает только капитан защищающейся стороны.
	err = env.matches.AcceptChallenge(ctx, match.ID, capA.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	require.NoError(t, env.matches.AcceptChallenge(ctx, match.ID, capB.ID))
	err = env.matches.AcceptChallenge(ctx, match.ID, capB.ID)
	assert.ErrorIs(t, err, ErrMatchAlreadyAccepted)

	require.NoError(t, env.matches.CancelMatch(ctx, match.ID, capA.ID))
	err = env.matches.CancelMatch(ctx, match.ID, capB.ID)
	assert.ErrorIs(t, err, ErrMatchCancelled)
}

func TestRecordResult(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	capA := env.seedUser(t, "100")
	capB := env.seedUser(t, "101")
	outsider := env.seedUser(t, "102")
	teamA := env.seedTeam(t, "Alpha", "AL", capA)
	teamB := env.seedTeam(t, "Bravo", "BR", capB)
	league := env.seedLeague(t, "Season One", 3, capA)
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamA.ID, capA.ID))
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamB.ID, capB.ID))
	permitted := env.seedPermittedMap(t, league)

	match, err := env.matches.Challenge(ctx, teamA.ID, teamB.ID, capA.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	// До принятия вызова результатов нет.
	_, err = env.matches.RecordResult(ctx, match.ID, 1, permitted.ID, 13, 7, capA.ID)
	assert.ErrorIs(t, err, ErrValidationFailed)

	require.NoError(t, env.matches.AcceptChallenge(ctx, match.ID, capB.ID))

	_, err = env.matches.RecordResult(ctx, match.ID, 1, permitted.ID, 10, 10, capA.ID)
	assert.ErrorIs(t, err, ErrResultTied)

	_, err = env.matches.RecordResult(ctx, match.ID, 1, permitted.ID, 13, 7, outsider.ID)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	_, err = env.matches.RecordResult(ctx, match.ID, 1, 9999, 13, 7, capA.ID)
	assert.ErrorIs(t, err, ErrMapNotPermitted)

	result, err := env.matches.RecordResult(ctx, match.ID, 1, permitted.ID, 13, 7, capA.ID)
	require.NoError(t, err)
	assert.Equal(t, teamA.ID, result.WinningTeam)

	result, err = env.matches.RecordResult(ctx, match.ID, 2, permitted.ID, 5, 13, capB.ID)
	require.NoError(t, err)
	assert.Equal(t, teamB.ID, result.WinningTeam)

	// После последнего раунда формат (3 раунда) закрывает матч.
	_, err = env.matches.RecordResult(ctx, match.ID, 3, permitted.ID, 13, 2, capA.ID)
	require.NoError(t, err)

	results, err := env.matches.ListResults(ctx, match.ID)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	matches, err := env.matches.ListByLeague(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.NotNil(t, matches[0].WinningTeam)
	assert.Equal(t, teamA.ID, *matches[0].WinningTeam)
}

func TestRecordResultRejectsMapOfAnotherGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	capA := env.seedUser(t, "100")
	capB := env.seedUser(t, "101")
	teamA := env.seedTeam(t, "Alpha", "AL", capA)
	teamB := env.seedTeam(t, "Bravo", "BR", capB)
	league := env.seedLeague(t, "Season One", 3, capA)
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamA.ID, capA.ID))
	require.NoError(t, env.leagues.JoinLeague(ctx, league.ID, teamB.ID, capB.ID))

	// Карта другой игры, разрешённая для того же формата: формат сам по себе
	// к игре не привязан.
	otherGame := &models.Game{Name: "Other Game"}
	require.NoError(t, env.gameRepo.SaveGame(ctx, otherGame))
	foreignMap := &models.Map{Name: "Foreign", Mode: "slayer", GameID: otherGame.ID}
	require.NoError(t, env.gameRepo.SaveMap(ctx, foreignMap))

	loaded, err := env.leagues.GetLeague(ctx, league.ID)
	require.NoError(t, err)
	require.NoError(t, env.gameRepo.PermitMap(ctx, &models.PermittedMap{
		MatchFormatID: loaded.MatchFormatID,
		MapID:         foreignMap.ID,
	}))

	match, err := env.matches.Challenge(ctx, teamA.ID, teamB.ID, capA.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, env.matches.AcceptChallenge(ctx, match.ID, capB.ID))

	_, err = env.matches.RecordResult(ctx, match.ID, 1, foreignMap.ID, 13, 7, capA.ID)
	assert.ErrorIs(t, err, ErrMapNotPermitted)

	permitted := env.seedPermittedMap(t, league)
	_, err = env.matches.RecordResult(ctx, match.ID, 1, permitted.ID, 13, 7, capA.ID)
	require.NoError(t, err)
}
