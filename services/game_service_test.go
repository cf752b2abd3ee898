package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameReferenceData(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	games := NewGameService(env.gameRepo)

	_, err := games.AddGame(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrValidationFailed)

	game, err := games.AddGame(ctx, "Halo Infinite", "Halo")
	require.NoError(t, err)
	require.NotZero(t, game.ID)

	_, err = games.AddMap(ctx, 9999, "Aquarius", "slayer")
	assert.ErrorIs(t, err, ErrGameNotFound)

	m, err := games.AddMap(ctx, game.ID, "Aquarius", "slayer")
	require.NoError(t, err)

	format, err := games.AddFormat(ctx, 4, 3)
	require.NoError(t, err)

	_, err = games.AddFormat(ctx, 0, 3)
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = games.PermitMap(ctx, format.ID, 9999)
	assert.ErrorIs(t, err, ErrMapNotFound)

	require.NoError(t, games.PermitMap(ctx, format.ID, m.ID))
	// Повторное разрешение идемпотентно.
	require.NoError(t, games.PermitMap(ctx, format.ID, m.ID))

	permitted, err := env.gameRepo.IsMapPermitted(ctx, format.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, permitted)

	maps, err := games.ListMaps(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, maps, 1)
}
