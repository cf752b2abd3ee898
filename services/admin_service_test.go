package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUserAndRoleGrants(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.seedUser(t, "100")

	// Без грантов никто не администратор.
	_, err := env.admins.Resolve(ctx, "200", "guild-1", []string{"role-1"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	userGrant, err := env.admins.AddUserAdmin(ctx, "200", owner.ID)
	require.NoError(t, err)

	grant, err := env.admins.Resolve(ctx, "200", "guild-1", nil)
	require.NoError(t, err)
	assert.Equal(t, userGrant.ID, grant.ID)

	roleGrant, err := env.admins.AddRoleAdmin(ctx, "guild-1", "role-1", owner.ID)
	require.NoError(t, err)

	grant, err = env.admins.Resolve(ctx, "300", "guild-1", []string{"role-0", "role-1"})
	require.NoError(t, err)
	assert.Equal(t, roleGrant.ID, grant.ID)

	// Та же роль на другом сервере права не даёт.
	_, err = env.admins.Resolve(ctx, "300", "guild-2", []string{"role-1"})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRevokedGrantStopsWorkingImmediately(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.seedUser(t, "100")

	grant, err := env.admins.AddUserAdmin(ctx, "200", owner.ID)
	require.NoError(t, err)

	_, err = env.admins.Resolve(ctx, "200", "guild-1", nil)
	require.NoError(t, err)

	require.NoError(t, env.admins.RemoveAdmin(ctx, grant.ID))

	// Право проверяется на каждом вызове, кеша нет.
	_, err = env.admins.Resolve(ctx, "200", "guild-1", nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = env.admins.RemoveAdmin(ctx, grant.ID)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

func TestAddAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.seedUser(t, "100")

	first, err := env.admins.AddUserAdmin(ctx, "200", owner.ID)
	require.NoError(t, err)
	second, err := env.admins.AddUserAdmin(ctx, "200", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	grants, err := env.admins.ListAdmins(ctx, "guild-1")
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestResetDatabase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.seedUser(t, "100")
	env.seedTeam(t, "Elite Squad", "ES", owner)

	dropped, err := env.admins.ResetDatabase(ctx)
	require.NoError(t, err)
	assert.Greater(t, dropped, 0)

	// Схема пересоздана, данные стёрты.
	teams, err := env.teams.ListTeams(ctx, "guild-1")
	require.NoError(t, err)
	assert.Empty(t, teams)

	exists, err := env.admins.TableExists(ctx, "teams")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.admins.TableExists(ctx, "logs")
	require.NoError(t, err)
	assert.True(t, exists)
}
