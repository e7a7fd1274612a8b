package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/matchday/internal/client/data"
)

func TestRunAddPlayer(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	require.NoError(t, cli.Run(ctx, "add-player", []string{"Kalle", "K"}))
	assert.Contains(t, io.output(), "Player added: Kalle")

	players, err := cli.dataService.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Kalle", players[0].Name)
	assert.Equal(t, "K", players[0].Nickname)
}

func TestRunAddPlayer_MissingName(t *testing.T) {
	cli, _, _, _ := newTestCli(t)

	err := cli.Run(context.Background(), "add-player", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing player name")
}

func TestRunAddPlayer_EmptyName(t *testing.T) {
	cli, _, _, _ := newTestCli(t)

	err := cli.Run(context.Background(), "add-player", []string{""})
	assert.ErrorIs(t, err, data.ErrEmptyName)
}

func TestRunPlayers_Empty(t *testing.T) {
	cli, _, io, _ := newTestCli(t)

	require.NoError(t, cli.Run(context.Background(), "players", nil))
	assert.Contains(t, io.output(), "No players yet")
}

func TestRunPlayers_List(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	_, err := cli.dataService.CreatePlayer(ctx, "Kalle", "K")
	require.NoError(t, err)
	_, err = cli.dataService.CreatePlayer(ctx, "Pelle", "")
	require.NoError(t, err)

	require.NoError(t, cli.Run(ctx, "players", nil))
	out := io.output()
	assert.Contains(t, out, "Kalle (K)")
	assert.Contains(t, out, "Pelle")
	assert.Contains(t, out, "Total: 2 player(s)")
}

func TestRunTogglePlayer(t *testing.T) {
	cli, stores, io, _ := newTestCli(t)
	ctx := context.Background()

	p, err := cli.dataService.CreatePlayer(ctx, "Kalle", "")
	require.NoError(t, err)
	require.True(t, p.Active)

	require.NoError(t, cli.Run(ctx, "toggle-player", []string{p.ID}))
	assert.Contains(t, io.output(), "now inactive")

	stored, err := stores.Players.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestRunTogglePlayer_NotFound(t *testing.T) {
	cli, _, _, _ := newTestCli(t)

	err := cli.Run(context.Background(), "toggle-player", []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player not found")
}

func TestRunDeletePlayer(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	p, err := cli.dataService.CreatePlayer(ctx, "Kalle", "")
	require.NoError(t, err)

	require.NoError(t, cli.Run(ctx, "delete-player", []string{p.ID}))
	assert.Contains(t, io.output(), "Player deleted")

	players, err := cli.dataService.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Empty(t, players)
}
