package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/matchday/internal/client/data"
)

func TestRunAddMatch_Count(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	s, err := cli.dataService.CreateSession(ctx, "2026-03-01")
	require.NoError(t, err)

	require.NoError(t, cli.Run(ctx, "add-match", []string{s.ID, "3"}))
	out := io.output()
	assert.Contains(t, out, "Match 1 added")
	assert.Contains(t, out, "Match 3 added")

	matches, err := cli.dataService.ListMatches(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestRunAddMatch_InvalidCount(t *testing.T) {
	cli, _, _, _ := newTestCli(t)
	ctx := context.Background()

	s, err := cli.dataService.CreateSession(ctx, "2026-03-01")
	require.NoError(t, err)

	err = cli.Run(ctx, "add-match", []string{s.ID, "zero"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid match count")
}

func TestRunAddMatch_LockedSession(t *testing.T) {
	cli, _, _, _ := newTestCli(t)
	ctx := context.Background()

	s, err := cli.dataService.CreateSession(ctx, "2026-03-01")
	require.NoError(t, err)
	_, err = cli.dataService.ToggleSessionStatus(ctx, s.ID)
	require.NoError(t, err)

	err = cli.Run(ctx, "add-match", []string{s.ID})
	assert.ErrorIs(t, err, data.ErrSessionLocked)
}

func TestRunMatches_Empty(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	s, err := cli.dataService.CreateSession(ctx, "2026-03-01")
	require.NoError(t, err)

	require.NoError(t, cli.Run(ctx, "matches", []string{s.ID}))
	assert.Contains(t, io.output(), "No matches in this session")
}

func TestRunDeleteLastMatch(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	s, err := cli.dataService.CreateSession(ctx, "2026-03-01")
	require.NoError(t, err)
	_, err = cli.dataService.CreateMatches(ctx, s.ID, 2)
	require.NoError(t, err)

	require.NoError(t, cli.Run(ctx, "delete-last-match", []string{s.ID}))
	assert.Contains(t, io.output(), "Match 2 deleted")

	matches, err := cli.dataService.ListMatches(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].OrderNo)
}

func TestRunDeleteLastMatch_NoMatches(t *testing.T) {
	cli, _, io, _ := newTestCli(t)
	ctx := context.Background()

	s, err := cli.dataService.CreateSession(ctx, "2026-03-01")
	require.NoError(t, err)

	require.NoError(t, cli.Run(ctx, "delete-last-match", []string{s.ID}))
	assert.Contains(t, io.output(), "Session has no matches")
}
