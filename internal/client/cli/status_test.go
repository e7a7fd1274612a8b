package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus_AllSynced(t *testing.T) {
	cli, _, io, _ := newTestCli(t)

	require.NoError(t, cli.Run(context.Background(), "status", nil))
	out := io.output()
	assert.Contains(t, out, "Players:  0")
	assert.Contains(t, out, "Sessions: 0")
	assert.Contains(t, out, "All data synchronized")
}

func TestRunStatus_PendingChanges(t *testing.T) {
	cli, _, io, syncMock := newTestCli(t)
	ctx := context.Background()

	_, err := cli.dataService.CreatePlayer(ctx, "Kalle", "")
	require.NoError(t, err)
	syncMock.PendingCountFunc = func(ctx context.Context) (int, error) {
		return 1, nil
	}

	require.NoError(t, cli.Run(ctx, "status", nil))
	out := io.output()
	assert.Contains(t, out, "Players:  1")
	assert.Contains(t, out, "Pending sync: 1 record(s)")
	assert.Contains(t, out, "Run 'matchday sync'")
}
