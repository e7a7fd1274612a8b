package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Local Status ===")
	c.io.Println()

	players, err := c.dataService.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	sessions, err := c.dataService.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	c.io.Printf("Players:  %d\n", len(players))
	c.io.Printf("Sessions: %d\n", len(sessions))

	pendingCount, err := c.syncService.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending sync count: %w", err)
	}

	c.io.Println()
	if pendingCount > 0 {
		c.io.Printf("⚠️  Pending sync: %d record(s) waiting to be synchronized\n", pendingCount)
		c.io.Println("Run 'matchday sync' to synchronize with server.")
	} else {
		c.io.Println("✓ All data synchronized with server")
	}
	return nil
}
