package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()
	c.io.Println("Starting synchronization with server...")

	result, err := c.syncService.Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}
	if result.Skipped {
		c.io.Println("Another sync is already running, nothing to do.")
		return nil
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed successfully!")
	c.io.Println()
	c.io.Printf("Pulled from server:  %d row(s), %d applied\n", result.Fetched, result.Applied)
	if result.Renumbered > 0 {
		c.io.Printf("Matches renumbered:  %d\n", result.Renumbered)
	}
	c.io.Printf("Pushed to server:    %d record(s)\n", result.Pushed)
	if result.Deleted > 0 {
		c.io.Printf("Deletes confirmed:   %d\n", result.Deleted)
	}

	c.io.Println()
	c.io.Println("Your data is now synchronized with the server.")
	return nil
}

func (c *Cli) runReconcile(ctx context.Context, args []string) error {
	force := len(args) > 0 && (args[0] == "force" || args[0] == "--force")

	c.io.Println("=== Reconciliation ===")
	c.io.Println()

	result, err := c.syncService.Reconcile(ctx, force)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	if result.Skipped {
		c.io.Println("Last sweep is recent enough, skipping.")
		c.io.Println("Use 'matchday reconcile force' to run it anyway.")
		return nil
	}

	removed := result.Removed
	c.io.Printf("✓ Sweep completed, %d record(s) removed\n", removed.Total())
	if removed.Total() > 0 {
		c.io.Printf("  players: %d, sessions: %d, matches: %d, lineups: %d, goals: %d\n",
			removed.Players, removed.Sessions, removed.Matches, removed.Lineups, removed.Goals)
	}
	if result.CheckpointErr != nil {
		// сам sweep прошёл; следующая попытка просто случится раньше срока
		c.io.Printf("Warning: failed to save sweep timestamp: %v\n", result.CheckpointErr)
	}
	return nil
}
