package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/matchday/internal/models"
)

func (c *Cli) runNewSession(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing date. Usage: matchday new-session <YYYY-MM-DD>")
	}

	session, err := c.dataService.CreateSession(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	c.io.Printf("✓ Session created for %s\n", session.Date)
	c.io.Printf("  ID: %s\n", session.ID)
	return nil
}

func (c *Cli) runSessions(ctx context.Context) error {
	sessions, err := c.dataService.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	c.io.Println("=== Sessions ===")
	c.io.Println()

	if len(sessions) == 0 {
		c.io.Println("No sessions yet.")
		c.io.Println()
		c.io.Println("Use 'matchday new-session <YYYY-MM-DD>' to create one.")
		return nil
	}

	for i, s := range sessions {
		lock := ""
		if s.Status == models.SessionLocked {
			lock = " [locked]"
		}
		c.io.Printf("%d. %s%s\n", i+1, s.Date, lock)
		c.io.Printf("   ID: %s\n", s.ID)
	}
	c.io.Println()
	c.io.Printf("Total: %d session(s)\n", len(sessions))
	return nil
}

func (c *Cli) runToggleSession(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday toggle-session <id>")
	}

	status, err := c.dataService.ToggleSessionStatus(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to toggle session: %w", err)
	}

	c.io.Printf("✓ Session is now %s\n", status)
	return nil
}

func (c *Cli) runDeleteSession(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday delete-session <id> [-y]")
	}

	// сервер каскадно затомбстоунит матчи сессии, поэтому спрашиваем
	confirmed := len(args) > 1 && args[1] == "-y"
	if !confirmed {
		answer, err := c.io.ReadInput("Delete this session and all of its matches? [y/N]: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			c.io.Println("Aborted.")
			return nil
		}
	}

	if err := c.dataService.DeleteSession(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Println("✓ Session deleted.")
	c.io.Println("The deletion will reach the server on the next sync.")
	return nil
}
