package cli

import (
	"context"
	"fmt"
	"strconv"
)

func (c *Cli) runAddMatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday add-match <session-id> [count]")
	}
	sessionID := args[0]

	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid match count %q", args[1])
		}
		count = n
	}

	matches, err := c.dataService.CreateMatches(ctx, sessionID, count)
	if err != nil {
		return fmt.Errorf("failed to add matches: %w", err)
	}

	for _, m := range matches {
		c.io.Printf("✓ Match %d added (ID: %s)\n", m.OrderNo, m.ID)
	}
	return nil
}

func (c *Cli) runMatches(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday matches <session-id>")
	}

	matches, err := c.dataService.ListMatches(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}

	c.io.Println("=== Matches ===")
	c.io.Println()

	if len(matches) == 0 {
		c.io.Println("No matches in this session.")
		c.io.Println()
		c.io.Println("Use 'matchday add-match <session-id>' to add one.")
		return nil
	}

	for _, m := range matches {
		c.io.Printf("Match %d\n", m.OrderNo)
		c.io.Printf("   ID: %s\n", m.ID)
	}
	c.io.Println()
	c.io.Printf("Total: %d match(es)\n", len(matches))
	return nil
}

func (c *Cli) runDeleteLastMatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday delete-last-match <session-id>")
	}

	match, err := c.dataService.DeleteLastMatch(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if match == nil {
		c.io.Println("Session has no matches.")
		return nil
	}

	c.io.Printf("✓ Match %d deleted.\n", match.OrderNo)
	return nil
}
