package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runAddPlayer(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing player name. Usage: matchday add-player <name> [nickname]")
	}
	name := args[0]
	nickname := ""
	if len(args) > 1 {
		nickname = args[1]
	}

	player, err := c.dataService.CreatePlayer(ctx, name, nickname)
	if err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}

	c.io.Printf("✓ Player added: %s\n", player.Name)
	c.io.Printf("  ID: %s\n", player.ID)
	return nil
}

func (c *Cli) runPlayers(ctx context.Context) error {
	players, err := c.dataService.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}

	c.io.Println("=== Players ===")
	c.io.Println()

	if len(players) == 0 {
		c.io.Println("No players yet.")
		c.io.Println()
		c.io.Println("Use 'matchday add-player <name>' to add the first one.")
		return nil
	}

	for i, p := range players {
		mark := " "
		if !p.Active {
			mark = "✗" // неактивные не попадают в составы
		}
		c.io.Printf("%d. [%s] %s", i+1, mark, p.Name)
		if p.Nickname != "" {
			c.io.Printf(" (%s)", p.Nickname)
		}
		c.io.Println()
		c.io.Printf("   ID: %s\n", p.ID)
	}
	c.io.Println()
	c.io.Printf("Total: %d player(s)\n", len(players))
	return nil
}

func (c *Cli) runRenamePlayer(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: matchday rename-player <id> <name> [nickname]")
	}
	id, name := args[0], args[1]
	nickname := ""
	if len(args) > 2 {
		nickname = args[2]
	}

	if err := c.dataService.RenamePlayer(ctx, id, name, nickname); err != nil {
		return fmt.Errorf("failed to rename player: %w", err)
	}

	c.io.Printf("✓ Player renamed to %s\n", name)
	return nil
}

func (c *Cli) runTogglePlayer(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday toggle-player <id>")
	}
	id := args[0]

	players, err := c.dataService.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		if p.ID != id {
			continue
		}
		if err := c.dataService.SetPlayerActive(ctx, id, !p.Active); err != nil {
			return fmt.Errorf("failed to toggle player: %w", err)
		}
		if p.Active {
			c.io.Printf("✓ %s is now inactive\n", p.Name)
		} else {
			c.io.Printf("✓ %s is now active\n", p.Name)
		}
		return nil
	}
	return fmt.Errorf("player not found: %s", id)
}

func (c *Cli) runDeletePlayer(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday delete-player <id>")
	}

	if err := c.dataService.DeletePlayer(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	c.io.Println("✓ Player deleted.")
	c.io.Println("The deletion will reach the server on the next sync.")
	return nil
}
