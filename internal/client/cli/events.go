package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iudanet/matchday/internal/client/data"
)

func (c *Cli) runAddLineup(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: matchday add-lineup <match-id> <half> <team> <player-id>")
	}

	half, err := parseHalf(args[1])
	if err != nil {
		return err
	}
	team, err := parseTeam(args[2])
	if err != nil {
		return err
	}

	lineup, err := c.dataService.AddLineup(ctx, args[0], half, team, args[3])
	if err != nil {
		return fmt.Errorf("failed to add lineup: %w", err)
	}

	c.io.Printf("✓ Player added to team %s, half %d\n", lineup.Team, lineup.Half)
	c.io.Printf("  ID: %s\n", lineup.ID)
	return nil
}

func (c *Cli) runRemoveLineup(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday remove-lineup <id>")
	}

	if err := c.dataService.RemoveLineup(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove lineup: %w", err)
	}

	c.io.Println("✓ Lineup entry removed.")
	return nil
}

func (c *Cli) runAddGoal(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: matchday add-goal <match-id> <half> <team> <scorer-id> [assist-id|-] [minute]")
	}

	half, err := parseHalf(args[1])
	if err != nil {
		return err
	}
	team, err := parseTeam(args[2])
	if err != nil {
		return err
	}

	in := data.GoalInput{
		MatchID:  args[0],
		Half:     half,
		Team:     team,
		ScorerID: args[3],
	}
	// "-" как пятый аргумент означает гол без ассистента
	if len(args) > 4 && args[4] != "-" {
		in.AssistID = args[4]
	}
	if len(args) > 5 {
		minute, err := strconv.Atoi(args[5])
		if err != nil {
			return fmt.Errorf("invalid minute %q", args[5])
		}
		in.Minute = &minute
	}

	goal, err := c.dataService.AddGoal(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to add goal: %w", err)
	}

	c.io.Printf("✓ Goal for team %s, half %d\n", goal.Team, goal.Half)
	c.io.Printf("  ID: %s\n", goal.ID)
	return nil
}

func (c *Cli) runRemoveGoal(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: matchday remove-goal <id>")
	}

	if err := c.dataService.RemoveGoal(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove goal: %w", err)
	}

	c.io.Println("✓ Goal removed.")
	return nil
}
