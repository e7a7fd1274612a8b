// Package cli реализует командный интерфейс клиента. Команды тонкие:
// парсинг аргументов + вызов data/sync сервисов + вывод через iocli.
package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/matchday/internal/client/data"
	"github.com/iudanet/matchday/internal/client/iocli"
	"github.com/iudanet/matchday/internal/client/sync"
)

type Cli struct {
	io          iocli.IO
	dataService data.Service
	syncService sync.Service
}

func New(io iocli.IO, dataService data.Service, syncService sync.Service) *Cli {
	return &Cli{
		io:          io,
		dataService: dataService,
		syncService: syncService,
	}
}

// Run dispatches a single command. Ошибки возвращаются вызывающему,
// main решает про exit code.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "add-player":
		return c.runAddPlayer(ctx, args)
	case "players":
		return c.runPlayers(ctx)
	case "rename-player":
		return c.runRenamePlayer(ctx, args)
	case "toggle-player":
		return c.runTogglePlayer(ctx, args)
	case "delete-player":
		return c.runDeletePlayer(ctx, args)
	case "new-session":
		return c.runNewSession(ctx, args)
	case "sessions":
		return c.runSessions(ctx)
	case "toggle-session":
		return c.runToggleSession(ctx, args)
	case "delete-session":
		return c.runDeleteSession(ctx, args)
	case "add-match":
		return c.runAddMatch(ctx, args)
	case "matches":
		return c.runMatches(ctx, args)
	case "delete-last-match":
		return c.runDeleteLastMatch(ctx, args)
	case "add-lineup":
		return c.runAddLineup(ctx, args)
	case "remove-lineup":
		return c.runRemoveLineup(ctx, args)
	case "add-goal":
		return c.runAddGoal(ctx, args)
	case "remove-goal":
		return c.runRemoveGoal(ctx, args)
	case "sync":
		return c.runSync(ctx)
	case "reconcile":
		return c.runReconcile(ctx, args)
	case "status":
		return c.runStatus(ctx)
	case "help", "":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *Cli) PrintUsage() {
	c.io.Println("matchday - offline-first football club tracker")
	c.io.Println()
	c.io.Println("Usage: matchday [flags] <command> [arguments]")
	c.io.Println()
	c.io.Println("Players:")
	c.io.Println("  add-player <name> [nickname]          add a player")
	c.io.Println("  players                               list players")
	c.io.Println("  rename-player <id> <name> [nickname]  rename a player")
	c.io.Println("  toggle-player <id>                    flip active flag")
	c.io.Println("  delete-player <id>                    delete a player")
	c.io.Println()
	c.io.Println("Sessions:")
	c.io.Println("  new-session <YYYY-MM-DD>              create a training day")
	c.io.Println("  sessions                              list sessions")
	c.io.Println("  toggle-session <id>                   open <-> locked")
	c.io.Println("  delete-session <id> [-y]              delete session with matches")
	c.io.Println()
	c.io.Println("Matches:")
	c.io.Println("  add-match <session-id> [count]        append match(es)")
	c.io.Println("  matches <session-id>                  list matches in order")
	c.io.Println("  delete-last-match <session-id>        drop the last match")
	c.io.Println()
	c.io.Println("Events:")
	c.io.Println("  add-lineup <match-id> <half> <team> <player-id>")
	c.io.Println("  remove-lineup <id>")
	c.io.Println("  add-goal <match-id> <half> <team> <scorer-id> [assist-id|-] [minute]")
	c.io.Println("  remove-goal <id>")
	c.io.Println()
	c.io.Println("Sync:")
	c.io.Println("  sync                                  pull + push with the server")
	c.io.Println("  reconcile [force]                     sweep records deleted remotely")
	c.io.Println("  status                                show pending changes")
	c.io.Println()
	c.io.Println("Flags:")
	c.io.Println("  -server <url>   sync server address")
	c.io.Println("  -club <id>      club scope for sync")
	c.io.Println("  -db <path>      local database file")
	c.io.Println("  -version        print version and exit")
}
