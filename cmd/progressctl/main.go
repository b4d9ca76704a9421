// Package main provides a CLI over the progress engine: inspect stats and
// badge progress, record plays, fetch the daily challenge, and move data in
// and out with export/import. Storage is configured through PROGRESS_*
// environment variables.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/minigamehub/progress-engine/pkg/config"
	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/engine"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	eng, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if !eng.StorageAvailable() {
		logger.Warn("storage medium is not accepting writes; changes will not persist")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "stats":
		return cmdStats(eng, cfg.UserID)
	case "badges":
		return cmdBadges(eng, cfg.UserID)
	case "record":
		return cmdRecord(eng, cfg.UserID, rest)
	case "challenge":
		return cmdChallenge(eng, cfg.UserID)
	case "set-name":
		return cmdSetName(eng, cfg.UserID, rest)
	case "export":
		return cmdExport(eng, cfg.UserID)
	case "import":
		return cmdImport(eng, cfg.UserID, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: progressctl <command> [flags]

Commands:
  stats                      print the user's stats
  badges                     print badge progress
  record -game <id> [flags]  record a finished game
  challenge                  print today's challenge
  set-name <name>            set the display name
  export                     write the export bundle to stdout
  import [file]              restore a bundle from a file or stdin

The user id and storage backend come from PROGRESS_USER_ID, PROGRESS_STORAGE
and friends; see the package documentation.`)
}

func cmdStats(eng *engine.Engine, userID string) error {
	st, err := eng.GetStats(userID)
	if err != nil {
		return err
	}
	return printJSON(st)
}

func cmdBadges(eng *engine.Engine, userID string) error {
	progress, err := eng.GetBadgeProgress(userID)
	if err != nil {
		return err
	}
	for _, p := range progress {
		mark := " "
		if p.Unlocked {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %-22s %s", mark, p.Badge.ID, p.Badge.Name)
		if !p.Unlocked && p.Target > 0 {
			line += fmt.Sprintf(" (%d/%d)", p.Current, p.Target)
		}
		fmt.Println(line)
	}
	return nil
}

func cmdRecord(eng *engine.Engine, userID string, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	game := fs.String("game", "", "game id (required)")
	score := fs.Int("score", 0, "final score")
	completed := fs.Bool("completed", false, "whether the game was finished")
	duration := fs.Int("duration", 0, "play duration in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *game == "" {
		return fmt.Errorf("record: -game is required")
	}

	res, err := eng.RecordPlay(userID, domain.PlayEvent{
		GameID:    domain.GameID(*game),
		Score:     *score,
		Completed: *completed,
		Duration:  *duration,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s: %d games played, streak %d\n",
		*game, res.Stats.TotalGamesPlayed, res.Stats.PlayStreak)
	for _, id := range res.NewBadges {
		fmt.Printf("Unlocked badge: %s\n", id)
	}
	if res.Reward != nil {
		switch res.Reward.Type {
		case domain.RewardBonus:
			fmt.Printf("Daily challenge complete: +%d bonus points\n", res.Reward.BonusPoints)
		case domain.RewardBadge:
			fmt.Printf("Daily challenge complete: badge %s\n", res.Reward.BadgeID)
		}
	}
	return nil
}

func cmdChallenge(eng *engine.Engine, userID string) error {
	ch, err := eng.GetTodayChallenge(userID)
	if err != nil {
		return err
	}

	fmt.Printf("Today's challenge (%s): play %s", ch.Date, ch.GameID)
	switch {
	case ch.TargetScore != nil:
		fmt.Printf(" and score at least %d", *ch.TargetScore)
	case ch.TargetCompletion != nil && *ch.TargetCompletion:
		fmt.Print(" to completion")
	}
	switch ch.Reward.Type {
	case domain.RewardBonus:
		fmt.Printf("; reward: %d bonus points", ch.Reward.BonusPoints)
	case domain.RewardBadge:
		fmt.Printf("; reward: badge %s", ch.Reward.BadgeID)
	}
	if ch.Completed {
		fmt.Print(" [completed]")
	}
	fmt.Println()
	return nil
}

func cmdSetName(eng *engine.Engine, userID string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("set-name: expected exactly one argument, got %d", len(args))
	}
	st, err := eng.SetUserName(userID, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Display name set to %q\n", st.UserName)
	return nil
}

func cmdExport(eng *engine.Engine, userID string) error {
	bundle, err := eng.ExportAll(userID)
	if err != nil {
		return err
	}
	fmt.Println(bundle)
	return nil
}

func cmdImport(eng *engine.Engine, userID string, args []string) error {
	var payload []byte
	var err error
	switch len(args) {
	case 0:
		payload, err = io.ReadAll(os.Stdin)
	case 1:
		payload, err = os.ReadFile(args[0])
	default:
		return fmt.Errorf("import: expected at most one file argument")
	}
	if err != nil {
		return err
	}

	if err := eng.ImportAll(userID, string(payload)); err != nil {
		return err
	}
	fmt.Println("Import complete")
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
