package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/lingtao/hsktrainer/internal/config"
	"github.com/lingtao/hsktrainer/internal/content"
	"github.com/lingtao/hsktrainer/internal/gitsource"
	"github.com/lingtao/hsktrainer/internal/progress"
	"github.com/lingtao/hsktrainer/internal/srs"
	"github.com/lingtao/hsktrainer/internal/storage"
)

// Thin inspection shell over the engine. The real presentation layer
// lives elsewhere; this binary opens the store, optionally refreshes
// and seeds content, and prints due reviews or the progress summary.
func main() {
	flags := pflag.NewFlagSet("hsktrainer", pflag.ExitOnError)
	configPath := flags.String("config", "hsktrainer.yaml", "Path to the YAML config file")
	flags.String("db_path", "hsktrainer.db", "Path to the SQLite database file")
	seed := flags.Bool("seed", false, "Seed every empty content table and exit")
	due := flags.Bool("due", false, "List review items that are due now")
	stats := flags.Bool("stats", false, "Print the progress summary")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	contentStore := content.NewStore(store)
	if cfg.Content.BundlesRepo != "" {
		if err := gitsource.Sync(cfg.Content.BundlesRepo, cfg.Content.BundlesDir); err != nil {
			slog.Warn("Bundle refresh failed, using embedded bundles", "error", err)
		} else {
			contentStore = content.NewStoreWithBundles(store, os.DirFS(cfg.Content.BundlesDir))
		}
	}

	if *seed {
		if err := contentStore.SeedAll(); err != nil {
			slog.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *due {
		scheduler := srs.NewScheduler(store)
		items, err := scheduler.DueItems(time.Now())
		if err != nil {
			slog.Error("Failed to load due items", "error", err)
			os.Exit(1)
		}
		fmt.Printf("%d items due\n", len(items))
		for _, item := range items {
			fmt.Printf("- %s %s (level %s, interval %dd, due %s)\n",
				item.ItemType, item.ItemRef, item.Level, item.Interval,
				item.NextReviewAt.Format(time.RFC3339))
		}
		return
	}

	if *stats {
		tracker := progress.NewTracker(store, cfg)
		p, err := tracker.Load()
		if err != nil {
			slog.Error("Failed to load progress", "error", err)
			os.Exit(1)
		}
		fmt.Printf("user %s: %d xp, streak %d, %d words learned, %d lessons unlocked, %d achievements\n",
			p.UserID, p.XP, p.Streak, len(p.LearnedWords), len(p.UnlockedLessons), len(p.Achievements))
		return
	}

	flags.Usage()
}
