package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"companysift/internal/config"
	"companysift/internal/csvio"
	"companysift/internal/domain"
	"companysift/internal/events"
	"companysift/internal/filter"
	"companysift/internal/pipeline"
	"companysift/internal/score"
	"companysift/internal/search"
	"companysift/internal/secrets"
	"companysift/internal/store"
)

var (
	outputPath  string
	flagResume  bool
	flagRestart bool
	flagWorkers int
)

var processCmd = &cobra.Command{
	Use:   "process <input.csv>",
	Short: "Process companies from a CSV file to discover websites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagResume && flagRestart {
			return errors.New("cannot use both --resume and --restart")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flagWorkers > 0 {
			cfg.Processing.Workers = flagWorkers
		}

		// reject concurrent runs against the same checkpoint db
		lock, err := store.AcquireRunLock(lockPath(cfg))
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if flagRestart {
			if err := st.ClearOutcomes(ctx); err != nil {
				return err
			}
			log.Printf("[process] restart: cleared previous outcomes")
		}

		// blocklist lives in the db so admin edits survive; config entries seed it
		if err := st.SeedBlocklist(ctx, cfg.Filtering.Blocklist); err != nil {
			return err
		}
		blocked, err := st.BlockedDomains(ctx)
		if err != nil {
			return err
		}
		bl := filter.NewBlocklist(blocked)

		var freq *filter.FrequencyTracker
		if cfg.Filtering.Frequency.Enabled {
			freq = filter.NewFrequencyTracker(
				cfg.Filtering.Frequency.Threshold,
				cfg.Filtering.Frequency.MinOccurrences)
			counts, total, err := st.LoadFrequency(ctx)
			if err != nil {
				return err
			}
			freq.Load(counts, total)
		}

		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		companies, err := csvio.ReadCompanies(args[0])
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			log.Printf("[process] no valid companies in %s", args[0])
			return nil
		}

		out, err := csvio.NewWriter(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()

		hub := events.NewHub()
		done := watchProgress(hub, cfg.Processing.ProgressEvery)

		scorer := score.NewScorer(cfg.Scoring.Weights, cfg.Scoring.UnknownTLDScore)
		runner := pipeline.NewRunner(cfg, client, bl, freq, scorer, st, hub, out.Write)

		summary, runErr := runner.Run(ctx, companies, flagResume, args[0], outputPath)
		close(done)
		printSummary(summary)

		if runErr != nil {
			if errors.Is(runErr, context.Canceled) {
				return errors.New("run interrupted; re-run with --resume to continue")
			}
			return runErr
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&outputPath, "output", "o", "", "path to output CSV file (required)")
	processCmd.Flags().BoolVar(&flagResume, "resume", false, "resume from existing checkpoints")
	processCmd.Flags().BoolVar(&flagRestart, "restart", false, "discard checkpoints and start over")
	processCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel lookup workers (default from config)")
	_ = processCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(processCmd)
}

// buildClient picks the search provider: the RapidAPI endpoint when a key is
// configured, the keyless HTML endpoint otherwise.
func buildClient(cfg config.Config) (*search.Client, error) {
	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second

	key, err := secrets.GetAPIKey()
	if err != nil {
		log.Printf("[process] keychain unavailable: %v", err)
	}

	var provider search.Provider
	if key != "" {
		provider, err = search.NewRapidAPIProvider(key, timeout)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("[process] no API key configured (%s or `sift apikey set`); using HTML fallback", secrets.EnvAPIKey)
		provider = search.NewHTMLProvider(timeout)
	}
	log.Printf("[process] search provider: %s, rate limit %.2f req/s", provider.Name(), cfg.Search.RateLimit)

	pacer := search.NewPacer(cfg.Search.RateLimit, cfg.Search.Burst)
	backoff := search.Backoff{
		Base: time.Duration(cfg.Search.BackoffBaseSeconds * float64(time.Second)),
		Cap:  time.Duration(cfg.Search.BackoffCapSeconds * float64(time.Second)),
	}
	return search.NewClient(provider, pacer, backoff, cfg.Search.MaxRetries), nil
}

// watchProgress logs a line every progressEvery processed records.
func watchProgress(hub *events.Hub, progressEvery int) chan struct{} {
	done := make(chan struct{})
	ch := hub.Subscribe()
	go func() {
		defer hub.Unsubscribe(ch)
		for {
			select {
			case <-done:
				return
			case p := <-ch:
				if p.Status != domain.StatusSkipped && p.Processed%progressEvery == 0 {
					log.Printf("[process] %d/%d processed (last: %s -> %s)",
						p.Processed, p.Total, p.CompanyName, p.Status)
				}
			}
		}
	}()
	return done
}

func printSummary(s pipeline.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\nProcessed %d records: %s success, %s no-match, %s failed, %d skipped\n",
		s.Processed,
		green(s.Success),
		yellow(s.NoMatch),
		red(s.Failed),
		s.Skipped)
}
