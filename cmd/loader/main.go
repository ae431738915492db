// Command loader performs one scheduled extract-normalize-load run of
// Meta Ads daily performance metrics into Snowflake. The external
// scheduler invokes it once per day; exit code 0 means LOADED, anything
// else means FAILED and the scheduler's retry policy decides what happens
// next.
//
// Usage:
//
//	loader [-config config.yaml] [-date 2024-06-01] [-resume <token>]
//
// Without -date the window is yesterday (UTC). With -resume the run skips
// extraction and loads the batch staged under the given handoff token.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meta-ads-loader/internal/config"
	"github.com/ignite/meta-ads-loader/internal/domain"
	"github.com/ignite/meta-ads-loader/internal/handoff"
	"github.com/ignite/meta-ads-loader/internal/metaads"
	"github.com/ignite/meta-ads-loader/internal/pkg/distlock"
	"github.com/ignite/meta-ads-loader/internal/pkg/logger"
	"github.com/ignite/meta-ads-loader/internal/runner"
	"github.com/ignite/meta-ads-loader/internal/snowflake"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional; env vars win)")
	dateArg := flag.String("date", "", "window day as YYYY-MM-DD (default: yesterday UTC)")
	resumeToken := flag.String("resume", "", "handoff token from a prior run; load-only retry")
	flag.Parse()

	log.Println("Starting Meta Ads loader...")

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Credentials are checked before any network call is attempted.
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	window := domain.Yesterday(time.Now())
	if *dateArg != "" {
		window, err = domain.ParseDay(*dateArg)
		if err != nil {
			log.Fatalf("Invalid -date: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
	}

	// The scheduler enforces single-active-run; the lock guards against a
	// manual launch overlapping a scheduled one on the same day.
	lock := distlock.New(redisClient, "meta-ads-loader:"+window.Date(), cfg.Run.LockTTL())
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		log.Fatalf("Failed to acquire run lock: %v", err)
	}
	if !acquired {
		log.Fatalf("Another run is already active for %s", window.Date())
	}
	defer lock.Release(context.Background())

	extractor := metaads.NewClient(cfg.MetaAds, cfg.Run.ExtractMaxRetries)
	store := handoff.NewStore(redisClient, cfg.Run.HandoffTTL())
	connect := func() (runner.Loader, error) {
		return snowflake.NewClient(cfg.Snowflake)
	}

	ctrl := runner.New(extractor, store, connect, cfg.Run.LoadMaxRetries, cfg.Run.LoadRetryDelay(), cfg.Run.LoadTimeout())

	var res *runner.Result
	if *resumeToken != "" {
		res = ctrl.ResumeLoad(ctx, *resumeToken)
	} else {
		res = ctrl.Run(ctx, window)
	}

	if res.State != domain.RunLoaded {
		logger.Error("run did not complete",
			"run_id", res.RunID,
			"state", string(res.State),
			"stage", string(res.Stage),
		)
		// The run ID doubles as the handoff token; printed in clear so the
		// operator can retry the load without re-extracting.
		if res.Token != "" {
			log.Printf("Staged batch retained; retry with: loader -resume %s", res.Token)
		}
		os.Exit(1)
	}

	log.Printf("Run %s loaded %d rows for %s", res.RunID, res.Rows, window.Date())
}
