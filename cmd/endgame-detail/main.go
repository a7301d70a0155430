// Command endgame-detail fetches the full resolved detail for one HSR
// endgame rotation and prints it as YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/hakushin"
	"github.com/cory-johannsen/hakushin/hsr"
	"github.com/cory-johannsen/hakushin/internal/config"
	"github.com/cory-johannsen/hakushin/internal/observability"
	"github.com/cory-johannsen/hakushin/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "optional path to a YAML config file")
	modeFlag := flag.String("mode", "maze", "endgame mode: maze, story, or boss")
	id := flag.Int64("id", 0, "endgame rotation id")
	noCache := flag.Bool("no-cache", false, "bypass the response cache")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the fetch")
	flag.Parse()

	if *id == 0 {
		fmt.Fprintln(os.Stderr, "usage: endgame-detail -mode <maze|story|boss> -id <n> [-config <file>] [-no-cache]")
		os.Exit(1)
	}
	mode := hsr.Mode(*modeFlag)
	if !mode.Valid() {
		fmt.Fprintf(os.Stderr, "unknown mode %q (supported: maze, story, boss)\n", *modeFlag)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fetcher, err := transport.New(transport.Options{
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		CachePath:  cfg.Cache.Path,
		CacheTTL:   cfg.Cache.TTL,
		UserAgent:  cfg.API.UserAgent,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer fetcher.Close()

	client, err := hsr.NewClient(fetcher, hsr.Options{
		Language:          hakushin.Language(cfg.API.Language),
		BaseURL:           cfg.API.BaseURL,
		EliteGroupURL:     cfg.API.EliteGroupURL,
		HardLevelGroupURL: cfg.API.HardLevelGroupURL,
		Logger:            logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var opts []hsr.FetchOption
	if *noCache {
		opts = append(opts, hsr.BypassCache())
	}

	detail, err := client.EndgameFullDetail(ctx, mode, *id, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal(detail)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}
