// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/recollect"
	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/openai"
	"github.com/poiesic/recollect/config"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
	"github.com/poiesic/recollect/reembed"
	"github.com/poiesic/recollect/storage/badger"
	recsync "github.com/poiesic/recollect/sync"
	"github.com/urfave/cli/v2"
)

func main() {
	// Missing .env is fine; flags and config cover everything
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "recollect",
		Usage: "Transcript ingestion and similarity retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a transcript file as one conversation",
				Action: ingestCommand,
				Flags: append(embeddingFlags(),
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a JSON transcript file",
						Required: true,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search stored conversations by similarity",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(embeddingFlags(),
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				),
			},
			{
				Name:   "sync",
				Usage:  "Poll a message feed and ingest batches incrementally",
				Action: syncCommand,
				Flags: append(embeddingFlags(),
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:     "feed",
						Usage:    "Path to a JSON-lines message feed file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "channel",
						Usage: "Source channel to sync",
					},
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Run a single sync cycle and exit",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored chunks with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of conversations to process in each page",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Embedding dimensionality",
		},
	}
}

// loadConfig merges the YAML config with command-line overrides. Flags win.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if v := c.String("db"); v != "" {
		cfg.Storage.Path = v
	}
	if v := c.String("embedding-host"); v != "" {
		cfg.Embedding.Host = v
	}
	if v := c.String("embedding-model"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := c.Int("dimensions"); v > 0 {
		cfg.Embedding.Dimensions = v
	}
	if v := c.String("channel"); v != "" {
		cfg.Sync.Channel = v
	}
	return cfg, nil
}

func openDatabase(cfg *config.AppConfig) (*recollect.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
		ai.WithDimensions(cfg.Embedding.Dimensions),
		ai.WithMaxBatchSize(cfg.Embedding.MaxBatchSize),
		ai.WithRequestTimeout(time.Duration(cfg.Embedding.TimeoutSecs)*time.Second),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}
	return recollect.NewDatabase(cfg.Storage.Path, recollect.WithAIConfig(aiConfig))
}

// transcriptFile is the on-disk JSON shape accepted by the ingest command.
type transcriptFile struct {
	ScenarioTitle string `json:"scenario_title"`
	OriginalTitle string `json:"original_title"`
	URL           string `json:"url"`
	Messages      []struct {
		AuthorName string    `json:"author_name"`
		Author     string    `json:"author"`
		Contents   string    `json:"contents"`
		Timestamp  time.Time `json:"timestamp"`
	} `json:"messages"`
}

func parseAuthorType(s string) core.AuthorType {
	switch strings.ToLower(s) {
	case "human":
		return core.AuthorTypeHuman
	case "ai":
		return core.AuthorTypeAI
	default:
		return core.AuthorTypeUnknown
	}
}

func ingestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	var transcript transcriptFile
	if err := json.Unmarshal(data, &transcript); err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}

	payload := ingestion.ConversationPayload{
		ScenarioTitle: transcript.ScenarioTitle,
		OriginalTitle: transcript.OriginalTitle,
		URL:           transcript.URL,
	}
	for _, m := range transcript.Messages {
		payload.Messages = append(payload.Messages, core.Message{
			AuthorName: m.AuthorName,
			Author:     parseAuthorType(m.Author),
			Contents:   m.Contents,
			Timestamp:  m.Timestamp,
		})
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	conversation, err := db.Ingest(context.Background(), payload)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested conversation %d (%d chunks)\n", conversation.Id, len(conversation.Chunks))
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query argument is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	hits, err := db.Search(context.Background(), query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: '%s' (%s, conversation %d) [distance %.3f, relevance %.3f]\n",
			i, hit.Chunk.Text, hit.Conversation.ScenarioTitle, hit.Conversation.Id,
			hit.Distance, hit.Relevance())
	}
	return nil
}

func syncCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Sync.Channel == "" {
		return fmt.Errorf("a sync channel is required (--channel or config)")
	}

	source, err := newFileSource(c.String("feed"))
	if err != nil {
		return fmt.Errorf("failed to open feed: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	loop, err := db.NewSyncLoop(cfg.Sync.Channel, source, source,
		recsync.WithInterval(time.Duration(cfg.Sync.IntervalSecs)*time.Second),
		recsync.WithBatchSize(cfg.Sync.BatchSize),
		recsync.WithMinBatchMessages(cfg.Sync.MinBatchMessages),
		recsync.WithPageLimit(cfg.Sync.PageLimit),
	)
	if err != nil {
		return err
	}
	defer loop.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("once") {
		return loop.RunCycle(ctx)
	}
	return loop.Run(ctx)
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewConversationRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
