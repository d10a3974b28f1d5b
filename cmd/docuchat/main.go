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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/docuchat"
	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/ai/openai"
	"github.com/poiesic/docuchat/config"
	"github.com/poiesic/docuchat/queue"
	"github.com/poiesic/docuchat/reembed"
	"github.com/poiesic/docuchat/server"
	"github.com/poiesic/docuchat/storage/badger"
)

var logCleanup func() error = func() error { return nil }

func main() {
	app := &cli.App{
		Name:  "docuchat",
		Usage: "Document ingestion and resource-grounded chat",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Append JSON logs to this file in addition to stderr",
			},
		},
		Before: setupLogger,
		After: func(c *cli.Context) error {
			return logCleanup()
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8080",
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Process a file into a resource's chunk store",
				ArgsUsage: "FILE_KEY",
				Action:    ingestCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:     "resource",
						Aliases:  []string{"r"},
						Usage:    "Resource the chunks belong to",
						Required: true,
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Ask a one-shot question against a resource",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:     "resource",
						Aliases:  []string{"r"},
						Usage:    "Resource to query",
						Required: true,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all stored chunks",
				Action: reembedCommand,
				Flags: append(systemFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "threads",
				Usage:  "List a user's conversation threads",
				Action: threadsCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User to list threads for",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "deactivate",
						Usage: "Deactivate this thread ID instead of listing",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./docuchat-db",
		},
		&cli.StringFlag{
			Name:  "file-root",
			Usage: "Directory file keys resolve against",
			Value: ".",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL for embeddings and generation",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "generation-model",
			Usage: "Text generation model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the AI service",
			EnvVars: []string{"DOCUCHAT_API_TOKEN"},
		},
	}
}

func openSystem(c *cli.Context) (*docuchat.System, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	sys, err := docuchat.NewSystem(c.String("db"),
		docuchat.WithAIConfig(aiConfig),
		docuchat.WithFileRoot(c.String("file-root")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open system: %w", err)
	}
	return sys, nil
}

func serveCommand(c *cli.Context) error {
	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	srv := server.NewServer(c.String("addr"), sys.Queue(), sys.Workflow(), sys.Threads())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func ingestCommand(c *cli.Context) error {
	fileKey := c.Args().First()
	if fileKey == "" {
		return fmt.Errorf("file key argument is required")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	resourceID := c.String("resource")
	err = sys.Queue().Enqueue(context.Background(), queue.Task{
		FileKey:    fileKey,
		ResourceID: resourceID,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue: %w", err)
	}
	sys.Queue().Wait()

	state, err := sys.Queue().Status(resourceID)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", state.Status)
	if state.Message != "" {
		fmt.Println(state.Message)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question argument is required")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	answer, err := sys.Engine().Query(context.Background(), c.String("resource"), question, nil)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	fmt.Println(answer.Content)
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer chunks.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	r := reembed.NewReembedder(chunks, provider.Embedder(), os.Stderr, &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	})

	stats, err := r.Run(ctx)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	fmt.Printf("reembedded %d chunks in %s\n", stats.Updated, stats.Elapsed.Round(time.Millisecond))
	return nil
}

func threadsCommand(c *cli.Context) error {
	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	if threadID := c.String("deactivate"); threadID != "" {
		if err := sys.Threads().Deactivate(context.Background(), threadID); err != nil {
			return fmt.Errorf("failed to deactivate thread: %w", err)
		}
		fmt.Println("thread deactivated")
		return nil
	}

	threads, err := sys.Threads().List(context.Background(), c.String("user"))
	if err != nil {
		return fmt.Errorf("failed to list threads: %w", err)
	}
	if len(threads) == 0 {
		fmt.Println("no threads")
		return nil
	}
	for _, t := range threads {
		fmt.Printf("%s  %-30s  messages=%d  last=%s\n",
			t.ThreadID, t.Title, t.MessageCount, t.LastMessageAt.Format(time.RFC3339))
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	switch levelStr {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger, cleanup := config.SetupLogger(c.String("log-file"), config.ParseLevel(levelStr))
	slog.SetDefault(logger)
	logCleanup = cleanup
	return nil
}
