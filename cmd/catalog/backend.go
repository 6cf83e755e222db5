package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/algolia"
	"github.com/letmevibethatforyou/unicatalog/inmemory"
	"github.com/letmevibethatforyou/unicatalog/internal/transport"
	"github.com/letmevibethatforyou/unicatalog/remote"
	"github.com/letmevibethatforyou/unicatalog/search"
	"github.com/urfave/cli/v2"
)

const (
	backendHTTP    = "http"
	backendAlgolia = "algolia"
	backendMemory  = "memory"
)

func newCatalog(c *cli.Context) (unicatalog.Catalog, error) {
	ctx := c.Context

	switch backend := strings.ToLower(strings.TrimSpace(c.String("backend"))); backend {
	case backendHTTP:
		baseURL := strings.TrimSpace(c.String("catalog-url"))
		if baseURL == "" {
			return nil, fmt.Errorf("--catalog-url is required for the %s backend", backendHTTP)
		}
		slog.InfoContext(ctx, "using HTTP catalogue", "url", baseURL)
		client, err := remote.NewClient(baseURL,
			transport.WithBreaker("catalog", c.Duration("timeout"), uint32(c.Uint("breaker-failures"))),
		)
		if err != nil {
			return nil, err
		}
		return client, nil

	case backendAlgolia:
		indexName := strings.TrimSpace(c.String("index"))
		if indexName == "" {
			return nil, fmt.Errorf("--index is required for the %s backend", backendAlgolia)
		}

		fetchSecrets, err := algoliaSecrets(ctx, strings.TrimSpace(c.String("algolia-secret-arn")))
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "using Algolia catalogue", "index", indexName)
		return algolia.NewCatalog(algolia.NewClient(fetchSecrets), indexName), nil

	case backendMemory:
		path := strings.TrimSpace(c.Path("data"))
		if path == "" {
			return nil, fmt.Errorf("--data is required for the %s backend", backendMemory)
		}
		catalog, err := loadMemoryCatalog(ctx, path)
		if err != nil {
			return nil, err
		}
		return catalog, nil

	default:
		return nil, fmt.Errorf("unknown backend %q; want %s, %s or %s", backend, backendHTTP, backendAlgolia, backendMemory)
	}
}

func algoliaSecrets(ctx context.Context, secretArn string) (algolia.FetchSecrets, error) {
	if secretArn == "" {
		return algolia.EnvSecrets(), nil
	}

	slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn), nil
}

func loadMemoryCatalog(ctx context.Context, path string) (*inmemory.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue file: %w", err)
	}
	defer f.Close()

	catalog, err := inmemory.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.InfoContext(ctx, "using in-memory catalogue", "path", path, "universities", catalog.Size())
	return catalog, nil
}

func messagesFor(lang string) (search.Messages, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en":
		return search.EnglishMessages, nil
	case "vi":
		return search.VietnameseMessages, nil
	default:
		return search.Messages{}, fmt.Errorf("unsupported language %q", lang)
	}
}

func sessionOptions(c *cli.Context) ([]search.Option, error) {
	messages, err := messagesFor(c.String("lang"))
	if err != nil {
		return nil, err
	}
	return []search.Option{
		search.WithMessages(messages),
		search.WithFetchTimeout(c.Duration("timeout")),
		search.WithQuiet(c.Duration("quiet")),
		search.WithLogger(slog.Default()),
	}, nil
}
