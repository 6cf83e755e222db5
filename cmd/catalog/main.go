package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/letmevibethatforyou/unicatalog/debounce"
	"github.com/letmevibethatforyou/unicatalog/internal/transport"
	"github.com/letmevibethatforyou/unicatalog/recommend"
	"github.com/letmevibethatforyou/unicatalog/search"
	"github.com/urfave/cli/v2"
)

const defaultBreakerFailures = 5

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file loaded, using process environment", "path", envFile)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	app := &cli.App{
		Name:  "catalog",
		Usage: "Browse and search the university admission catalogue",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Catalogue backend: http, algolia or memory",
				Value:   backendHTTP,
			},
			&cli.StringFlag{
				Name:    "catalog-url",
				Usage:   "Base URL of the catalogue API",
				EnvVars: []string{"CATALOG_URL"},
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Algolia index name",
				EnvVars: []string{"ALGOLIA_INDEX"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.PathFlag{
				Name:  "data",
				Usage: "JSON file with the catalogue for the memory backend",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each catalogue request",
				Value: search.DefaultFetchTimeout,
			},
			&cli.DurationFlag{
				Name:  "quiet",
				Usage: "Quiet period before a typed term is searched",
				Value: debounce.DefaultQuiet,
			},
			&cli.UintFlag{
				Name:  "breaker-failures",
				Usage: "Consecutive failures before the HTTP circuit opens",
				Value: defaultBreakerFailures,
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Language of error messages: en or vi",
				Value: "en",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Load the catalogue and print the universities matching a term",
				ArgsUsage: "[term]",
				Action:    searchAction,
			},
			{
				Name:      "show",
				Usage:     "Print one university with its benchmarks grouped by admission method",
				ArgsUsage: "<code>",
				Action:    showAction,
			},
			{
				Name:      "recommend",
				Usage:     "Post a student profile to the recommendation service and print the answer",
				ArgsUsage: "[student.json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "recommend-url",
						Usage:    "Base URL of the recommendation service",
						EnvVars:  []string{"RECOMMEND_URL"},
						Required: true,
					},
				},
				Action: recommendAction,
			},
			{
				Name:   "browse",
				Usage:  "Read terms from stdin, one per line, and print every search state",
				Action: browseAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func searchAction(c *cli.Context) error {
	ctx := c.Context
	term := strings.Join(c.Args().Slice(), " ")

	catalog, err := newCatalog(c)
	if err != nil {
		return err
	}
	opts, err := sessionOptions(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout")+time.Second)
	defer cancel()

	slog.InfoContext(ctx, "executing search", "term", term, "backend", c.String("backend"))
	return runSearch(ctx, catalog, term, os.Stdout, opts...)
}

func showAction(c *cli.Context) error {
	ctx := c.Context
	if c.NArg() != 1 {
		return fmt.Errorf("show takes exactly one university code, got %d arguments", c.NArg())
	}

	catalog, err := newCatalog(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
	defer cancel()

	return runShow(ctx, catalog, c.Args().First(), os.Stdout)
}

func recommendAction(c *cli.Context) error {
	ctx := c.Context

	client, err := recommend.NewClient(c.String("recommend-url"),
		transport.WithBreaker("recommend", c.Duration("timeout"), uint32(c.Uint("breaker-failures"))),
	)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if c.NArg() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return fmt.Errorf("failed to open student profile: %w", err)
		}
		defer f.Close()
		in = f
	}

	ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
	defer cancel()

	slog.InfoContext(ctx, "requesting recommendation", "url", c.String("recommend-url"))
	return runRecommend(ctx, client, in, os.Stdout)
}

func browseAction(c *cli.Context) error {
	catalog, err := newCatalog(c)
	if err != nil {
		return err
	}
	opts, err := sessionOptions(c)
	if err != nil {
		return err
	}

	quiet := c.Duration("quiet")
	if quiet <= 0 {
		quiet = debounce.DefaultQuiet
	}
	return runBrowse(c.Context, catalog, os.Stdin, os.Stdout, quiet, opts...)
}
