package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/algolia"
	"github.com/letmevibethatforyou/unicatalog/internal/ddb"
	"github.com/letmevibethatforyou/unicatalog/internal/transport"
	"github.com/letmevibethatforyou/unicatalog/recommend"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// PutItemAPI is the part of the DynamoDB client the seeder uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

func insertUniversity(ctx context.Context, client PutItemAPI, tableName string, detail unicatalog.Detail) (ddb.Record, error) {
	record := ddb.NewRecord(ksuid.New().String(), detail)

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return ddb.Record{}, fmt.Errorf("failed to marshal university record: %w", err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return ddb.Record{}, fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}

	slog.InfoContext(ctx, "Successfully inserted university",
		"id", record.ID,
		"code", detail.Code,
		"name", detail.Name,
		"benchmarks", len(detail.Benchmarks),
	)

	return record, nil
}

func seedUniversities(ctx context.Context, client PutItemAPI, tableName string, count int, r *rand.Rand) (int, error) {
	if count <= 0 || count > len(universities) {
		count = len(universities)
	}

	for i := 0; i < count; i++ {
		detail := generateDetail(universities[i], r)
		if _, err := insertUniversity(ctx, client, tableName, detail); err != nil {
			return i, fmt.Errorf("failed to insert university %d: %w", i+1, err)
		}
	}
	return count, nil
}

func universitiesAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	tableName := c.String("table-name")
	count := c.Int("count")

	slog.InfoContext(ctx, "Starting university generator",
		"environment", env,
		"table", tableName,
		"count", count,
	)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg)

	seed := uint64(time.Now().UnixNano())
	inserted, err := seedUniversities(ctx, client, tableName, count, rand.New(rand.NewPCG(seed, seed>>1)))
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all universities", "count", inserted)
	return nil
}

// BatchSaver is the part of the Algolia client used for direct indexing.
type BatchSaver interface {
	BatchSaveUniversities(ctx context.Context, indexName string, details []*unicatalog.Detail) error
}

func indexUniversities(ctx context.Context, saver BatchSaver, indexName string, count int, r *rand.Rand) (int, error) {
	if count <= 0 || count > len(universities) {
		count = len(universities)
	}

	details := make([]*unicatalog.Detail, 0, count)
	for i := 0; i < count; i++ {
		d := generateDetail(universities[i], r)
		d.ID = ksuid.New().String()
		details = append(details, &d)
	}

	if err := saver.BatchSaveUniversities(ctx, indexName, details); err != nil {
		return 0, err
	}
	return count, nil
}

func algoliaAction(c *cli.Context) error {
	ctx := c.Context
	indexName := c.String("index")
	secretArn := c.String("algolia-secret-arn")

	var fetchSecrets algolia.FetchSecrets
	if secretArn != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		fetchSecrets = algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn)
	} else {
		fetchSecrets = algolia.EnvSecrets()
	}

	seed := uint64(time.Now().UnixNano())
	indexed, err := indexUniversities(ctx, algolia.NewClient(fetchSecrets), indexName, c.Int("count"), rand.New(rand.NewPCG(seed, seed>>1)))
	if err != nil {
		return fmt.Errorf("failed to index universities: %w", err)
	}

	slog.InfoContext(ctx, "Successfully indexed universities in Algolia", "index", indexName, "count", indexed)
	return nil
}

func samplesAction(c *cli.Context) error {
	ctx := c.Context
	baseURL := c.String("recommend-url")
	numSamples := c.Int("num-samples")
	method := c.String("method")

	client, err := recommend.NewClient(baseURL,
		transport.WithBreaker("recommend", c.Duration("timeout"), 3),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
	defer cancel()

	slog.InfoContext(ctx, "Requesting synthetic training data", "url", baseURL, "num_samples", numSamples, "method", method)

	generated, err := client.GenerateData(ctx, numSamples, method)
	if err != nil {
		return fmt.Errorf("generate data failed: %w", err)
	}

	slog.InfoContext(ctx, "Synthetic training data generated", "count", generated.Count, "file_path", generated.FilePath)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate university catalogue data",
		Commands: []*cli.Command{
			{
				Name:  "universities",
				Usage: "Seed sample universities and benchmarks into DynamoDB",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "env",
						Aliases:  []string{"e"},
						Usage:    "Environment name",
						EnvVars:  []string{"ENVIRONMENT"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "table-name",
						Aliases:  []string{"t"},
						Usage:    "DynamoDB table name",
						EnvVars:  []string{"TABLE_NAME"},
						Required: true,
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"c"},
						Usage:   "Number of universities to seed; 0 seeds all of them",
						Value:   0,
					},
				},
				Action: universitiesAction,
			},
			{
				Name:  "algolia",
				Usage: "Index sample universities directly into Algolia, bypassing DynamoDB",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Algolia index name",
						EnvVars:  []string{"ALGOLIA_INDEX"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "algolia-secret-arn",
						Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
						EnvVars: []string{"ALGOLIA_SECRET_ARN"},
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"c"},
						Usage:   "Number of universities to index; 0 indexes all of them",
					},
				},
				Action: algoliaAction,
			},
			{
				Name:  "samples",
				Usage: "Ask the recommendation service to generate synthetic training data",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "recommend-url",
						Usage:    "Base URL of the recommendation service",
						EnvVars:  []string{"RECOMMEND_URL"},
						Required: true,
					},
					&cli.IntFlag{
						Name:    "num-samples",
						Aliases: []string{"n"},
						Usage:   "Number of samples to generate",
						Value:   1000,
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "Generation method understood by the service",
						Value: "random",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout for the generation request",
						Value: 2 * time.Minute,
					},
				},
				Action: samplesAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
