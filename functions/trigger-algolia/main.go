package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/algolia"
	"github.com/letmevibethatforyou/unicatalog/internal/ddb"
	"github.com/urfave/cli/v2"
)

// Indexer is the write side of the Algolia index.
type Indexer interface {
	SaveUniversity(ctx context.Context, indexName string, detail *unicatalog.Detail) error
	DeleteUniversity(ctx context.Context, indexName string, code string) error
}

type Handler struct {
	tableName string
	indexName string
	indexer   Indexer
}

func NewHandler(tableName, indexName string, indexer Indexer) *Handler {
	return &Handler{
		tableName: tableName,
		indexName: indexName,
		indexer:   indexer,
	}
}

func (h *Handler) HandleDynamoDBEvent(ctx context.Context, e events.DynamoDBEvent) error {
	slog.InfoContext(ctx, "Processing DynamoDB stream records", "record_count", len(e.Records), "table", h.tableName)

	for _, record := range e.Records {
		if err := h.processRecord(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Error processing record", "error", err, "event_id", record.EventID)
			return err
		}
	}

	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	switch ddb.OperationType(record.EventName) {
	case ddb.OperationTypeInsert, ddb.OperationTypeModify:
		if record.Change.NewImage == nil {
			slog.WarnContext(ctx, "No new image for insert/modify operation, skipping record")
			return nil
		}

		parsed, ok := h.parse(ctx, record.Change.NewImage)
		if !ok {
			return nil
		}

		slog.InfoContext(ctx, "Saving university to Algolia", "code", parsed.Object.Code, "id", parsed.ID, "index", h.indexName)
		return h.indexer.SaveUniversity(ctx, h.indexName, &parsed.Object)

	case ddb.OperationTypeRemove:
		// Keys carry only pk/sk; the object id in Algolia is the code,
		// which is only present in the old image.
		if record.Change.OldImage == nil {
			slog.WarnContext(ctx, "No old image for remove operation, stream must use NEW_AND_OLD_IMAGES; skipping record")
			return nil
		}

		parsed, ok := h.parse(ctx, record.Change.OldImage)
		if !ok {
			return nil
		}

		slog.InfoContext(ctx, "Deleting university from Algolia", "code", parsed.Object.Code, "id", parsed.ID, "index", h.indexName)
		return h.indexer.DeleteUniversity(ctx, h.indexName, parsed.Object.Code)

	default:
		slog.InfoContext(ctx, "Ignoring event type", "event_type", record.EventName)
		return nil
	}
}

// parse decodes an image and reports whether it is a university record
// worth syncing. Malformed records are skipped rather than failing the batch.
func (h *Handler) parse(ctx context.Context, image map[string]events.DynamoDBAttributeValue) (ddb.Record, bool) {
	parsed, err := ddb.UnmarshalRecord(image)
	if err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal record, skipping", "error", err)
		return ddb.Record{}, false
	}

	if parsed.ID == "" {
		slog.WarnContext(ctx, "Missing ID (pk) in record, skipping record")
		return ddb.Record{}, false
	}
	if parsed.Kind != ddb.UniversityKind {
		slog.DebugContext(ctx, "Not a university record, skipping", "id", parsed.ID, "kind", parsed.Kind)
		return ddb.Record{}, false
	}
	if parsed.Object.Code == "" {
		slog.WarnContext(ctx, "Missing university code in record, skipping record", "id", parsed.ID)
		return ddb.Record{}, false
	}

	return parsed, true
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "university-algolia-sync",
		Usage: "Mirror DynamoDB university records into an Algolia index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table-name",
				Usage:    "DynamoDB table name to sync from",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "index",
				Usage:    "Algolia index receiving the universities",
				EnvVars:  []string{"ALGOLIA_INDEX"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")
	indexName := c.String("index")
	env := c.String("env")
	secretArn := c.String("algolia-secret-arn")
	algoliaAppID := c.String("algolia-app-id")
	algoliaAPIKey := c.String("algolia-api-key")

	slog.InfoContext(ctx, "Starting DynamoDB to Algolia sync", "table", tableName, "index", indexName, "environment", env)

	var fetchSecrets algolia.FetchSecrets

	switch {
	case env != "" || secretArn != "":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
			return err
		}
		client := secretsmanager.NewFromConfig(cfg)

		if secretArn != "" {
			slog.InfoContext(ctx, "Using AWS Secrets Manager secret ARN for credentials", "secret_arn", secretArn)
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, client, secretArn)
		} else {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
			fetchSecrets = algolia.AWSSecrets(ctx, client, env)
		}
	case algoliaAppID != "" && algoliaAPIKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(algoliaAppID, algoliaAPIKey)
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	handler := NewHandler(tableName, indexName, algolia.NewClient(fetchSecrets))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleDynamoDBEvent)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
