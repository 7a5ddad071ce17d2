package main

import (
	"context"
	"time"

	"github.com/gabapcia/cexwatch/internal/batchproc"
	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/handlers/cli"
	"github.com/gabapcia/cexwatch/internal/handlers/webhook"
	"github.com/gabapcia/cexwatch/internal/infra/notification/discord"
	"github.com/gabapcia/cexwatch/internal/infra/price/coingecko"
	"github.com/gabapcia/cexwatch/internal/infra/storage/postgres"
	"github.com/gabapcia/cexwatch/internal/infra/storage/redis"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/pkg/telemetry"
	"github.com/gabapcia/cexwatch/internal/pkg/validator"
	"github.com/gabapcia/cexwatch/internal/pkg/wei"
	"github.com/gabapcia/cexwatch/internal/whalewatch"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// config is the full service configuration, loaded from the environment
// at startup and validated before anything is wired.
type config struct {
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	OtelServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"cexwatch"`

	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":3005"`
	MaxBodyBytes int64  `envconfig:"HTTP_MAX_BODY_BYTES" default:"4194304" validate:"gt=0"`

	ValueFormat          string   `envconfig:"VALUE_WEI_FORMAT" default:"decimal" validate:"required"`
	WhaleThresholdETH    string   `envconfig:"WHALE_THRESHOLD_ETH" default:"10.0" validate:"required"`
	TopNWhales           int      `envconfig:"TOP_N_WHALES" default:"5" validate:"gt=0"`
	TopNCexEntries       int      `envconfig:"TOP_N_CEX_ENTRIES_TO_SHOW" default:"15" validate:"gt=0"`
	CexKeywords          []string `envconfig:"CEX_KEYWORDS"`
	BatchWorkers         int      `envconfig:"BATCH_WORKERS" default:"4" validate:"gt=0"`
	BatchQueueSize       int      `envconfig:"BATCH_QUEUE_SIZE" default:"64" validate:"gt=0"`
	ShutdownGraceSeconds int      `envconfig:"SHUTDOWN_GRACE_SECONDS" default:"10" validate:"gt=0"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" validate:"required"`

	DiscordFlowWebhookURL  string `envconfig:"DISCORD_WEBHOOK_URL"`
	DiscordWhaleWebhookURL string `envconfig:"DISCORD_WHALE_WEBHOOK_URL"`

	PriceCoinID string `envconfig:"COINGECKO_API_ID" default:"ethereum"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	if err := validator.Validate(cfg); err != nil {
		panic(err)
	}

	// Telemetry comes up first so the logger can attach its OTEL bridge core.
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OtelServiceName)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error(ctx, "error shutting down telemetry", "error", err)
		}
	}()

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	format, err := wei.ParseFormat(cfg.ValueFormat)
	if err != nil {
		logger.Fatal(ctx, "invalid value format", "error", err)
	}
	parser := wei.NewParser(format)

	threshold, err := decimal.NewFromString(cfg.WhaleThresholdETH)
	if err != nil {
		logger.Fatal(ctx, "invalid whale threshold", "error", err)
	}

	keywords := cfg.CexKeywords
	if len(keywords) == 0 {
		keywords = cexflow.DefaultKeywords()
	}

	aggregator := cexflow.NewAggregator(cexflow.NewKeywords(keywords), parser)
	detector := whalewatch.NewDetector(threshold, cfg.TopNWhales, parser)

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal(ctx, "error connecting to redis", "error", err)
	}
	defer redisClient.Close()

	postgresClient, err := postgres.NewClient(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal(ctx, "error connecting to postgres", "error", err)
	}
	defer postgresClient.Close()

	if err := postgresClient.InitSchema(ctx); err != nil {
		logger.Fatal(ctx, "error initializing postgres schema", "error", err)
	}

	discordClient := discord.NewClient(
		cfg.DiscordFlowWebhookURL,
		cfg.DiscordWhaleWebhookURL,
		discord.WithTopFlowEntries(cfg.TopNCexEntries),
	)
	priceClient := coingecko.NewClient(cfg.PriceCoinID)

	bp := batchproc.New(
		aggregator,
		detector,
		redisClient,
		priceClient,
		discordClient,
		discordClient,
		postgresClient,
		batchproc.WithWorkers(cfg.BatchWorkers),
		batchproc.WithQueueSize(cfg.BatchQueueSize),
		batchproc.WithShutdownGracePeriod(time.Duration(cfg.ShutdownGraceSeconds)*time.Second),
	)

	server := webhook.New(cfg.HTTPAddr, bp, webhook.WithMaxBodyBytes(cfg.MaxBodyBytes))

	if err := cli.Run(ctx, bp, server, redisClient); err != nil {
		logger.Fatal(ctx, "cexwatch terminated with error", "error", err)
	}
}
