package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/udiptgupta/Risk-lab/config"
	"github.com/udiptgupta/Risk-lab/internal/batch"
	"github.com/udiptgupta/Risk-lab/internal/kafka"
	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/internal/valuation"
	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

var asOfFlag = flag.String("as-of", "", "Valuation date (YYYY-MM-DD, defaults to today)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("batch.main")

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if *asOfFlag != "" {
		asOf, err = time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			log.Fatalf("Invalid as-of date %q: %v", *asOfFlag, err)
		}
	}

	if !cfg.Database.Enabled {
		log.Fatal("Batch recompute requires database.enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := store.NewPostgresStore(store.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	recorder := metrics.NewRecorder()

	var curves store.CurveStore = pg
	var spreads store.SpreadStore = pg
	if cfg.Cache.Enabled {
		cached := store.NewCachedMarketData(pg, pg, cfg.Cache.Addr, cfg.Cache.TTL, recorder)
		curves, spreads = cached, cached
	}

	var publisher batch.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxRetries,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		})
		defer producer.Close()
		publisher = producer
	}

	valuer := valuation.NewService(pg, curves, spreads, recorder)
	recomputer := batch.NewRecomputer(batch.Config{Workers: cfg.Valuation.Workers}, pg, pg, valuer, publisher, recorder)

	summary, err := recomputer.Run(ctx, asOf)
	if err != nil {
		log.Fatalf("Batch recompute failed: %v", err)
	}

	log.Infof("Recompute for %s finished: %d processed, %d failed in %s",
		asOf.Format("2006-01-02"), summary.Processed, summary.Failed, summary.Elapsed)
	if summary.Failed > 0 {
		log.Warnf("Failed bond IDs: %v", summary.FailedIDs)
	}
}
