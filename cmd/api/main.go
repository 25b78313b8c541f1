package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udiptgupta/Risk-lab/config"
	"github.com/udiptgupta/Risk-lab/internal/batch"
	"github.com/udiptgupta/Risk-lab/internal/generator"
	"github.com/udiptgupta/Risk-lab/internal/kafka"
	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/internal/valuation"
	"github.com/udiptgupta/Risk-lab/internal/websocket"
	"github.com/udiptgupta/Risk-lab/pkg/api"
	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

var seedDemo = flag.Bool("seed", false, "Seed the store with generated bonds and curves on startup")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("api.main")
	log.Info("Starting bond risk API service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder()

	var (
		bonds        store.BondStore
		curves       store.CurveStore
		spreads      store.SpreadStore
		metricsStore store.MetricsStore
	)

	if cfg.Database.Enabled {
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

		if err := pg.Ping(ctx); err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		bonds, curves, spreads, metricsStore = pg, pg, pg, pg
	} else {
		mem := store.NewMemoryStore()
		bonds, curves, spreads, metricsStore = mem, mem, mem, mem
		log.Info("Database disabled, using in-memory store")
	}

	if *seedDemo {
		if err := seed(ctx, cfg, bonds, curves, spreads); err != nil {
			log.Fatalf("Failed to seed store: %v", err)
		}
		log.Info("Seeded store with generated market data")
	}

	if cfg.Cache.Enabled {
		cached := store.NewCachedMarketData(curves, spreads, cfg.Cache.Addr, cfg.Cache.TTL, recorder)
		curves, spreads = cached, cached
		log.Infof("Market data cache enabled at %s", cfg.Cache.Addr)
	}

	var publisher batch.Publisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxRetries,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		})
		publisher = producer
	}

	valuer := valuation.NewService(bonds, curves, spreads, recorder)
	recomputer := batch.NewRecomputer(batch.Config{Workers: cfg.Valuation.Workers}, bonds, metricsStore, valuer, publisher, recorder)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Relay published risk metrics to websocket subscribers.
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		go func() {
			if err := consumer.Run(ctx, hub.Broadcast); err != nil {
				log.Errorf("Kafka consumer stopped: %v", err)
			}
		}()
	}

	handlers := api.CreateHandlers(bonds, metricsStore, valuer, recomputer, hub)
	apiServer := api.NewServer(api.Config{
		Host:         cfg.API.Host,
		Port:         cfg.API.Port,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		Environment:  cfg.App.Environment,
	}, handlers, recorder)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Errorf("API server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infof("Received signal %v, initiating shutdown", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Errorf("API server shutdown error: %v", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Errorf("Kafka consumer shutdown error: %v", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Errorf("Kafka producer shutdown error: %v", err)
		}
	}

	log.Info("Shutdown complete")
}

func seed(ctx context.Context, cfg *config.Config, bonds store.BondStore, curves store.CurveStore, spreads store.SpreadStore) error {
	gen := generator.New(generator.Config{
		Seed:       cfg.Generator.Seed,
		Bonds:      cfg.Generator.Bonds,
		CurveDays:  cfg.Generator.CurveDays,
		MaxTenor:   cfg.Generator.MaxTenor,
		BaseYield:  cfg.Generator.BaseYield,
		YieldSlope: cfg.Generator.YieldSlope,
	})

	if err := bonds.SaveBonds(ctx, gen.Bonds()); err != nil {
		return err
	}
	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	for _, curve := range gen.Curves(asOf) {
		if err := curves.SaveCurve(ctx, curve); err != nil {
			return err
		}
	}
	return spreads.SaveSpreads(ctx, gen.Spreads())
}
