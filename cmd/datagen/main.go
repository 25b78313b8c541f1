package main

import (
	"context"
	"flag"
	"time"

	"github.com/udiptgupta/Risk-lab/config"
	"github.com/udiptgupta/Risk-lab/internal/generator"
	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

var (
	bondCount = flag.Int("bonds", 0, "Number of bonds to generate (overrides config)")
	initOnly  = flag.Bool("init-only", false, "Create the schema and exit without generating data")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("datagen.main")

	ctx := context.Background()

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

	if err := pg.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Info("Schema ready")

	if *initOnly {
		return
	}

	genCfg := generator.Config{
		Seed:       cfg.Generator.Seed,
		Bonds:      cfg.Generator.Bonds,
		CurveDays:  cfg.Generator.CurveDays,
		MaxTenor:   cfg.Generator.MaxTenor,
		BaseYield:  cfg.Generator.BaseYield,
		YieldSlope: cfg.Generator.YieldSlope,
	}
	if *bondCount > 0 {
		genCfg.Bonds = *bondCount
	}
	gen := generator.New(genCfg)

	bonds := gen.Bonds()
	if err := pg.SaveBonds(ctx, bonds); err != nil {
		log.Fatalf("Failed to insert bonds: %v", err)
	}
	log.Infof("Inserted %d bonds", len(bonds))

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	curves := gen.Curves(asOf)
	for _, curve := range curves {
		if err := pg.SaveCurve(ctx, curve); err != nil {
			log.Fatalf("Failed to insert curve for %s: %v", curve.CurveDate.Format("2006-01-02"), err)
		}
	}
	log.Infof("Inserted %d yield curves", len(curves))

	if err := pg.SaveSpreads(ctx, gen.Spreads()); err != nil {
		log.Fatalf("Failed to insert credit spreads: %v", err)
	}
	log.Info("Inserted credit spreads")
}
