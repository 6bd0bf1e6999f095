package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/highbelief/solar-monitor-go/internal/config"
	"github.com/highbelief/solar-monitor-go/internal/database"
	"github.com/highbelief/solar-monitor-go/internal/database/seed"
	"github.com/highbelief/solar-monitor-go/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Loads a YAML fixture of measurements, forecasts and weather into the
// configured database. Intended for demo and staging databases.
func main() {
	log := logger.New("info", "text")

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: seed <fixture.yaml>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	fixture, err := seed.LoadFile(os.Args[1])
	if err != nil {
		log.Fatal("Failed to read fixture: ", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	loc := cfg.Location()
	repos := database.NewRepositories(db, loc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := fixture.Apply(ctx, seed.Targets{
		Measurements: repos.Measurement,
		Forecasts:    repos.Forecast,
		Weather:      repos.Weather,
	}, loc)
	if err != nil {
		log.Fatal("Failed to seed database: ", err)
	}

	log.WithFields(logrus.Fields{
		"database":     cfg.Database.Path,
		"measurements": result.Measurements,
		"arima":        result.Arima,
		"sarima":       result.Sarima,
		"weather":      result.Weather,
	}).Info("Seed complete")
}
