package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/louisinayinde/dashboard-finance/src/database"
	"github.com/louisinayinde/dashboard-finance/src/seeder"
	"github.com/louisinayinde/dashboard-finance/src/server"
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{
			FullTimestamp: true,
		})
	}
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	SetupLogger()

	app := cli.NewApp()
	app.Name = "dashboard-finance"
	app.Usage = "Financial dashboard backend"

	app.Commands = []cli.Command{
		serveCMD,
		seedCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the HTTP API",
		Action:      serveAction,
		Flags:       []cli.Flag{},
		Description: `Start the dashboard API server`,
	}
	seedCMD = cli.Command{
		Name:        "seed",
		Usage:       "seed the database with demo data",
		Action:      seedAction,
		Flags:       []cli.Flag{},
		Description: `Populate the database with demo users, stocks, prices and watchlists`,
	}
)

func serveAction(_ *cli.Context) error {
	logger.Info("Starting dashboard-finance API")

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	server.StartServer(os.Getenv("PORT"))
	return nil
}

func seedAction(_ *cli.Context) error {
	logger.Info("Seeding dashboard-finance database")

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	if err := seeder.Run(context.Background(), database.MainDB); err != nil {
		logger.WithError(err).Error("Seeding failed")
		return err
	}

	logger.Info("Seeding completed")
	return nil
}
