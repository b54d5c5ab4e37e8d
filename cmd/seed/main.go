package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/repository/postgres"
	"github.com/andresuchdata/supplychain-brain/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (defaults to the DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newWorkersFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "workers",
		Usage: "Number of files parsed concurrently",
		Value: 4,
	}
}

func initDB(c *cli.Context) error {
	dsn := c.String("db-url")
	if dsn == "" {
		dsn = config.Load().Database.DSN()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, postgres.FromSQL(db, "pgx"))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func repository(c *cli.Context) (*postgres.DatasetRepository, error) {
	db, ok := c.Context.Value(dbKey).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database is not initialized")
	}
	return postgres.NewDatasetRepository(db), nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := config.Load()
	logger.Configure(cfg.Server.Mode, cfg.Server.LogFormat)

	dbCommand := func(cmd *cli.Command) *cli.Command {
		cmd.Flags = append([]cli.Flag{newDBURLFlag()}, cmd.Flags...)
		cmd.Before = initDB
		cmd.After = closeDB
		return cmd
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Manage the dataset library",
		Commands: []*cli.Command{
			dbCommand(&cli.Command{
				Name:   "migrate",
				Usage:  "Create the dataset library tables",
				Action: runMigrate,
			}),
			dbCommand(&cli.Command{
				Name:      "import",
				Usage:     "Import local CSV/XLSX files into the library",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Library name (single file only)"},
					&cli.StringFlag{Name: "dir", Usage: "Import every dataset file of this directory"},
					newWorkersFlag(),
				},
				Action: runImportFiles,
			}),
			dbCommand(&cli.Command{
				Name:  "import-object",
				Usage: "Import datasets from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Object key prefix", Value: ""},
					newWorkersFlag(),
				},
				Action: runImportObjects,
			}),
			dbCommand(&cli.Command{
				Name:  "import-drive",
				Usage: "Import datasets from a Google Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Usage: "Drive folder path", Value: cfg.Drive.FolderPath},
					newWorkersFlag(),
				},
				Action: runImportDrive,
			}),
			dbCommand(&cli.Command{
				Name:   "list",
				Usage:  "List library datasets",
				Action: runList,
			}),
			{
				Name:  "sync-drive",
				Usage: "Download a Google Drive folder into the data directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Usage: "Drive folder path", Value: cfg.Drive.FolderPath},
					&cli.StringFlag{Name: "out", Usage: "Destination directory", Value: cfg.App.DataDir},
					&cli.BoolFlag{Name: "convert-xlsx", Usage: "Store workbooks as CSV", Value: true},
				},
				Action: runSyncDrive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}
