package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresuchdata/shopdash/backend-go/internal/app"
	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/report"
	"github.com/andresuchdata/shopdash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/shopdash/backend-go/internal/storage"
	"github.com/andresuchdata/shopdash/backend-go/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string, overrides DB_* settings",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context, cfg *config.Config) (*postgres.DB, error) {
	if url := c.String("db-url"); url != "" {
		db, err := sqlx.Connect("pgx", url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.Wrap(db), nil
	}
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	cliApp := newApp(cfg)
	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "shopctl",
		Usage: "Operate the daily sales pipeline outside the API server",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Create the pipeline_runs and daily_facts tables",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					db, err := openDB(c, cfg)
					if err != nil {
						return err
					}
					defer db.Close()
					return db.Migrate(c.Context)
				},
			},
			{
				Name:  "refresh",
				Usage: "Run the pipeline once and print a yearly summary",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "local-dir",
						Usage: "Read raw tables from a directory laid out like the bucket prefix",
					},
					&cli.BoolFlag{
						Name:  "persist",
						Usage: "Record the run and replace the stored daily facts",
					},
					&cli.BoolFlag{
						Name:  "export",
						Usage: "Write the daily facts CSV export",
						Value: cfg.Pipeline.ExportCSV,
					},
				},
				Action: func(c *cli.Context) error {
					return runRefresh(c, *cfg)
				},
			},
			{
				Name:  "download",
				Usage: "Mirror the raw source tables of the bucket into a local directory",
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:    "dest",
						Usage:   "Local directory to download into",
						Value:   "./data/input",
						EnvVars: []string{"STORAGE_LOCAL_DIR"},
					},
				),
				Action: func(c *cli.Context) error {
					storageCfg := applyStorageFlags(c, cfg.Storage)
					client, err := storage.NewObjectStorage(storageCfg)
					if err != nil {
						return err
					}
					d, err := newDownloader(client, storageCfg.Prefix, c.String("dest"))
					if err != nil {
						return err
					}
					paths, err := d.downloadAll(c.Context)
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(c.App.Writer, p)
					}
					logger.Log.Info().Int("files", len(paths)).Str("dest", d.destDir).Msg("download completed")
					return nil
				},
			},
		},
	}
}

// runRefresh takes cfg by value so flag overrides stay local to the command.
func runRefresh(c *cli.Context, cfg config.Config) error {
	ctx := c.Context

	if dir := c.String("local-dir"); dir != "" {
		cfg.App.Source = "storage"
		cfg.Storage = config.StorageConfig{Provider: "local", LocalDir: dir}
	}
	cfg.Pipeline.ExportCSV = c.Bool("export")

	loader, err := app.NewSourceLoader(ctx, &cfg)
	if err != nil {
		return err
	}

	var stores *app.Stores
	if c.Bool("persist") {
		db, err := openDB(c, &cfg)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return err
		}
		stores = &app.Stores{
			DB:    db,
			Runs:  pipeline.NewRepository(db.DB),
			Facts: postgres.NewFactRepository(db),
		}
		defer stores.Close()
	}

	snap, run, err := app.NewRunner(&cfg, loader, stores).Run(ctx)
	if err != nil {
		return err
	}

	return printSummary(c.App.Writer, snap, run)
}

func printSummary(w io.Writer, snap *sales.Snapshot, run *pipeline.PipelineRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "source\t%s\t\n", run.Source)
	fmt.Fprintf(tw, "order rows\t%d\t\n", run.OrderRows)
	fmt.Fprintf(tw, "cancelled rows\t%d\t\n", run.CancelledRows)
	fmt.Fprintf(tw, "unmatched lines\t%d\t\n", run.UnmatchedLines)
	fmt.Fprintf(tw, "facts\t%d\t\n", run.Facts)
	if run.ExportPath != "" {
		fmt.Fprintf(tw, "export\t%s\t\n", run.ExportPath)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "year\tsales\tgross profit\tads\tfixed cost\tnet profit\t")
	for _, year := range report.Years(snap.Facts) {
		pnl := report.YearlyPnL(snap, year)
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			pnl.Year, pnl.Sales, pnl.GrossProfit, pnl.AdSpend, pnl.FixedCost, pnl.NetProfit)
	}
	return tw.Flush()
}
