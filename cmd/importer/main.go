// cmd/importer/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/stylefeed/inventory-importer/internal/acquire"
	"github.com/stylefeed/inventory-importer/internal/cache"
	"github.com/stylefeed/inventory-importer/internal/cleaning"
	"github.com/stylefeed/inventory-importer/internal/config"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
	"github.com/stylefeed/inventory-importer/internal/importer"
	"github.com/stylefeed/inventory-importer/internal/repository/postgres"
	"github.com/stylefeed/inventory-importer/internal/scheduler"
	"github.com/stylefeed/inventory-importer/internal/storage"
	"github.com/stylefeed/inventory-importer/internal/validation"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

func newSourceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "source",
		Usage:    "Source id to import",
		Required: true,
	}
}

// buildService wires the full import stack from the environment config.
func buildService(cfg *config.Config) (*acquire.Service, *postgres.DB, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(context.Background()); err != nil {
		return nil, nil, err
	}

	sources := postgres.NewSourceRepo(db)
	inventory := postgres.NewInventoryRepo(db)
	colorMaps := postgres.NewColorMapRepo(db)
	staged := postgres.NewStagedRepo(db)

	prices, err := cache.NewPriceCache(cfg.Cache, inventory)
	if err != nil {
		return nil, nil, err
	}
	colors, err := cache.NewColorMapCache(cfg.Cache, colorMaps)
	if err != nil {
		return nil, nil, err
	}

	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		archive, err = storage.NewMinioClient(cfg.Archive)
		if err != nil {
			return nil, nil, err
		}
	}

	var advisor cleaning.ColorAdvisor
	if cfg.Advisor.Enabled {
		advisor = cleaning.NewOpenAIAdvisor(cfg.Advisor)
	}

	pipeline := &importer.Pipeline{
		Sources:   sources,
		Inventory: inventory,
		Registry:  postgres.NewRegistryRepo(db),
		Stats:     postgres.NewStatsRepo(db),
		Runs:      postgres.NewRunRepo(db),
		Staged:    staged,
		ColorMaps: colorMaps,
		Colors:    colors,
		Prices:    prices,
		Cleaner:   cleaning.NewCleaner(advisor),
		Archive:   archive,
		Alerts:    importer.NewLogAlertSink(),
		State:     importer.NewCoordinator(),
	}

	urlFetcher := acquire.NewURLFetcher()
	return &acquire.Service{
		Pipeline: pipeline,
		Staged:   staged,
		URL:      urlFetcher,
		Email:    acquire.NewEmailFetcher(urlFetcher, nil),
	}, db, nil
}

func printResult(result *domain.ImportResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runImport(c *cli.Context) error {
	cfg := config.Load()
	service, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sourceID := c.String("source")
	paths := c.StringSlice("file")

	var result *domain.ImportResult
	if len(paths) > 0 {
		files := make([]domain.FeedFile, 0, len(paths))
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("could not read %s: %w", path, err)
			}
			files = append(files, domain.FeedFile{Name: filepath.Base(path), Data: data})
		}
		result, err = service.ImportManual(c.Context, sourceID, files)
	} else {
		source, getErr := service.Pipeline.Sources.GetByID(c.Context, sourceID)
		if getErr != nil {
			return getErr
		}
		switch source.Kind {
		case domain.SourceKindURL:
			result, err = service.ImportURL(c.Context, sourceID)
		case domain.SourceKindEmail:
			result, err = service.ImportEmail(c.Context, sourceID)
		default:
			return fmt.Errorf("source %s is manual, pass --file", sourceID)
		}
	}
	if err != nil {
		return err
	}
	return printResult(result)
}

func runCombine(c *cli.Context) error {
	cfg := config.Load()
	service, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := service.Combine(c.Context, c.String("source"))
	if err != nil {
		return err
	}
	return printResult(result)
}

// runValidate is the dry run: read, structural checks, detect and parse, no
// write. Exits nonzero when a guard trips or nothing parses.
func runValidate(c *cli.Context) error {
	cfg := config.Load()
	service, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	source, err := service.Pipeline.Sources.GetByID(c.Context, c.String("source"))
	if err != nil {
		return err
	}

	paths := c.StringSlice("file")
	if len(paths) == 0 {
		return fmt.Errorf("pass at least one --file to validate")
	}

	var grid [][]string
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", path, err)
		}
		g, err := formats.ReadGrid(filepath.Base(path), data)
		if err != nil {
			return err
		}
		if i == 0 || len(g) == 0 {
			grid = append(grid, g...)
		} else {
			grid = append(grid, g[1:]...)
		}
	}

	report := &domain.ValidationReport{}
	if err := validation.CheckStructure(source, grid, 0, len(paths) > 1, report); err != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
		return err
	}

	format := formats.Detect(source.Name, filepath.Base(paths[0]), grid)
	variants, err := formats.Parse(format, grid, formats.ParseConfig{Source: source, Filename: filepath.Base(paths[0])})
	if err != nil {
		return err
	}
	if format == "" {
		format = formats.FormatRow
	}

	fmt.Printf("format: %s\nrows: %d\nvariants: %d\n", format, len(grid), len(variants))
	if len(report.Checks) > 0 {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}
	return nil
}

func runSources(c *cli.Context) error {
	cfg := config.Load()
	service, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := service.Pipeline.Sources.List(c.Context)
	if err != nil {
		return err
	}
	for _, s := range sources {
		lastSync := "never"
		if s.LastSyncAt != nil {
			lastSync = s.LastSyncAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s\t%s\t%s/%s\tlast sync: %s\n", s.ID, s.Name, s.Kind, s.Role, lastSync)
	}
	return nil
}

func runScheduler(c *cli.Context) error {
	cfg := config.Load()
	service, db, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sched, err := scheduler.New(cfg.Scheduler, service, service.Pipeline.Sources)
	if err != nil {
		return err
	}
	if err := sched.Start(c.Context); err != nil {
		return err
	}
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Scheduler exiting")
	return nil
}

func main() {
	app := &cli.App{
		Name:  "importer",
		Usage: "Run feed imports from the command line",
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			logger.SetLevel(cfg.App.LogLevel)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Import a source now, from local files or its configured channel",
				Flags: []cli.Flag{
					newSourceFlag(),
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "Local feed file(s) to import instead of fetching",
					},
				},
				Action: runImport,
			},
			{
				Name:   "combine",
				Usage:  "Combine and import everything staged for a source",
				Flags:  []cli.Flag{newSourceFlag()},
				Action: runCombine,
			},
			{
				Name:  "validate",
				Usage: "Parse and validate feed files without writing anything",
				Flags: []cli.Flag{
					newSourceFlag(),
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "Local feed file(s) to check",
					},
				},
				Action: runValidate,
			},
			{
				Name:   "sources",
				Usage:  "List configured sources",
				Action: runSources,
			},
			{
				Name:   "schedule",
				Usage:  "Run the import scheduler in the foreground",
				Action: runScheduler,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
