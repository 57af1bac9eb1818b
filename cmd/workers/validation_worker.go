package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	v1 "rwa-directory/project-portal/project-portal-backend/api/v1"
	"rwa-directory/project-portal/project-portal-backend/internal/config"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/internal/validation"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
	"rwa-directory/project-portal/project-portal-backend/pkg/logger"
)

func main() {
	app := cli.App{
		Name:  "validation-worker",
		Usage: "re-run third-party checks for pending projects with missing or stale verdicts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.json",
				EnvVars: []string{"PORTAL_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "run a single sweep and exit",
			},
		},
		Action: runWorker,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runWorker(cctx *cli.Context) error {
	cfg, err := config.LoadConfig(cctx.String("config"))
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(cfg.Database.URL, database.Options{
		MaxConnections: cfg.Database.MaxConnections,
		MaxIdleConns:   cfg.Database.MaxIdleConns,
		MaxLifetime:    cfg.Database.MaxLifetime,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	log.Info("Connected to database")

	service := validation.NewService(
		validation.NewGormRepository(db),
		projects.NewGormRepository(db),
		validation.NewRunner(log, v1.Checkers(cfg.Validation, log)...),
		log,
	)
	scheduler := validation.NewScheduler(service, validation.SchedulerConfig{
		Schedule: cfg.Worker.Schedule,
		MaxAge:   cfg.Worker.MaxAge,
		Batch:    cfg.Worker.Batch,
	}, log)

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cctx.Bool("once") {
		n := scheduler.RunOnce(ctx)
		log.Info("Validation worker finished", zap.Int("checked", n))
		return nil
	}

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	log.Info("Validation worker started")

	<-ctx.Done()
	log.Info("Shutdown signal received")
	scheduler.Stop()
	log.Info("Validation worker stopped")
	return nil
}
