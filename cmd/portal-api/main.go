package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	v1 "rwa-directory/project-portal/project-portal-backend/api/v1"
	"rwa-directory/project-portal/project-portal-backend/internal/auth"
	"rwa-directory/project-portal/project-portal-backend/internal/config"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
	"rwa-directory/project-portal/project-portal-backend/pkg/logger"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "portal-api",
		Usage: "RWA project portal: submissions, moderation and the public directory",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to a JSON config file",
			Value:   "config.json",
			EnvVars: []string{"PORTAL_CONFIG"},
		},
	}

	app.Commands = []*cli.Command{
		serveCmd,
		migrateCmd,
		grantAdminCmd,
		tokenCmd,
	}

	return app.Run(args)
}

// env bundles what every command needs.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.Logger
}

func setup(cctx *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(cctx.String("config"))
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.URL, database.Options{
		MaxConnections: cfg.Database.MaxConnections,
		MaxIdleConns:   cfg.Database.MaxIdleConns,
		MaxLifetime:    cfg.Database.MaxLifetime,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: log}, nil
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP API",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "auto-migrate",
			Usage:   "migrate the schema before serving",
			EnvVars: []string{"PORTAL_AUTO_MIGRATE"},
		},
	},
	Action: func(cctx *cli.Context) error {
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		if cctx.Bool("auto-migrate") {
			if err := v1.Migrate(e.db); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		portal, err := v1.Setup(ctx, e.cfg, e.db, e.logger)
		if err != nil {
			return err
		}
		defer portal.Close()

		gin.SetMode(gin.ReleaseMode)
		srv := &http.Server{
			Addr:         e.cfg.Server.GetServerAddr(),
			Handler:      portal.Router(),
			ReadTimeout:  e.cfg.Server.ReadTimeout,
			WriteTimeout: e.cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			e.logger.Info("Server started", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		e.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		e.logger.Info("Server exiting")
		return nil
	},
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "create or update the database schema",
	Action: func(cctx *cli.Context) error {
		e, err := setup(cctx)
		if err != nil {
			return err
		}
		if err := v1.Migrate(e.db); err != nil {
			return err
		}
		e.logger.Info("Database migrated")
		return nil
	},
}

var grantAdminCmd = &cli.Command{
	Name:      "grant-admin",
	Usage:     "give a user the admin role",
	ArgsUsage: "<user-id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "revoke",
			Usage: "remove the role instead",
		},
	},
	Action: func(cctx *cli.Context) error {
		userID, err := uuid.Parse(cctx.Args().First())
		if err != nil {
			return fmt.Errorf("a user id is required: %w", err)
		}
		e, err := setup(cctx)
		if err != nil {
			return err
		}

		role := auth.RoleAdmin
		if cctx.Bool("revoke") {
			role = ""
		}
		if err := auth.NewGormRoleStore(e.db).SetRole(cctx.Context, userID, role); err != nil {
			return err
		}
		e.logger.Info("Role updated", zap.String("user_id", userID.String()), zap.String("role", role))
		return nil
	},
}

var tokenCmd = &cli.Command{
	Name:      "token",
	Usage:     "sign a session token for local development (jwt resolver only)",
	ArgsUsage: "<user-id> <email>",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "ttl",
			Value: 24 * time.Hour,
		},
	},
	Action: func(cctx *cli.Context) error {
		userID, err := uuid.Parse(cctx.Args().Get(0))
		if err != nil {
			return fmt.Errorf("a user id is required: %w", err)
		}
		cfg, err := config.LoadConfig(cctx.String("config"))
		if err != nil {
			return err
		}
		if cfg.Auth.Resolver != "jwt" {
			return fmt.Errorf("tokens can only be issued for the jwt resolver")
		}

		token, err := auth.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).
			Issue(userID, cctx.Args().Get(1), cctx.Duration("ttl"))
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}
