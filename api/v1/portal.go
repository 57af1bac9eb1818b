package v1

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rwa-directory/project-portal/project-portal-backend/internal/auth"
	"rwa-directory/project-portal/project-portal-backend/internal/catalog"
	"rwa-directory/project-portal/project-portal-backend/internal/config"
	"rwa-directory/project-portal/project-portal-backend/internal/directory"
	"rwa-directory/project-portal/project-portal-backend/internal/documents"
	"rwa-directory/project-portal/project-portal-backend/internal/moderation"
	"rwa-directory/project-portal/project-portal-backend/internal/notifications"
	"rwa-directory/project-portal/project-portal-backend/internal/notifications/websocket"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
	"rwa-directory/project-portal/project-portal-backend/internal/reports"
	"rwa-directory/project-portal/project-portal-backend/internal/validation"
	"rwa-directory/project-portal/project-portal-backend/pkg/database"
	"rwa-directory/project-portal/project-portal-backend/pkg/storage"
)

// Portal holds every wired service of the API.
type Portal struct {
	DB     *gorm.DB
	Logger *zap.Logger

	Gateway    *auth.Gateway
	Roles      *auth.GormRoleStore
	Projects   *projects.GormRepository
	Catalog    *catalog.Service
	Submission *projects.Service
	Directory  *directory.Service
	Moderation *moderation.Service
	Validation *validation.Service
	Documents  *documents.Service
	Reports    *reports.Service
	Dispatcher *notifications.Dispatcher
	LiveFeed   *websocket.Manager

	allowedOrigins []string
	closers        []func() error
}

// Migrate creates every table the portal owns.
func Migrate(db *gorm.DB) error {
	err := database.Migrate(db,
		&projects.Project{},
		&validation.Result{},
		&auth.UserRole{},
		&notifications.DeliveryLog{},
	)
	if err != nil {
		return err
	}
	return catalog.Migrate(db)
}

// Setup builds the portal from configuration. Optional integrations (redis,
// kafka, SES, S3, validation providers) are only wired when configured.
func Setup(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*Portal, error) {
	p := &Portal{DB: db, Logger: logger, allowedOrigins: cfg.Server.AllowedOrigins}

	resolver, err := newResolver(cfg.Auth)
	if err != nil {
		return nil, err
	}
	p.Roles = auth.NewGormRoleStore(db)
	p.Gateway = auth.NewGateway(resolver, p.Roles)

	var cache catalog.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		p.closers = append(p.closers, client.Close)
		cache = catalog.NewRedisCache(client, cfg.Redis.TTL)
	}
	p.Catalog = catalog.NewService(catalog.NewGormRepository(db), cache, logger)

	var awsCfg *aws.Config
	if cfg.AWS.Bucket != "" || cfg.AWS.EmailSender != "" {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	p.LiveFeed = websocket.NewManager(logger, cfg.Server.AllowedOrigins)
	p.closers = append(p.closers, func() error { p.LiveFeed.Close(); return nil })

	channels := []notifications.Channel{p.LiveFeed}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaChannel := notifications.NewKafkaChannel(notifications.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			RetryBackoff: cfg.Kafka.Backoff,
		})
		p.closers = append(p.closers, kafkaChannel.Close)
		channels = append(channels, kafkaChannel)
	}
	if awsCfg != nil && cfg.AWS.EmailSender != "" {
		channels = append(channels, notifications.NewEmailChannel(*awsCfg, cfg.AWS.EmailSender))
	}
	p.Dispatcher = notifications.NewDispatcher(db, logger, channels...)

	p.Projects = projects.NewGormRepository(db)
	p.Submission = projects.NewService(p.Projects, p.Catalog, logger)
	p.Directory = directory.NewService(p.Projects, logger)
	p.Moderation = moderation.NewService(p.Projects, p.Dispatcher, logger)
	p.Reports = reports.NewService(p.Projects, logger)

	p.Validation = validation.NewService(
		validation.NewGormRepository(db),
		p.Projects,
		validation.NewRunner(logger, Checkers(cfg.Validation, logger)...),
		logger,
	)

	if awsCfg != nil && cfg.AWS.Bucket != "" {
		p.Documents = documents.NewService(p.Projects, storage.NewS3Client(*awsCfg, cfg.AWS.Bucket), cfg.AWS.LinkTTL, logger)
	}

	return p, nil
}

// Checkers builds an HTTP checker for every configured provider.
func Checkers(cfg config.ValidationConfig, logger *zap.Logger) []validation.Checker {
	client := validation.NewProviderClient(logger, cfg.RetryMax, cfg.Timeout)
	var checkers []validation.Checker
	for name, url := range map[validation.CheckName]string{
		validation.CheckScam:      cfg.ScamURL,
		validation.CheckSanctions: cfg.SanctionsURL,
		validation.CheckAudit:     cfg.AuditURL,
	} {
		if url == "" {
			logger.Warn("Validation provider not configured, check skipped", zap.String("check", string(name)))
			continue
		}
		checkers = append(checkers, validation.NewHTTPChecker(name, url, cfg.APIKey, client))
	}
	return checkers
}

func newResolver(cfg config.AuthConfig) (auth.SessionResolver, error) {
	switch cfg.Resolver {
	case "supabase":
		return auth.NewSupabaseResolver(cfg.SupabaseURL, cfg.SupabaseKey)
	case "jwt", "":
		return auth.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer), nil
	}
	return nil, fmt.Errorf("unknown auth resolver %q", cfg.Resolver)
}

// Close releases external clients in reverse order of creation.
func (p *Portal) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			p.Logger.Warn("Failed to close client", zap.Error(err))
		}
	}
}
