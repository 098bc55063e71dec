package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	apphttp "finance-tracker/internal/http"
	"finance-tracker/internal/notify"
	"finance-tracker/internal/repository/sqlstore"
	"finance-tracker/internal/service"
	"finance-tracker/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		logger.Fatalf("database driver: %v", err)
	}
	db, err := sqlstore.Open(dialect, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	goose.SetLogger(logger)
	if err := sqlstore.Migrate(ctx, db, dialect); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}
	store := sqlstore.NewStore(db, dialect)

	archiver, err := buildArchiver(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL())
	mailer := notify.NewMailer(buildSender(cfg, logger), cfg.Mail.BaseURL)

	userService := service.NewUserService(store, mailer, issuer, service.UserConfig{
		VerificationTTL: cfg.VerificationTTL(),
		ResetTTL:        cfg.ResetTTL(),
	})
	accountService := service.NewAccountService(store, archiver)
	categoryService := service.NewCategoryService(store)
	transactionService := service.NewTransactionService(store)

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		accountService,
		categoryService,
		transactionService,
		issuer,
		logger,
		limiter,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s (%s)", cfg.Server.Addr, dialect)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildSender(cfg config.Config, logger *logrus.Logger) notify.Sender {
	if cfg.Mail.Provider == "sendgrid" {
		logger.Infof("sending mail through sendgrid as %s", cfg.Mail.From)
		return notify.NewSendGridSender(cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.FromName)
	}
	logger.Info("mail provider is log, emails are written to the log only")
	return notify.NewLogSender(logger)
}

// buildArchiver returns nil when no bucket is configured; deleted accounts are
// then removed without an archive.
func buildArchiver(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*service.Archiver, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not set, account archives disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving deleted accounts to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return service.NewArchiver(storage.NewS3Service(client, cfg.Storage.Bucket), cfg.Storage.KeyPrefix), nil
}
