// Command moustass-server starts the encrypted records HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mbaudry/moustass-web/internal/config"
	"github.com/mbaudry/moustass-web/internal/denylist"
	"github.com/mbaudry/moustass-web/internal/limiter"
	"github.com/mbaudry/moustass-web/internal/mail"
	"github.com/mbaudry/moustass-web/internal/migrate"
	"github.com/mbaudry/moustass-web/internal/repository/postgres"
	"github.com/mbaudry/moustass-web/internal/server/httpapi"
	"github.com/mbaudry/moustass-web/internal/service"
	"github.com/mbaudry/moustass-web/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("config", zap.Error(err))
	}

	logger, _ := zap.NewProduction()
	if cfg.Server.DevMode {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.ListenAddr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	audioRepo := postgres.NewAudioRepo(db)
	financialRepo := postgres.NewFinancialRepo(db)
	logRepo := postgres.NewAccessLogRepo(db)

	lim := limiter.New(db.Pool, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.BlockFor)

	var mailer mail.Sender = mail.Noop{Logger: logger}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	}

	var revoked denylist.Denylist = denylist.Noop{}
	if cfg.Redis.Addr != "" {
		rd := denylist.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rd.Ping(ctx); err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}
		revoked = rd
		logger.Info("token denylist enabled", zap.String("addr", cfg.Redis.Addr))
	}

	tokens := token.NewManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	// Services
	authSvc := service.NewAuthService(userRepo, logRepo, tokens, lim, revoked, mailer)
	userSvc := service.NewUserService(userRepo, logRepo)
	audioSvc := service.NewAudioService(audioRepo, cfg.Crypto.Key())
	financialSvc := service.NewFinancialService(financialRepo, cfg.Crypto.Key())
	logSvc := service.NewAccessLogService(logRepo, cfg.Logs.RetentionDays)

	api := httpapi.New(httpapi.Deps{
		Auth:      authSvc,
		Users:     userSvc,
		Audio:     audioSvc,
		Financial: financialSvc,
		Logs:      logSvc,
		Tokens:    tokens,
		UserRepo:  userRepo,
		Revoked:   revoked,
		Log:       logger,
		DevMode:   cfg.Server.DevMode,
	})

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Periodic access log pruning
	go func() {
		ticker := time.NewTicker(cfg.Logs.PruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := logSvc.Prune(ctx)
				if err != nil {
					logger.Error("access log prune", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("access logs pruned", zap.Int64("removed", n))
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("stopped")
}
