package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opratem/schoolems/internal/api"
	mongorepo "github.com/opratem/schoolems/internal/infrastructure/db/mongo"
	redisstore "github.com/opratem/schoolems/internal/infrastructure/db/redis"
	"github.com/opratem/schoolems/internal/infrastructure/mail"
	"github.com/opratem/schoolems/internal/infrastructure/queue"
	"github.com/opratem/schoolems/internal/pkg/config"
	"github.com/opratem/schoolems/pkg/logger"
)

// @title        HR Backend API
// @version      1.0
// @description  Workforce administration backend: employees, leave requests and role-based access.
// @host         localhost:8080
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting hr backend")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection")
	}
	defer rdb.Close()

	// Indexes and the role catalogue are idempotent; every boot converges
	// the database to the expected shape.
	bootstrapCtx, cancelBootstrap := context.WithTimeout(ctx, 30*time.Second)
	defer cancelBootstrap()
	if err := mongorepo.NewUserRepository(db).EnsureIndexes(bootstrapCtx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}
	if err := mongorepo.NewEmployeeRepository(db).EnsureIndexes(bootstrapCtx); err != nil {
		log.Fatal().Err(err).Msg("employee indexes")
	}
	if err := mongorepo.NewLeaveRepository(db).EnsureIndexes(bootstrapCtx); err != nil {
		log.Fatal().Err(err).Msg("leave indexes")
	}
	if err := mongorepo.EnsureRoles(bootstrapCtx, db); err != nil {
		log.Fatal().Err(err).Msg("role catalogue")
	}

	// Outbound mail: SMTP sink behind a sharded worker pool.
	mailCtx, stopMail := context.WithCancel(ctx)
	defer stopMail()
	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := queue.NewMailDispatcher(cfg.SMTP.Workers, mailer, logger.Component("mail"))
	dispatcher.Start(mailCtx)

	e := api.NewRouter(db, rdb, dispatcher, cfg, logger.Component("http"))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("hr backend stopped")
}
