package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"absences/internal/cache"
	"absences/internal/config"
	"absences/internal/journal"
	"absences/internal/queue"
	"absences/internal/store"
)

// Worker consumes submitted-justification events, invalidates the student's
// listing cache, and records the submission in the journal.
func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "absences:events")
	}

	listings := cache.New(redisClient.Client, cfg.CacheTTL, logger)
	journalRepo := journal.NewRepository(db.Client)

	messages, err := events.Consume(ctx)
	if err != nil {
		logger.Fatal("queue consume init failed", zap.Error(err))
	}

	logger.Info("worker started, waiting for events")
	for msg := range messages {
		if msg.Type != queue.TypeJustificationSubmitted {
			continue
		}

		evt, err := queue.DecodeSubmitted(msg)
		if err != nil {
			logger.Warn("event decode failed", zap.Error(err))
			continue
		}

		logger.Info("processing submission",
			zap.String("justification_code", evt.JustificationCode),
			zap.String("student", evt.StudentCode))

		if err := listings.InvalidateStudent(ctx, evt.StudentCode); err != nil {
			logger.Warn("cache invalidation failed",
				zap.String("student", evt.StudentCode),
				zap.Error(err))
		}

		if _, err := journalRepo.Insert(ctx, journal.Entry{
			JustificationCode: evt.JustificationCode,
			StudentCode:       evt.StudentCode,
			AbsenceCodes:      evt.AbsenceCodes,
			FileCount:         evt.FileCount,
			SubmittedAt:       evt.SubmittedAt,
		}); err != nil {
			logger.Warn("journal insert failed",
				zap.String("justification_code", evt.JustificationCode),
				zap.Error(err))
		}
	}

	logger.Info("worker stopped")
}

func newLogger(env string) *zap.Logger {
	if env == "production" || env == "prod" {
		logger, err := zap.NewProduction()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
