package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/odrlabs/ondemand-reservation/internal/config"
	"github.com/odrlabs/ondemand-reservation/internal/db"
	redisclient "github.com/odrlabs/ondemand-reservation/internal/redis"
	"github.com/odrlabs/ondemand-reservation/internal/reservation"
)

// slot-worker periodically expands every doctor's schedules into open
// appointment slots over the configured horizon. Generation is
// idempotent, so overlapping runs and restarts are harmless.
func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("component", "slot-worker").Logger()
	log.Info().Msg("slot-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Int("horizon_days", cfg.HorizonDays).
		Msg("running slot worker")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	repo := reservation.NewPgRepository(pgPool)
	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	metrics := reservation.NewMetrics("ondemand_reservation_worker")
	svc := reservation.NewService(repo, locker, nil, metrics, &log)

	// Run once at startup
	runOnce(rootCtx, svc, repo, cfg.HorizonDays, &log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping slot worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, repo, cfg.HorizonDays, &log)
		}
	}
}

func runOnce(ctx context.Context, svc *reservation.Service, repo reservation.Repository, horizonDays int, log *zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	start := time.Now()

	doctors, err := repo.ListDoctors(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("list doctors failed")
		return
	}

	totalCreated := 0
	for _, d := range doctors {
		result, err := svc.GenerateAppointments(runCtx, d.ID, horizonDays)
		if err != nil {
			// Another instance may hold the doctor's generation lock.
			if errors.Is(err, redisclient.ErrLockNotAcquired) {
				log.Debug().Str("doctor_id", d.ID.String()).Msg("generation lock held elsewhere, skipping")
				continue
			}
			log.Error().Str("doctor_id", d.ID.String()).Err(err).Msg("generation failed")
			continue
		}
		totalCreated += result.Created
	}

	log.Info().
		Int("doctors", len(doctors)).
		Int("created", totalCreated).
		Dur("elapsed", time.Since(start)).
		Msg("generation run complete")
}
