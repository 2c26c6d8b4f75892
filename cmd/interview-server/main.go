package main

import (
	"context"
	"net/http"
	"time"

	"hirewire/internal/app/session"
	"hirewire/internal/app/sweep"
	"hirewire/internal/config"
	"hirewire/internal/directory"
	"hirewire/internal/ledger"
	"hirewire/internal/logging"
	"hirewire/internal/rooms"
	"hirewire/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	seedAccount(st, cfg.Server.SeedCompanyID, cfg.Server.SeedCompanyCredits)

	led := ledger.New(st)
	roomClient := newRoomClient(cfg.Server)
	dirClient := newDirectoryClient(cfg.Server)

	sessions := session.NewService(st, led, roomClient, dirClient, session.Config{
		MaxDeductPerCall:     cfg.Billing.MaxDeductPerCall,
		AutoEndBufferMinutes: cfg.Billing.AutoEndBufferMinutes,
		RequiredParticipants: cfg.Billing.RequiredParticipants,
		MaxParticipants:      cfg.Billing.MaxParticipants,
	})
	sweeper := sweep.NewService(st, roomClient, dirClient, sweep.Config{
		AbandonedThresholdMinutes: cfg.Billing.AbandonedThresholdMinutes,
		AutoEndBufferMinutes:      cfg.Billing.AutoEndBufferMinutes,
		MissedWindowGraceMinutes:  cfg.Billing.MissedWindowGraceMinutes,
	})

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Billing.SweepCron, func() {
		sweeper.RunAll(context.Background())
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Billing.SweepCron).Msg("sweep schedule invalid")
	}
	sched.Start()
	defer sched.Stop()

	r := newRouter(st, led, sessions, sweeper, cfg.Server)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func seedAccount(st *store.Store, companyID string, credits int64) {
	if companyID == "" {
		return
	}
	if err := st.EnsureAccount(context.Background(), companyID, credits); err != nil {
		log.Fatal().Err(err).Str("company_id", companyID).Msg("seed account failed")
	}
	log.Info().Str("company_id", companyID).Int64("credits", credits).Msg("seed account ensured")
}

func newRoomClient(cfg config.ServerConfig) rooms.Deleter {
	if cfg.RoomServiceBaseURL == "" {
		log.Warn().Msg("no room service configured, teardown is a no-op")
		return rooms.NopDeleter{}
	}
	return rooms.NewHTTPClient(cfg.RoomServiceBaseURL, cfg.RoomServiceAPIKey, 5*time.Second)
}

func newDirectoryClient(cfg config.ServerConfig) directory.Client {
	if cfg.DirectoryBaseURL == "" {
		log.Warn().Msg("no directory service configured, candidate sync is a no-op")
		return directory.NopClient{}
	}
	return directory.NewHTTPClient(cfg.DirectoryBaseURL, 3*time.Second)
}
