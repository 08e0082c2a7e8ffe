package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/tengise174/poll-bot-button/internal/adapters/event"
	"github.com/tengise174/poll-bot-button/internal/adapters/handler/discord"
	"github.com/tengise174/poll-bot-button/internal/adapters/handler/http"
	"github.com/tengise174/poll-bot-button/internal/adapters/pubsub"
	"github.com/tengise174/poll-bot-button/internal/adapters/repository/memory"
	"github.com/tengise174/poll-bot-button/internal/config"
	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/core/services"
	"github.com/tengise174/poll-bot-button/internal/metrics"
	jwtpkg "github.com/tengise174/poll-bot-button/internal/platform/jwt"
	"github.com/tengise174/poll-bot-button/internal/worker"
)

const voteEventBuffer = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workers outlive the signal so events queued during shutdown still go out.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	store := memory.NewPollRepository()
	hub := pubsub.NewHub(logger, m)
	events := make(chan domain.VoteEvent, voteEventBuffer)

	pollService := services.NewPollService(store, m)
	voteService := services.NewVoteService(store, m, events, hub)

	var publisher ports.VotePublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing vote events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		publisher = event.NewLogPublisher(logger)
	}

	runWorker(&wg, func() { hub.Run(workerCtx) })
	runWorker(&wg, func() { worker.NewEventWorker(events, publisher, logger).Run(workerCtx) })
	if cfg.PollTTL > 0 {
		janitor := worker.NewJanitor(pollService, cfg.PollTTL, cfg.SweepInterval, logger)
		runWorker(&wg, func() { janitor.Run(workerCtx) })
	}

	var server *stdhttp.Server
	if cfg.HTTPAddr != "" {
		router := http.NewHandler(
			http.NewPollHandler(pollService),
			http.NewVoteHandler(voteService),
			http.NewResultsHandler(pollService, hub, nil, logger),
			http.RouterConfig{
				JWT:       jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer),
				Metrics:   m,
				Gatherer:  reg,
				Logger:    logger,
				VoteLimit: rate.Limit(float64(cfg.VoteRatePerMinute) / 60),
				VoteBurst: cfg.VoteBurst,
			},
		)
		server = &stdhttp.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
				stop()
			}
		}()
	} else {
		logger.Warn("HTTP_ADDR is off, http host disabled")
	}

	var session *discordgo.Session
	if cfg.BotToken != "" {
		bot := discord.NewBot(pollService, voteService, cfg.GuildID, logger)
		if session, err = bot.Open(cfg.BotToken); err != nil {
			logger.Error("failed to connect to discord", "error", err)
			stop()
		}
	} else {
		logger.Warn("BOT_TOKEN not set, discord gateway disabled")
	}

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if session != nil {
		if err := session.Close(); err != nil {
			logger.Error("failed to close discord session", "error", err)
		}
	}

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}

	stopWorkers()
	wg.Wait()

	if err := publisher.Close(); err != nil {
		logger.Error("failed to close publisher", "error", err)
	}
	if n, err := pollService.Clear(shutdownCtx); err != nil {
		logger.Error("failed to clear poll store", "error", err)
	} else {
		logger.Info("poll store cleared", "polls", n)
	}
	logger.Info("shutdown complete")
}

func runWorker(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}
