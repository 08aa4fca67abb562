package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	discordrouter "github.com/jose-valero/marin-bot/internal/adapters/discord"
	"github.com/jose-valero/marin-bot/internal/adapters/errwebhook"
	"github.com/jose-valero/marin-bot/internal/adapters/httphealth"
	"github.com/jose-valero/marin-bot/internal/app/service"
	"github.com/jose-valero/marin-bot/internal/infra/config"
	"github.com/jose-valero/marin-bot/internal/infra/logx"
	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog().Fatal().Err(err).Msg("config")
	}

	log, logCloser, err := logx.New(logx.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		bootLog().Fatal().Err(err).Msg("logger")
	}
	defer logCloser.Close()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		return err
	}
	log.Info().Str("dialect", string(db.Dialect)).Msg("db ready and migrated")

	reminders := storage.NewReminderRepo(db)
	guilds := storage.NewGuildSettingsRepo(db)
	users := storage.NewUserSettingsRepo(db)

	msgs, err := service.LoadMessages(cfg.MessagesFile)
	if err != nil {
		return err
	}

	// Sink de errores
	var errs service.ErrorSink = errwebhook.NewLogSink(log)
	if cfg.ErrorWebhookURL != "" {
		hook := errwebhook.New(cfg.ErrorWebhookURL, log, errwebhook.WithRate(cfg.ErrorWebhookRPS))
		go hook.Run(ctx)
		errs = hook
	}

	// Discord session (antes de los servicios que mandan mensajes)
	s, err := discordgo.New(cfg.BotToken())
	if err != nil {
		return err
	}
	s.Identify.Intents = discordrouter.Intents
	s.State.MaxMessageCount = 50

	sender := discordrouter.NewSender(s)
	directory := discordrouter.NewDirectory(s)

	// Services
	delivery := service.NewDeliveryService(reminders, users, sender, sender, errs, msgs, log)
	scheduler := service.NewSchedulerService(reminders, delivery, errs, log, service.WithBaseContext(ctx))
	detector := service.NewDetectorService(scheduler, reminders, guilds, directory, sender, errs, msgs, cfg.UpstreamBotID, log)
	stamina := service.NewStaminaService(scheduler, reminders, msgs, log)
	settings := service.NewSettingsService(guilds, users)

	presence := discordrouter.NewPresence(s, log)

	r := discordrouter.NewRouter(s, discordrouter.Deps{
		Detector: detector,
		Stamina:  stamina,
		Settings: settings,
		Timers:   scheduler,
		DB:       db,
		Errors:   errs,
		Messages: msgs,
		IsOwner:  cfg.IsOwner,
	}, log)

	// Los timers se cargan en el primer READY; en reconexiones solo se refresca la presencia.
	var once sync.Once
	r.OnReady(func() {
		once.Do(func() {
			if err := scheduler.Initialize(ctx); err != nil {
				log.Error().Err(err).Msg("initialize timers")
			}
		})
		presence.Update()
	})
	r.Handlers()

	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()
	log.Info().Str("user", s.State.User.Username).Str("id", s.State.User.ID).Msg("connected")

	if err := r.Register(); err != nil {
		return err
	}
	log.Info().Int("commands", len(discordrouter.Commands)).Msg("commands registered")

	if err := presence.Start(cfg.PresenceSpec); err != nil {
		return err
	}
	defer presence.Stop()

	// Liveness
	web := httphealth.New(cfg.HTTPAddr, scheduler, log)
	go func() {
		if err := web.Start(); err != nil {
			log.Error().Err(err).Msg("http server")
		}
	}()

	// Esperar señal
	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = web.Shutdown(sctx)
	scheduler.Close()
	return nil
}

func bootLog() *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return &l
}
