package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	cli "github.com/spf13/pflag"

	"calmmate/config"
	"calmmate/internal/application"
	"calmmate/internal/infra/elevenlabs"
	"calmmate/internal/infra/groq"
	"calmmate/internal/infra/httpapi"
	"calmmate/internal/infra/huggingface"
	"calmmate/internal/infra/media"
	"calmmate/internal/infra/storage"
)

func main() {
	configPath := cli.StringP("config", "c", "config.yaml", "path to config file")
	envFile := cli.StringP("env", "e", ".env", "env file path")
	cli.Parse()

	godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	uploads, err := storage.NewStore(cfg.Storage.UploadDir, "webm")
	if err != nil {
		logger.Error("creating upload store", "error", err)
		os.Exit(1)
	}
	replies, err := storage.NewStore(cfg.Storage.ReplyDir, "mp3")
	if err != nil {
		logger.Error("creating reply store", "error", err)
		os.Exit(1)
	}

	retention := parseDurationOr(cfg.Storage.Retention, 24*time.Hour, logger)
	sweeper := storage.NewSweeper(retention, logger)

	logger.Info("running startup retention sweep", "retention", retention)
	sweeper.SweepAll(uploads, replies)

	if interval := parseDurationOr(cfg.Storage.SweepInterval, 0, logger); interval > 0 {
		sweeper.StartPeriodic(ctx, interval, uploads, replies)
	}

	prober := media.NewProber(cfg.Media.FFprobePath, parseDurationOr(cfg.Media.ProbeTimeout, 10*time.Second, logger))
	transcoder := media.NewTranscoder(cfg.Media.FFmpegPath, parseDurationOr(cfg.Media.TranscodeTimeout, 30*time.Second, logger))

	whisper := groq.NewWhisperClient(cfg.Groq.APIKey, cfg.Groq.WhisperModel)
	chat := groq.NewChatClient(cfg.Groq.APIKey, cfg.Groq.ChatModel)
	classifier := huggingface.NewClassifier(cfg.HuggingFace.APIKey, cfg.HuggingFace.Model)
	tts := elevenlabs.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, cfg.ElevenLabs.Model)

	normalizer := application.NewNormalizer(prober, transcoder, cfg.Media.MinDuration, logger)
	transcriber := application.NewTranscriber(whisper, normalizer, logger)
	emotions := application.NewEmotionAnalyzer(classifier, logger)
	composer := application.NewReplyComposer(chat)
	therapist := application.NewTherapist(uploads, normalizer, transcriber, emotions, composer, logger)
	voice := application.NewVoiceReplies(tts, replies, logger)

	server := httpapi.NewServer(
		cfg.Server.Addr,
		uploads,
		therapist,
		voice,
		replies.Dir(),
		cfg.Server.CORSOrigins,
		logger,
	)

	logger.Info("starting calmmate backend", "addr", cfg.Server.Addr)

	if err := server.Start(ctx); err != nil {
		logger.Error("starting server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		logger.Error("stopping server", "error", err)
		os.Exit(1)
	}
}

func parseDurationOr(value string, fallback time.Duration, logger *slog.Logger) time.Duration {
	if value == "" || value == "0" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("invalid duration, using default", "value", value, "default", fallback)
		return fallback
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
