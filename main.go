package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"storebot/internal/catalog"
	"storebot/internal/config"
	"storebot/internal/llm"
	"storebot/internal/logger"
	"storebot/internal/resolve"
	"storebot/internal/router"
	"storebot/internal/session"
	"storebot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storebot:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	configPath := os.Getenv("STOREBOT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		return err
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the catalog must load before any traffic is accepted
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	log.Info().Int("stores", cat.Len()).Str("path", cfg.Catalog.Path).Msg("catalog loaded")

	history, err := buildHistory(ctx, cfg, secrets)
	if err != nil {
		return err
	}

	chatClient, err := llm.NewChatClient(ctx, llm.Config{
		Model:        cfg.LLM.Model,
		APIKey:       secrets.OpenAIAPIKey,
		BaseURL:      cfg.LLM.BaseURL,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		SystemPrompt: cfg.LLM.SystemPrompt,
	})
	if err != nil {
		return err
	}

	resolver := resolve.New(cat, resolve.Config{
		Threshold:  cfg.Resolver.FuzzyThreshold,
		MinMatches: cfg.Resolver.MinMatches,
	})

	r := router.New(resolver, history, chatClient, log, router.Config{
		LookupKeywords: cfg.Router.LookupKeywords,
		MaxResults:     cfg.Router.MaxResults,
	})

	client := telegram.NewClient(
		cfg.Telegram.APIBase+"/bot"+secrets.TelegramBotToken,
		time.Duration(cfg.Telegram.RequestTimeoutSecs)*time.Second,
	)
	bot := telegram.NewBot(client, r, cfg.Telegram.PollTimeoutSeconds, log)

	log.Info().Str("session_backend", cfg.Session.Backend).Msg("bot started")
	if err := bot.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	log.Info().Msg("bot stopped")
	return nil
}

func buildHistory(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (session.History, error) {
	switch cfg.Session.Backend {
	case "redis":
		if secrets.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when session.backend=redis")
		}
		return session.NewRedisHistory(
			ctx,
			secrets.RedisURL,
			cfg.Session.TTL(),
			cfg.Session.MaxMessages,
		)
	case "memory":
		return session.NewManager(cfg.Session.MaxMessages), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
