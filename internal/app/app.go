// Package app wires configuration, the AI client stack, the stores, and the
// HTTP surface into a runnable service.
package app

import (
	"context"
	"log"
	"os"
	"time"

	"fridgechef/internal/chef"
	"fridgechef/internal/config"
	"fridgechef/internal/handler"
	"fridgechef/internal/imagestore"
	"fridgechef/internal/llm"
	"fridgechef/internal/server"
	"fridgechef/internal/session"
	"fridgechef/internal/sessionstore"
)

type App struct {
	cfg    *config.Config
	srv    *server.Server
	llmCli llm.Client
	snaps  *sessionstore.Store
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cli, err := buildLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	kitchen, err := chef.New(cli)
	if err != nil {
		cli.Close()
		return nil, err
	}

	snaps := sessionstore.NewFromEnv(cfg.SessionStorePath)
	images := buildImageStore(cfg)

	mgr := session.NewManager(kitchen, newSnapshotStore(snaps, images))
	h := handler.NewSessionHandler(mgr)
	srv := server.New(cfg.Port, server.NewMux(h))

	return &App{cfg: cfg, srv: srv, llmCli: cli, snaps: snaps}, nil
}

func (a *App) Start() error {
	log.Printf("listening on %s (env=%s, model=%s)", a.cfg.Port, a.cfg.Env, a.llmCli.Name())
	return a.srv.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.srv.Shutdown(ctx)
	if cerr := a.llmCli.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := a.snaps.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// buildLLMClient picks the backend and layers the shared middleware onto it.
// LLM_FAKE=1 or a missing API key selects the canned client, which keeps
// local development usable without credentials.
func buildLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	var base llm.Client
	if os.Getenv("LLM_FAKE") == "1" || cfg.Gemini.APIKey == "" {
		if cfg.Gemini.APIKey == "" {
			log.Printf("GEMINI_API_KEY not set, using fake LLM client")
		}
		base = llm.NewFakeClient()
	} else {
		cli, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		base = cli
	}
	return llm.Wrap(base,
		llm.WithLogging(log.Default()),
		llm.Retry(3, 500*time.Millisecond),
		llm.RateLimitFromEnv("LLM", "GEMINI"),
	), nil
}

func buildImageStore(cfg *config.Config) imagestore.Store {
	if !cfg.Image.Enabled {
		return nil
	}
	store, err := imagestore.NewS3Store(imagestore.S3Config{
		Endpoint:  cfg.Image.Endpoint,
		Region:    cfg.Image.Region,
		AccessKey: cfg.Image.AccessKey,
		SecretKey: cfg.Image.SecretKey,
		Bucket:    cfg.Image.Bucket,
		UseSSL:    cfg.Image.UseSSL,
	})
	if err != nil {
		log.Printf("image store disabled: %v", err)
		return nil
	}
	return store
}
