package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/assistant"
	"github.com/spigell/resume-matcher/internal/assistant/gemini"
	"github.com/spigell/resume-matcher/internal/catalog"
	"github.com/spigell/resume-matcher/internal/evaluator"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/render"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/session"
)

// env is what every command works with.
type env struct {
	logger  *zap.Logger
	config  *Config
	client  *evaluator.Client
	loader  *catalog.Loader
	session *session.Session
	out     *render.Terminal
}

// newEnv builds the logger, config, API client and session. Any failure is fatal.
func newEnv(ctx context.Context) *env {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	lg.Debug("starting the resume-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	lg.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := secrets.Optional(apiTokenSource(config.API))
	if err != nil {
		lg.Fatal(
			"loading api token",
			zap.Error(err),
			zap.String("hint", "set RESUME_MATCHER_TOKEN_FILE or RESUME_MATCHER_TOKEN environment variable or the 'api.token-file' key in the configuration file"),
		)
	}

	apiLogger := logger.WithAPI(lg, config.API.URL)

	client := evaluator.New(apiLogger, evaluator.Options{
		APIURL:    config.API.URL,
		Token:     token,
		UserAgent: config.API.UserAgent,
		Timeout:   config.API.Timeout,
		RateLimit: config.API.RateLimit,
	})

	loader := catalog.NewLoader(client, catalog.NewCache(), config.Templates.Placeholder, apiLogger)

	opts := session.Options{
		MaxUploadBytes: config.Upload.MaxBytes,
		TargetScore:    config.Results.TargetScore,
	}

	if config.Assistant.Enabled {
		answerer, err := newAssistant(ctx, config.Assistant, lg)
		if err != nil {
			lg.Warn("skipping local assistant", zap.Error(err))
		} else {
			opts.Assistant = answerer
		}
	}

	return &env{
		logger:  lg,
		config:  config,
		client:  client,
		loader:  loader,
		session: session.New(client, loader, apiLogger, opts),
		out:     render.New(os.Stdout, 0, color.NoColor),
	}
}

func newAssistant(ctx context.Context, cfg *AssistantConfig, lg *zap.Logger) (assistant.Answerer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported assistant provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(geminiKeySource(cfg.Gemini))
	if err != nil {
		return nil, fmt.Errorf("%w (set assistant.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	assistantLogger := lg.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewAssistant(generator, assistantLogger, cfg.Gemini.MaxLogLength), nil
}

func apiTokenSource(cfg *APIConfig) secrets.Source {
	return secrets.Source{
		Name: "api token",
		File: cfg.TokenFile,
		Env:  "RESUME_MATCHER_TOKEN",
	}
}

func geminiKeySource(cfg *GeminiConfig) secrets.Source {
	return secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	}
}
