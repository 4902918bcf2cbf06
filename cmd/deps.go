package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/ai/gemini"
	"github.com/spigell/jobfit/internal/ai/openrouter"
	"github.com/spigell/jobfit/internal/cache"
	"github.com/spigell/jobfit/internal/events"
	"github.com/spigell/jobfit/internal/interview"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/secrets"
	"github.com/spigell/jobfit/internal/setup"
	"github.com/spigell/jobfit/internal/store"
	"go.uber.org/zap"
)

// deps holds everything a command needs. Commands build it once and close it on exit.
type deps struct {
	config  *Config
	logger  *zap.Logger
	store   store.Gateway
	plans   *cache.Plans
	closers []func() error
}

// newDeps builds the logger, reads the config and opens the storage.
// Interactive commands pass "stderr" so logs stay out of the prompts.
func newDeps(ctx context.Context, logOutputs ...string) *deps {
	l, err := logger.New(logger.Options{
		JSON:    viper.GetBool("json"),
		Debug:   viper.GetBool("debug"),
		App:     app,
		Outputs: logOutputs,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Debug("starting", zap.String("version", version), zap.String("database_driver", config.Database.Driver))

	gateway, err := store.Open(ctx, config.Database, l)
	if err != nil {
		l.Fatal("opening storage", zap.Error(err), zap.String("hint", "check the database section or set database.driver to memory"))
	}

	c, err := cache.New(ctx, config.Redis)
	if err != nil {
		l.Warn("plan cache disabled", zap.Error(err))
		c = cache.Dummy{}
	}

	d := &deps{
		config:  config,
		logger:  l,
		store:   gateway,
		plans:   cache.NewPlans(gateway, c, config.Redis.TTL, l),
		closers: []func() error{gateway.Close},
	}
	if rc, ok := c.(*cache.RedisCache); ok {
		d.closers = append(d.closers, rc.Close)
	}
	return d
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.logger.Debug("closing resource", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

// completer builds the configured language model client.
func (d *deps) completer(ctx context.Context) (ai.Completer, error) {
	return newCompleter(ctx, d.config.LLM, d.logger)
}

func (d *deps) planner(llm ai.Completer) *interview.Planner {
	return interview.NewPlanner(llm, d.plans, d.logger, d.config.LLM.MaxLogLength)
}

func (d *deps) setupService(llm ai.Completer) *setup.Service {
	return setup.New(d.store, d.planner(llm), d.plans, d.logger)
}

// notifier connects to the broker when events are enabled. A broker that
// cannot be reached only disables the events.
func (d *deps) notifier() interview.Notifier {
	n, closeFn, err := events.New(d.config.Events, d.logger)
	if err != nil {
		d.logger.Warn("evaluation events disabled", zap.Error(err))
		return events.Nop{}
	}
	d.closers = append(d.closers, closeFn)
	return n
}

func newCompleter(ctx context.Context, cfg *LLMConfig, l *zap.Logger) (ai.Completer, error) {
	retry := ai.RetryPolicy{Attempts: cfg.MaxRetries, Step: cfg.RetryStep}
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", openrouter.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openrouter api key",
			File:  cfg.OpenRouter.APIKeyFile,
			Value: cfg.APIKey,
			Env:   []string{"OPENROUTER_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set llm.openrouter.api-key-file or OPENROUTER_API_KEY)", err)
		}

		model := cfg.OpenRouter.Model
		if model == "" {
			model = openrouter.DefaultModel
		}

		return openrouter.New(apiKey, openrouter.Options{
			BaseURL:      cfg.OpenRouter.BaseURL,
			Model:        model,
			Referer:      cfg.OpenRouter.Referer,
			Title:        app,
			Retry:        retry,
			MaxLogLength: cfg.MaxLogLength,
		}, l)
	case gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.APIKey,
			Env:   []string{"GEMINI_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set llm.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		return gemini.NewGenerator(ctx, apiKey, gemini.Options{
			Model:        cfg.Gemini.Model,
			Retry:        retry,
			MaxLogLength: cfg.MaxLogLength,
		}, l)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
