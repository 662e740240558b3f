package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/vellumworks/sheetglot/internal/config"
	"github.com/vellumworks/sheetglot/internal/observability"
	"github.com/vellumworks/sheetglot/pkg/blobstore"
	"github.com/vellumworks/sheetglot/pkg/blobstore/s3"
	"github.com/vellumworks/sheetglot/pkg/inference"
	"github.com/vellumworks/sheetglot/pkg/jobstore"
	"github.com/vellumworks/sheetglot/pkg/translate"
)

// buildBlobStore creates the artifact store named by the config.
func buildBlobStore(ctx context.Context, cfg config.StorageConfig) (blobstore.Store, error) {
	switch cfg.Provider {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3", "":
		return s3.New(ctx, s3.Config{
			Bucket:         cfg.Bucket,
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			Profile:        cfg.Profile,
			ForcePathStyle: cfg.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// buildJobStore creates the job record store named by the config.
func buildJobStore(ctx context.Context, cfg config.JobsConfig) (jobstore.Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return jobstore.NewMemoryStore(), nil
	case "redis":
		return jobstore.NewRedisStore(ctx, jobstore.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return nil, fmt.Errorf("unsupported jobs backend: %s", cfg.Backend)
	}
}

// buildTranslator creates the translation client from inference and
// translation config. The API key falls back to OPENAI_API_KEY.
func buildTranslator(infCfg config.InferenceConfig, trCfg config.TranslationConfig) (*translate.Client, error) {
	apiKey := infCfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	inf, err := inference.NewOpenAIClient(inference.OpenAIConfig{
		APIKey:         apiKey,
		Model:          infCfg.Model,
		BaseURL:        infCfg.BaseURL,
		BreakerEnabled: infCfg.Breaker,
	})
	if err != nil {
		return nil, err
	}

	client := translate.New(inf, translate.Config{
		Temperature: float32(trCfg.Temperature),
		RateLimit:   trCfg.RateLimit,
	}).WithLogger(observability.Logger)

	return client, nil
}
