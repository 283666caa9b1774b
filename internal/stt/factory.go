package stt

import (
	"fmt"
	"net/http"

	"transcriptions/internal/config"
	"transcriptions/internal/logger"
)

// CreateProvider creates an STT provider based on configuration
func CreateProvider(cfg *config.Config, log *logger.Logger) (Provider, error) {
	httpClient := &http.Client{}

	switch cfg.STTProvider {
	case config.ProviderDeepgram:
		log.Info("Creating Deepgram STT provider", map[string]interface{}{"url": cfg.DeepgramURL})
		return NewDeepgramProvider(cfg.DeepgramKey, cfg.DeepgramURL, httpClient, log), nil
	case config.ProviderOpenAI:
		log.Info("Creating OpenAI STT provider")
		return NewOpenAIProvider(cfg.OpenAIKey, httpClient, log), nil
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: deepgram, openai", cfg.STTProvider)
	}
}
