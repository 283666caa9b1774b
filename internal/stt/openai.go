package stt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"transcriptions/internal/logger"
)

// OpenAIProvider implements STT using OpenAI's Whisper transcription API.
// Whisper takes the audio itself, so the provider downloads audioURL first.
// Segments come back without paragraph grouping and are returned as a single
// paragraph.
type OpenAIProvider struct {
	client     *openai.Client
	httpClient *http.Client
	log        *logger.Logger
}

// NewOpenAIProvider creates a new OpenAI STT provider
func NewOpenAIProvider(apiKey string, httpClient *http.Client, log *logger.Logger) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = httpClient
	return NewOpenAIProviderWithConfig(cfg, httpClient, log)
}

// NewOpenAIProviderWithConfig creates an OpenAI STT provider from a client
// config, e.g. one pointing BaseURL at a compatible server.
func NewOpenAIProviderWithConfig(cfg openai.ClientConfig, httpClient *http.Client, log *logger.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		httpClient: httpClient,
		log:        log.WithComponent("openai"),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe downloads audioURL and sends it to Whisper
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioURL string) (*Result, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create audio request: %v", ErrProvider, err)
	}
	audio, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download audio: %v", ErrProvider, err)
	}
	defer audio.Body.Close()

	if audio.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: audio download returned status %d", ErrProvider, audio.StatusCode)
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioFileName(audioURL),
		Reader:   audio.Body,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		p.log.WithError(err).Error("OpenAI transcription failed")
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if resp.Segments == nil {
		return nil, fmt.Errorf("%w: missing segments", ErrMalformedResponse)
	}

	sentences := make([]Sentence, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		sentences = append(sentences, Sentence{
			Text:  strings.TrimSpace(seg.Text),
			Start: seg.Start,
			End:   seg.End,
		})
	}

	p.log.Info("OpenAI transcription successful", map[string]interface{}{
		"segments":    len(sentences),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return &Result{
		Paragraphs: []Paragraph{{Sentences: sentences}},
		Provider:   "openai",
	}, nil
}

// audioFileName picks the multipart file name Whisper uses to detect the
// format.
func audioFileName(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err == nil {
		if name := path.Base(u.Path); name != "" && name != "/" && name != "." {
			return name
		}
	}
	return "audio.mp3"
}
