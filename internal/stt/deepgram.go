package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"transcriptions/internal/logger"
)

// DeepgramProvider implements STT using Deepgram's pre-recorded audio API.
// Requests always ask for smart formatting on the enhanced tier.
type DeepgramProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

// NewDeepgramProvider creates a new Deepgram STT provider
func NewDeepgramProvider(apiKey, endpoint string, httpClient *http.Client, log *logger.Logger) *DeepgramProvider {
	return &DeepgramProvider{
		apiKey:     apiKey,
		url:        endpoint,
		httpClient: httpClient,
		log:        log.WithComponent("deepgram"),
	}
}

// Name returns the provider name
func (p *DeepgramProvider) Name() string {
	return "deepgram"
}

type deepgramRequest struct {
	URL string `json:"url"`
}

// deepgramResponse mirrors results.channels[].alternatives[].paragraphs.paragraphs[].sentences[].
// Pointers mark the levels that must be present.
type deepgramResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Paragraphs *struct {
					Paragraphs *[]deepgramParagraph `json:"paragraphs"`
				} `json:"paragraphs"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

type deepgramParagraph struct {
	Sentences *[]deepgramSentence `json:"sentences"`
}

type deepgramSentence struct {
	Text  *string  `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Transcribe asks Deepgram to fetch and transcribe audioURL
func (p *DeepgramProvider) Transcribe(ctx context.Context, audioURL string) (*Result, error) {
	startTime := time.Now()

	endpoint, err := url.Parse(p.url)
	if err != nil {
		return nil, fmt.Errorf("invalid deepgram url %q: %w", p.url, err)
	}
	q := endpoint.Query()
	q.Set("smart_format", "true")
	q.Set("tier", "enhanced")
	endpoint.RawQuery = q.Encode()

	body, err := json.Marshal(deepgramRequest{URL: audioURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		p.log.Error("Deepgram API error", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   truncate(string(respBody), 500),
		})
		return nil, fmt.Errorf("%w: deepgram returned status %d", ErrProvider, resp.StatusCode)
	}

	result, err := parseDeepgramResponse(respBody)
	if err != nil {
		p.log.Error("Deepgram response did not match expected shape", map[string]interface{}{
			"body": truncate(string(respBody), 500),
		})
		return nil, err
	}

	p.log.Info("Deepgram transcription successful", map[string]interface{}{
		"paragraphs":  len(result.Paragraphs),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	return result, nil
}

// parseDeepgramResponse descends to the first channel's first alternative and
// returns its paragraphs.
func parseDeepgramResponse(body []byte) (*Result, error) {
	var dg deepgramResponse
	if err := json.Unmarshal(body, &dg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if dg.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrMalformedResponse)
	}
	if len(dg.Results.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrMalformedResponse)
	}
	alts := dg.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return nil, fmt.Errorf("%w: no alternatives", ErrMalformedResponse)
	}
	if alts[0].Paragraphs == nil || alts[0].Paragraphs.Paragraphs == nil {
		return nil, fmt.Errorf("%w: missing paragraphs", ErrMalformedResponse)
	}

	paragraphs := *alts[0].Paragraphs.Paragraphs
	result := &Result{
		Paragraphs: make([]Paragraph, 0, len(paragraphs)),
		Provider:   "deepgram",
	}
	for i, para := range paragraphs {
		if para.Sentences == nil {
			return nil, fmt.Errorf("%w: paragraph %d has no sentences", ErrMalformedResponse, i)
		}
		sentences := make([]Sentence, 0, len(*para.Sentences))
		for j, s := range *para.Sentences {
			if s.Text == nil || s.Start == nil || s.End == nil {
				return nil, fmt.Errorf("%w: paragraph %d sentence %d is incomplete", ErrMalformedResponse, i, j)
			}
			sentences = append(sentences, Sentence{Text: *s.Text, Start: *s.Start, End: *s.End})
		}
		result.Paragraphs = append(result.Paragraphs, Paragraph{Sentences: sentences})
	}
	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
