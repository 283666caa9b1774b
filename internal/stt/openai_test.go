package stt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"transcriptions/internal/config"
	"transcriptions/internal/logger"
)

func newWhisperServer(t *testing.T, transcriptionStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/talk.mp3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ID3-fake-audio-bytes"))
	})
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "ID3-fake-audio-bytes" {
			t.Errorf("expected downloaded audio to be forwarded, got %q", data)
		}
		if header.Filename != "talk.mp3" {
			t.Errorf("expected file name talk.mp3, got %q", header.Filename)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("expected verbose_json, got %q", got)
		}

		if transcriptionStatus != http.StatusOK {
			w.WriteHeader(transcriptionStatus)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"task": "transcribe",
			"language": "english",
			"duration": 2.0,
			"text": "Hello world.",
			"segments": [
				{"id": 0, "seek": 0, "start": 0.0, "end": 1.0, "text": " Hello"},
				{"id": 1, "seek": 0, "start": 1.0, "end": 2.0, "text": " world."}
			]
		}`))
	})
	return httptest.NewServer(mux)
}

func newTestOpenAIProvider(srv *httptest.Server) *OpenAIProvider {
	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	cfg.HTTPClient = srv.Client()
	return NewOpenAIProviderWithConfig(cfg, srv.Client(), logger.Nop())
}

func TestOpenAITranscribe(t *testing.T) {
	srv := newWhisperServer(t, http.StatusOK)
	defer srv.Close()

	p := newTestOpenAIProvider(srv)
	result, err := p.Transcribe(context.Background(), srv.URL+"/audio/talk.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", result.Provider)
	}
	if len(result.Paragraphs) != 1 {
		t.Fatalf("expected a single paragraph, got %d", len(result.Paragraphs))
	}
	sentences := result.Paragraphs[0].Sentences
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "Hello" || sentences[1].Text != "world." {
		t.Errorf("expected trimmed segment text, got %+v", sentences)
	}
	if sentences[1].Start != 1.0 || sentences[1].End != 2.0 {
		t.Errorf("unexpected timings %+v", sentences[1])
	}
}

func TestOpenAITranscribeAPIError(t *testing.T) {
	srv := newWhisperServer(t, http.StatusInternalServerError)
	defer srv.Close()

	p := newTestOpenAIProvider(srv)
	_, err := p.Transcribe(context.Background(), srv.URL+"/audio/talk.mp3")
	if !errors.Is(err, ErrProvider) {
		t.Errorf("expected ErrProvider, got %v", err)
	}
}

func TestOpenAIAudioDownloadFailure(t *testing.T) {
	srv := newWhisperServer(t, http.StatusOK)
	defer srv.Close()

	p := newTestOpenAIProvider(srv)
	_, err := p.Transcribe(context.Background(), srv.URL+"/audio/missing.mp3")
	if !errors.Is(err, ErrProvider) {
		t.Errorf("expected ErrProvider for 404 audio, got %v", err)
	}
}

func TestOpenAIInvalidAudioURL(t *testing.T) {
	srv := newWhisperServer(t, http.StatusOK)
	defer srv.Close()

	p := newTestOpenAIProvider(srv)
	_, err := p.Transcribe(context.Background(), "://no-scheme")
	if !errors.Is(err, ErrProvider) {
		t.Errorf("expected ErrProvider for an unusable audio url, got %v", err)
	}
}

func TestAudioFileName(t *testing.T) {
	if got := audioFileName("https://cdn.example.com/a/b/episode.wav?sig=1"); got != "episode.wav" {
		t.Errorf("expected episode.wav, got %q", got)
	}
	if got := audioFileName("https://cdn.example.com/"); got != "audio.mp3" {
		t.Errorf("expected fallback name, got %q", got)
	}
}

func TestCreateProvider(t *testing.T) {
	p, err := CreateProvider(&config.Config{STTProvider: config.ProviderDeepgram, DeepgramKey: "k", DeepgramURL: "http://x"}, logger.Nop())
	if err != nil || p.Name() != "deepgram" {
		t.Errorf("expected deepgram provider, got %v, %v", p, err)
	}

	p, err = CreateProvider(&config.Config{STTProvider: config.ProviderOpenAI, OpenAIKey: "k"}, logger.Nop())
	if err != nil || p.Name() != "openai" {
		t.Errorf("expected openai provider, got %v, %v", p, err)
	}

	if _, err := CreateProvider(&config.Config{STTProvider: "fpt"}, logger.Nop()); err == nil {
		t.Error("expected error for unknown provider")
	}
}
