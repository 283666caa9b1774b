package stt

import (
	"context"
	"errors"
)

var (
	// ErrProvider wraps failures talking to the provider (network, non-2xx)
	ErrProvider = errors.New("stt provider request failed")

	// ErrMalformedResponse is returned when the provider answers without the
	// expected nested structure
	ErrMalformedResponse = errors.New("stt provider returned a malformed response")
)

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe transcribes the audio at audioURL and returns the result
	Transcribe(ctx context.Context, audioURL string) (*Result, error)

	// Name returns the name of the provider (e.g., "deepgram", "openai")
	Name() string
}
