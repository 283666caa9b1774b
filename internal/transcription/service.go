// Package transcription implements get, idempotent create and delete of
// transcription records on top of a repository and an STT provider.
package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"transcriptions/internal/logger"
	"transcriptions/internal/model"
	"transcriptions/internal/repository"
	"transcriptions/internal/stt"
)

var (
	ErrNotFound     = repository.ErrNotFound
	ErrTranscribe   = errors.New("failed to transcribe audio")
	ErrStore        = errors.New("failed to store transcription")
	ErrDeleteFailed = errors.New("failed to delete transcription")
)

// Service orchestrates the repository and the STT provider. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	repo     repository.TranscriptionRepository
	provider stt.Provider
	log      *logger.Logger
}

func NewService(repo repository.TranscriptionRepository, provider stt.Provider, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		log:      log.WithComponent("transcription"),
	}
}

// Get returns the stored item for id.
func (s *Service) Get(ctx context.Context, id int64) (model.Item, error) {
	return s.repo.Get(ctx, id)
}

// Create returns the stored item when id already exists. Otherwise it
// transcribes audioURL, persists the reshaped document and echoes the item
// it wrote. A different audioURL for an existing id is ignored.
func (s *Service) Create(ctx context.Context, id int64, audioURL string) (model.Item, error) {
	existing, err := s.repo.Get(ctx, id)
	if err == nil {
		s.log.Info("Transcription already exists, returning stored record", map[string]interface{}{"id": id})
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	result, err := s.provider.Transcribe(ctx, audioURL)
	if err != nil {
		s.log.WithError(err).Error("Transcription failed", map[string]interface{}{
			"id":       id,
			"provider": s.provider.Name(),
		})
		return nil, fmt.Errorf("%w: %w", ErrTranscribe, err)
	}

	data, err := Encode(Reshape(result))
	if err != nil {
		return nil, err
	}

	rec := &model.Transcription{ID: id, Data: data}
	err = s.repo.CreateIfAbsent(ctx, rec)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// A concurrent create for the same id wrote first.
		winner, err := s.repo.Get(ctx, id)
		if err != nil {
			s.log.WithError(err).Error("Failed to read concurrently created transcription", map[string]interface{}{"id": id})
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		return winner, nil
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to persist transcription", map[string]interface{}{"id": id})
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	s.log.Info("Transcription created", map[string]interface{}{
		"id":       id,
		"provider": result.Provider,
	})
	return rec.Item(), nil
}

// Delete removes id. A missing id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.WithError(err).Error("Failed to delete transcription", map[string]interface{}{"id": id})
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// Reshape flattens every paragraph's sentences, in order, into a document.
func Reshape(result *stt.Result) model.Document {
	doc := model.Document{Sentences: []model.Sentence{}}
	texts := []string{}

	for _, para := range result.Paragraphs {
		for _, s := range para.Sentences {
			doc.Sentences = append(doc.Sentences, model.Sentence{
				Start: s.Start,
				End:   s.End,
				Text:  s.Text,
			})
			texts = append(texts, s.Text)
		}
	}

	doc.Transcript = strings.Join(texts, "\n")
	return doc
}

// Encode serializes a document into the string stored as a record's data.
// The output is compact encoding/json text, so whole-number times render as
// 0 rather than 0.0 and there is no space after separators. Readers should
// decode the data, not compare it byte for byte.
func Encode(doc model.Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	return string(raw), nil
}
