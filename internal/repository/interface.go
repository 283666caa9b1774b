package repository

import (
	"context"
	"errors"

	"transcriptions/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for an id
	ErrNotFound = errors.New("transcription not found")

	// ErrAlreadyExists is returned by CreateIfAbsent when the id is already stored
	ErrAlreadyExists = errors.New("transcription already exists")
)

// TranscriptionRepository defines the interface for transcription data access
type TranscriptionRepository interface {
	// Get returns the stored item for id, or ErrNotFound
	Get(ctx context.Context, id int64) (model.Item, error)

	// CreateIfAbsent writes the record only if its id is not stored yet.
	// Returns ErrAlreadyExists otherwise.
	CreateIfAbsent(ctx context.Context, t *model.Transcription) error

	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
}
