package repository

import (
	"context"
	"sync"

	"transcriptions/internal/model"
)

type memoryRepository struct {
	mu      sync.Mutex
	records map[int64]string
}

// NewMemoryRepository creates a process-local repository. Records are lost
// on restart.
func NewMemoryRepository() TranscriptionRepository {
	return &memoryRepository{
		records: make(map[int64]string),
	}
}

func (r *memoryRepository) Get(_ context.Context, id int64) (model.Item, error) {
	r.mu.Lock()
	data, ok := r.records[id]
	r.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return model.Transcription{ID: id, Data: data}.Item(), nil
}

func (r *memoryRepository) CreateIfAbsent(_ context.Context, t *model.Transcription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[t.ID]; ok {
		return ErrAlreadyExists
	}
	r.records[t.ID] = t.Data
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
	return nil
}
