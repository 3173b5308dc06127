package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// Record is one generated document or regenerated section, as returned to a caller.
type Record struct {
	ID          string    `json:"id"`
	ProjectType string    `json:"projectType"`
	ProjectIdea string    `json:"projectIdea"`
	Model       string    `json:"model"`
	Section     string    `json:"section,omitempty"`
	Markdown    string    `json:"markdown"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecordStore persists generation records.
type RecordStore interface {
	// SaveRecord upserts a record by ID.
	SaveRecord(ctx context.Context, r Record) error

	// GetRecord returns ErrNotFound when no record has the ID.
	GetRecord(ctx context.Context, id string) (Record, error)

	// ListRecords returns the newest records first.
	ListRecords(ctx context.Context, limit int) ([]Record, error)

	Close() error
}
