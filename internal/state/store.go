// Package state records the history of translation runs in SQLite.
package state

import (
	"context"
	"time"
)

// Status is the outcome of a translation run.
type Status string

// Run statuses.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Translation is one recorded translation of an input file.
type Translation struct {
	ID         string        `json:"id" yaml:"id"`
	Input      string        `json:"input" yaml:"input"`
	Output     string        `json:"output" yaml:"output"`
	Status     Status        `json:"status" yaml:"status"`
	Statements int           `json:"statements" yaml:"statements"`
	CTEs       int           `json:"ctes" yaml:"ctes"`
	Hoisted    int           `json:"hoisted" yaml:"hoisted"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Store persists translation history.
type Store interface {
	RecordTranslation(ctx context.Context, t *Translation) error
	ListTranslations(ctx context.Context, limit int) ([]*Translation, error)
	GetTranslation(ctx context.Context, id string) (*Translation, error)
	Close() error
}
