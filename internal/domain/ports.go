package domain

import (
	"context"
	"time"
)

type ProjectRepository interface {
	// Write paths
	ReplaceProjects(ctx context.Context, runID string, ps []Project) error
	LogRun(ctx context.Context, run SyncRun) error

	// Read paths
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
}

// TableLoader fetches one tabular source, falling back to a secondary copy.
type TableLoader interface {
	Load(ctx context.Context, table, primary, fallback string) ([]Row, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SyncRun summarizes one fetch-parse-merge-store invocation.
type SyncRun struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`
	Projects  int       `json:"projects"`
	Months    int       `json:"months"`
	Photos    int       `json:"photos"`
	Status    string    `json:"status"` // ok|failed|dry-run
	Error     string    `json:"error,omitempty"`
}
