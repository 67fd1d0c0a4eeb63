package domain

import "time"

// IndexingLog records the outcome of one index build.
type IndexingLog struct {
	// BuildID uniquely identifies the build run.
	BuildID string `json:"build_id"`

	// Operation is "full" or "incremental".
	Operation string `json:"operation"`

	CasesProcessed int `json:"cases_processed"`
	ChunksCreated  int `json:"chunks_created"`
	VectorsCreated int `json:"vectors_created"`
	ChunksSkipped  int `json:"chunks_skipped"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Duration returns how long the build ran.
func (l IndexingLog) Duration() time.Duration {
	return l.FinishedAt.Sub(l.StartedAt)
}

// Build operation names.
const (
	BuildFull        = "full"
	BuildIncremental = "incremental"
)
