// Package jobs runs background work over Asynq: today that is pre-warming
// the catalog cache so catalog and dashboard reads hit warm entries.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup is the task type for catalog cache warmup.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload selects which cache keys to warm. Empty means every
// registered key.
type CatalogWarmupPayload struct {
	Keys []string `json:"keys,omitempty"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
