// Package worker provides background job processing for Pushlane.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pushlane/pushlane/internal/featureflags"
	"github.com/pushlane/pushlane/internal/registration"
)

// StatusSyncJob refreshes the active flag of device registrations when an
// activation changes state upstream.
type StatusSyncJob struct {
	registrations *registration.Service
	flags         *featureflags.Service
	logger        zerolog.Logger

	metrics *SyncMetrics
}

// SyncMetrics tracks status sync job statistics.
type SyncMetrics struct {
	mu sync.RWMutex

	TotalSyncs      int64
	SkippedSyncs    int64
	FailedSyncs     int64
	RowsUpdated     int64
	LastSyncAt      time.Time
	LastSyncUpdated int
}

// StatusSyncJobConfig holds configuration for creating a StatusSyncJob.
type StatusSyncJobConfig struct {
	Registrations *registration.Service
	Flags         *featureflags.Service
	Logger        zerolog.Logger
}

// NewStatusSyncJob creates a new status sync job processor.
func NewStatusSyncJob(cfg StatusSyncJobConfig) *StatusSyncJob {
	return &StatusSyncJob{
		registrations: cfg.Registrations,
		flags:         cfg.Flags,
		logger:        cfg.Logger,
		metrics:       &SyncMetrics{},
	}
}

// SyncResult contains the result of a single status sync.
type SyncResult struct {
	ActivationID string
	Updated      int
	Skipped      bool
	Duration     time.Duration
}

// Sync refreshes all registrations bound to the given activation.
// When the disable_status_sync flag is set the sync is skipped and
// reported as such; this is not an error.
func (j *StatusSyncJob) Sync(ctx context.Context, activationID string) (SyncResult, error) {
	start := time.Now()
	result := SyncResult{ActivationID: activationID}

	if j.flags != nil && j.flags.IsStatusSyncDisabled(ctx) {
		result.Skipped = true
		result.Duration = time.Since(start)
		j.recordSkip()
		j.logger.Debug().
			Str("activation_id", activationID).
			Msg("status sync disabled by feature flag, skipping")
		return result, nil
	}

	updated, err := j.registrations.UpdateStatus(ctx, activationID)
	result.Duration = time.Since(start)
	if err != nil {
		j.recordFailure()
		j.logger.Error().Err(err).
			Str("activation_id", activationID).
			Msg("status sync failed")
		return result, err
	}

	result.Updated = updated
	j.recordSuccess(updated)
	j.logger.Info().
		Str("activation_id", activationID).
		Int("updated", updated).
		Dur("duration", result.Duration).
		Msg("status sync completed")
	return result, nil
}

// Metrics returns a snapshot of the job's counters.
func (j *StatusSyncJob) Metrics() SyncMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()
	return SyncMetrics{
		TotalSyncs:      j.metrics.TotalSyncs,
		SkippedSyncs:    j.metrics.SkippedSyncs,
		FailedSyncs:     j.metrics.FailedSyncs,
		RowsUpdated:     j.metrics.RowsUpdated,
		LastSyncAt:      j.metrics.LastSyncAt,
		LastSyncUpdated: j.metrics.LastSyncUpdated,
	}
}

func (j *StatusSyncJob) recordSuccess(updated int) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	j.metrics.TotalSyncs++
	j.metrics.RowsUpdated += int64(updated)
	j.metrics.LastSyncAt = time.Now()
	j.metrics.LastSyncUpdated = updated
}

func (j *StatusSyncJob) recordSkip() {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	j.metrics.TotalSyncs++
	j.metrics.SkippedSyncs++
}

func (j *StatusSyncJob) recordFailure() {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	j.metrics.TotalSyncs++
	j.metrics.FailedSyncs++
}
