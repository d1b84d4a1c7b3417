package worker_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pushlane/pushlane/internal/activation"
	"github.com/pushlane/pushlane/internal/featureflags"
	"github.com/pushlane/pushlane/internal/registration"
	"github.com/pushlane/pushlane/internal/worker"
)

type stubStatusProvider struct {
	statuses map[string]*activation.StatusInfo
}

func (s *stubStatusProvider) GetStatus(_ context.Context, activationID string) (*activation.StatusInfo, error) {
	if info, ok := s.statuses[activationID]; ok {
		return info, nil
	}
	return nil, activation.ErrActivationNotFound
}

func newSyncFixture(t *testing.T, statuses map[string]*activation.StatusInfo, syncDisabled bool) (*worker.StatusSyncJob, *registration.InMemoryRepository) {
	t.Helper()

	repo := registration.NewInMemoryRepository()
	flags := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewInMemoryRepositoryWithFlags(map[string]*featureflags.Flag{
			featureflags.FlagDisableStatusSync: {
				Key:   featureflags.FlagDisableStatusSync,
				Value: syncDisabled,
			},
		}),
		Logger: zerolog.Nop(),
	})

	registrationService := registration.NewService(registration.ServiceConfig{
		Repository:  repo,
		Activations: &stubStatusProvider{statuses: statuses},
		Flags:       flags,
		Logger:      zerolog.Nop(),
	})

	job := worker.NewStatusSyncJob(worker.StatusSyncJobConfig{
		Registrations: registrationService,
		Flags:         flags,
		Logger:        zerolog.Nop(),
	})
	return job, repo
}

func strPtr(s string) *string { return &s }

func TestStatusSyncJob_Sync(t *testing.T) {
	job, repo := newSyncFixture(t, map[string]*activation.StatusInfo{
		"act1": {ActivationID: "act1", Status: activation.StatusInactive, UserID: "user1"},
	}, false)
	ctx := context.Background()

	if err := repo.Save(ctx, &registration.Registration{
		ID: "dev_a", AppID: "app1", PushToken: "token-a", ActivationID: strPtr("act1"), Active: true,
	}); err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}

	result, err := job.Sync(ctx, "act1")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.Skipped {
		t.Error("expected sync not to be skipped")
	}
	if result.Updated != 1 {
		t.Errorf("expected 1 row updated, got %d", result.Updated)
	}

	rows, _ := repo.FindByActivation(ctx, "act1")
	if len(rows) != 1 || rows[0].Active {
		t.Error("expected row to be deactivated")
	}

	metrics := job.Metrics()
	if metrics.TotalSyncs != 1 || metrics.RowsUpdated != 1 {
		t.Errorf("unexpected metrics: %+v", &metrics)
	}
}

func TestStatusSyncJob_Sync_DisabledByFlag(t *testing.T) {
	job, repo := newSyncFixture(t, map[string]*activation.StatusInfo{
		"act1": {ActivationID: "act1", Status: activation.StatusInactive, UserID: "user1"},
	}, true)
	ctx := context.Background()

	if err := repo.Save(ctx, &registration.Registration{
		ID: "dev_a", AppID: "app1", PushToken: "token-a", ActivationID: strPtr("act1"), Active: true,
	}); err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}

	result, err := job.Sync(ctx, "act1")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !result.Skipped {
		t.Error("expected sync to be skipped")
	}

	// The row must be untouched.
	rows, _ := repo.FindByActivation(ctx, "act1")
	if len(rows) != 1 || !rows[0].Active {
		t.Error("expected row to keep its active flag")
	}

	metrics := job.Metrics()
	if metrics.SkippedSyncs != 1 {
		t.Errorf("expected 1 skipped sync, got %d", metrics.SkippedSyncs)
	}
}

func TestStatusSyncJob_Sync_NoRegistrations(t *testing.T) {
	job, _ := newSyncFixture(t, nil, false)

	result, err := job.Sync(context.Background(), "act-unknown")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.Updated != 0 {
		t.Errorf("expected 0 rows updated, got %d", result.Updated)
	}
}

func TestStatusSyncJob_Sync_EmptyActivationID(t *testing.T) {
	job, _ := newSyncFixture(t, nil, false)

	if _, err := job.Sync(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty activation id")
	}

	metrics := job.Metrics()
	if metrics.FailedSyncs != 1 {
		t.Errorf("expected 1 failed sync, got %d", metrics.FailedSyncs)
	}
}
