package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/services"
	"vim-audiosync/internal/store"
	"vim-audiosync/internal/syncengine"
)

type fakeRemover struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (r *fakeRemover) Delete(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, path)
	return r.err
}

func (r *fakeRemover) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

func TestStorageService_DeletesSourceOfTerminalJob(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := &fakeRemover{}
	svc := services.NewStorageService(r, logger)

	svc.HandleJobFinished(&models.Job{ID: "1", Status: models.JobStatusProcessing, SourcePath: "jobs/1/source/a.mov"})
	svc.HandleJobFinished(&models.Job{ID: "2", Status: models.JobStatusReady})
	svc.HandleJobFinished(nil)
	assert.Empty(t, r.paths())

	svc.HandleJobFinished(&models.Job{ID: "3", Status: models.JobStatusReady, SourcePath: "jobs/3/source/a.mov"})
	assert.Equal(t, []string{"jobs/3/source/a.mov"}, r.paths())

	r.err = errors.New("bucket gone")
	svc.HandleJobFinished(&models.Job{ID: "4", Status: models.JobStatusError, SourcePath: "jobs/4/source/a.mov"})
	assert.Equal(t, "failed to delete source media", hook.LastEntry().Message)
}

func TestJobService_CleanupAfterTerminalUpdate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := &fakeRemover{}
	jobs := store.NewMemoryStore()
	engine := &fakeEngine{status: make(map[string]*syncengine.Job)}
	svc := services.NewJobService(jobs, &fakeFiles{}, engine, nil, services.JobServiceConfig{
		Cleanup: services.NewStorageService(r, logger),
	}, logger)

	job, err := svc.CreateJob(context.Background(), "A001.mov", "", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Empty(t, r.paths())

	_, err = svc.ApplyEngineUpdate(context.Background(), models.EngineWebhookEvent{
		Reference: job.ID, JobID: job.EngineJobID, Status: "completed", OutputPath: "jobs/" + job.ID + "/output/A001.mov",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(r.paths()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"jobs/" + job.ID + "/source/A001.mov"}, r.paths())
}
