package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
)

const cleanupTimeout = 30 * time.Second

// Remover deletes objects from the file store.
type Remover interface {
	Delete(ctx context.Context, storagePath string) error
}

// StorageService removes uploaded source media once the engine is done with it.
// The synced output is never touched.
type StorageService struct {
	files Remover
	log   logrus.FieldLogger
}

func NewStorageService(files Remover, log logrus.FieldLogger) *StorageService {
	return &StorageService{
		files: files,
		log:   log,
	}
}

// HandleJobFinished deletes the source upload of a terminal job.
// Cleanup is best-effort: failures are logged and the job record is unchanged.
func (s *StorageService) HandleJobFinished(job *models.Job) {
	if job == nil || !job.Status.IsTerminal() || job.SourcePath == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	entry := s.log.WithFields(logrus.Fields{"job_id": job.ID, "path": job.SourcePath})
	if err := s.files.Delete(ctx, job.SourcePath); err != nil {
		entry.WithError(err).Warn("failed to delete source media")
		return
	}
	entry.Info("source media deleted")
}
