package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/soalgen/soalgen/internal/filestore"
)

// UploadCleanupJob removes staged uploads that were never processed,
// usually because ingestion crashed between staging and indexing. It only
// works on stores that can be listed.
type UploadCleanupJob struct {
	store  filestore.Store
	maxAge time.Duration
}

func NewUploadCleanupJob(store filestore.Store, maxAge time.Duration) *UploadCleanupJob {
	return &UploadCleanupJob{store: store, maxAge: maxAge}
}

func (j *UploadCleanupJob) Name() string {
	return "upload_cleanup"
}

func (j *UploadCleanupJob) Run(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	enumerator, ok := j.store.(filestore.Enumerator)
	if !ok {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)
	files, err := enumerator.List(ctx)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	removed := 0
	for _, file := range files {
		if file.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Delete(ctx, file.Key); err != nil {
			logger.Warn("remove stale upload failed", zap.String("key", file.Key), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("stale uploads removed", zap.Int("count", removed))
	}
	return nil
}
