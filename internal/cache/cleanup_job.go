package cache

import (
	"github.com/rs/zerolog"
)

// CleanupJob periodically removes expired cache entries so the cache database
// does not grow without bound. Registered with the scheduler.
type CleanupJob struct {
	store *Store
	log   zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(store *Store, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		store: store,
		log:   log.With().Str("job", "cache-cleanup").Logger(),
	}
}

// Name returns the job name for scheduler logging.
func (j *CleanupJob) Name() string {
	return "cache-cleanup"
}

// Run deletes all expired cache entries.
func (j *CleanupJob) Run() error {
	deleted, err := j.store.DeleteExpired()
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Removed expired cache entries")
	}
	return nil
}
