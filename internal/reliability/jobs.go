package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/database"
)

// BackupJob uploads a fresh backup and rotates old ones on a schedule.
type BackupJob struct {
	service       *BackupService
	retentionDays int
	timeout       time.Duration
}

// NewBackupJob creates a backup job.
func NewBackupJob(service *BackupService, retentionDays int) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		timeout:       10 * time.Minute,
	}
}

// Name implements scheduler.Job.
func (j *BackupJob) Name() string { return "database-backup" }

// Run implements scheduler.Job.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}
	return j.service.RotateOldBackups(ctx, j.retentionDays)
}

// MaintenanceJob checkpoints WAL files and verifies database integrity.
type MaintenanceJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job over the given databases.
func NewMaintenanceJob(databases map[string]*database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *MaintenanceJob) Name() string { return "database-maintenance" }

// Run implements scheduler.Job.
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for name, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Integrity check failed")
			return err
		}

		// Checkpoint failure is not fatal, the WAL just grows until the next run
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
		}
	}

	j.log.Debug().Int("databases", len(j.databases)).Msg("Maintenance completed")
	return nil
}
