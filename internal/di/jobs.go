// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/expenseoracle/oracle/internal/cache"
	"github.com/expenseoracle/oracle/internal/config"
	"github.com/expenseoracle/oracle/internal/scheduler"
	"github.com/rs/zerolog"
)

// Maintenance schedules (seconds first)
const (
	walCheckpointSchedule = "0 */15 * * * *"
	integritySchedule     = "0 0 4 * * *"
)

// RegisterJobs creates every job instance
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if container.PipelineService == nil || container.CacheRepo == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	instances := &JobInstances{
		Pipeline:       scheduler.NewPipelineJob(container.PipelineService, cfg.Scheduling.PipelineTimeout, log),
		CacheCleanup:   cache.NewCleanupJob(container.CacheRepo, log),
		WALCheckpoints: scheduler.NewCheckWALCheckpointsJob(container.OracleDB, container.CacheDB),
		CoreDatabases:  scheduler.NewCheckCoreDatabasesJob(container.OracleDB, container.CacheDB),
	}
	instances.WALCheckpoints.SetLogger(log)
	instances.CoreDatabases.SetLogger(log)

	log.Info().Msg("Jobs created")
	return instances, nil
}

// ScheduleJobs adds every job to the scheduler on its configured cron expression
func ScheduleJobs(s *scheduler.Scheduler, jobs *JobInstances, cfg *config.Config) error {
	entries := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Scheduling.PipelineCron, jobs.Pipeline},
		{cfg.Scheduling.CacheCleanupCron, jobs.CacheCleanup},
		{walCheckpointSchedule, jobs.WALCheckpoints},
		{integritySchedule, jobs.CoreDatabases},
	}

	for _, e := range entries {
		if err := s.AddJob(e.schedule, e.job); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", e.job.Name(), err)
		}
	}
	return nil
}
