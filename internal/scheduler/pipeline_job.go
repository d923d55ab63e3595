package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseoracle/oracle/internal/services"
	"github.com/rs/zerolog"
)

// PipelineRunner refreshes the decision pipeline for every user
type PipelineRunner interface {
	RunForAllUsers(ctx context.Context) (services.RunSummary, error)
}

// PipelineJob re-runs the full pipeline for all users within a timeout
type PipelineJob struct {
	runner  PipelineRunner
	timeout time.Duration
	log     zerolog.Logger
}

// NewPipelineJob creates a new PipelineJob. A non-positive timeout defaults to five minutes.
func NewPipelineJob(runner PipelineRunner, timeout time.Duration, log zerolog.Logger) *PipelineJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &PipelineJob{
		runner:  runner,
		timeout: timeout,
		log:     log.With().Str("job", "decision_pipeline").Logger(),
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "decision_pipeline"
}

// Run executes the pipeline for all users. Per-user failures fail the job
// only after every other user has been processed.
func (j *PipelineJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	summary, err := j.runner.RunForAllUsers(ctx)
	if err != nil {
		j.log.Warn().
			Err(err).
			Int("failed", summary.Failed).
			Int("users", summary.Users).
			Msg("Pipeline completed with failures")
		return fmt.Errorf("pipeline failed for %d of %d users: %w", summary.Failed, summary.Users, err)
	}

	j.log.Info().
		Int("users", summary.Users).
		Int("actions", summary.Actions).
		Msg("Pipeline completed")
	return nil
}
