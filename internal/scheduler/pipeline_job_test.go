package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expenseoracle/oracle/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPipelineRunner struct {
	mock.Mock
}

func (m *mockPipelineRunner) RunForAllUsers(ctx context.Context) (services.RunSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.RunSummary), args.Error(1)
}

func TestPipelineJob_Name(t *testing.T) {
	job := NewPipelineJob(&mockPipelineRunner{}, time.Minute, zerolog.Nop())
	assert.Equal(t, "decision_pipeline", job.Name())
}

func TestPipelineJob_Run(t *testing.T) {
	runner := &mockPipelineRunner{}
	runner.On("RunForAllUsers", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Minute
	})).Return(services.RunSummary{Users: 3, Succeeded: 3, Actions: 7}, nil)

	job := NewPipelineJob(runner, time.Minute, zerolog.Nop())

	require.NoError(t, job.Run())
	runner.AssertExpectations(t)
}

func TestPipelineJob_RunFailure(t *testing.T) {
	boom := errors.New("profiles unavailable")
	runner := &mockPipelineRunner{}
	runner.On("RunForAllUsers", mock.Anything).Return(services.RunSummary{Users: 2, Succeeded: 1, Failed: 1}, boom)

	job := NewPipelineJob(runner, 0, zerolog.Nop())

	err := job.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "1 of 2 users")
	assert.Equal(t, 5*time.Minute, job.timeout)
}
