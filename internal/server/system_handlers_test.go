package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseoracle/oracle/internal/cache"
	"github.com/expenseoracle/oracle/internal/domain"
	"github.com/expenseoracle/oracle/internal/modules/expenses"
	"github.com/expenseoracle/oracle/internal/scheduler"
	testingutil "github.com/expenseoracle/oracle/internal/testing"
)

type fakeJobRunner struct {
	mu   sync.Mutex
	jobs []scheduler.JobStatus
	ran  []string
	err  error
}

func (f *fakeJobRunner) Jobs() []scheduler.JobStatus {
	return f.jobs
}

func (f *fakeJobRunner) RunByName(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, name)
	return true, f.err
}

func (f *fakeJobRunner) Ran() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ran...)
}

func newTestSystemHandlers(t *testing.T, jobs JobRunner) (*SystemHandlers, *expenses.Repository, *cache.Repository) {
	t.Helper()

	oracleDB, cleanupOracle := testingutil.NewTestDB(t, "oracle")
	t.Cleanup(cleanupOracle)
	cacheDB, cleanupCache := testingutil.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	h := NewSystemHandlers(log, oracleDB, cacheDB, jobs)
	h.statsFunc = func() (float64, float64) { return 12.5, 40 }

	return h, expenses.NewRepository(oracleDB.Conn(), log), cache.NewRepository(cacheDB.Conn())
}

func newSystemRouter(h *SystemHandlers) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/system/status", h.HandleSystemStatus)
	r.Get("/api/system/jobs", h.HandleJobsStatus)
	r.Post("/api/system/jobs/{name}/run", h.HandleRunJob)
	return r
}

func TestSystemHandlers_HandleSystemStatus(t *testing.T) {
	h, repo, cacheRepo := newTestSystemHandlers(t, nil)
	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "status@example.com")
	require.NoError(t, err)
	for _, amount := range []int64{10, 20} {
		_, err := repo.AddExpense(ctx, userID, domain.ExpenseRecord{
			Title:     "Lunch",
			Amount:    decimal.NewFromInt(amount),
			CreatedAt: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.AddBudget(ctx, userID, domain.BudgetLine{
		Category:    "Food",
		LimitAmount: decimal.NewFromInt(300),
	}))
	require.NoError(t, cacheRepo.Set(ctx, cache.ForecastKey(userID), map[string]float64{"x": 1}, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	w := httptest.NewRecorder()
	newSystemRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, 1, response.Users)
	assert.Equal(t, 2, response.Expenses)
	assert.Equal(t, 1, response.Budgets)
	assert.Equal(t, 0, response.AuditRecords)
	assert.Equal(t, 1, response.CacheEntries)
	assert.Equal(t, 12.5, response.CPUPercent)
	assert.Equal(t, 40.0, response.MemoryPercent)
	require.Len(t, response.Databases, 2)
	assert.Equal(t, "oracle", response.Databases[0].Name)
	assert.Equal(t, "cache", response.Databases[1].Name)
	assert.Empty(t, response.Errors)
}

func TestSystemHandlers_StatusDegradesOnQueryFailure(t *testing.T) {
	h, _, _ := newTestSystemHandlers(t, nil)

	_, err := h.cacheDB.Conn().Exec("DROP TABLE cache_entries")
	require.NoError(t, err)

	response := h.GetSystemStatusSnapshot(context.Background())
	assert.Equal(t, "degraded", response.Status)
	assert.Len(t, response.Errors, 1)
	assert.Equal(t, 0, response.CacheEntries)
}

func TestSystemHandlers_HandleJobsStatus(t *testing.T) {
	t.Run("scheduler disabled", func(t *testing.T) {
		h, _, _ := newTestSystemHandlers(t, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/system/jobs", nil)
		w := httptest.NewRecorder()
		newSystemRouter(h).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var response JobsStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.SchedulerEnabled)
		assert.Equal(t, 0, response.TotalJobs)
		assert.NotNil(t, response.Jobs)
	})

	t.Run("lists registered jobs", func(t *testing.T) {
		runner := &fakeJobRunner{jobs: []scheduler.JobStatus{
			{Name: "cache_cleanup", Schedule: "0 30 * * * *"},
			{Name: "decision_pipeline", Schedule: "0 0 3 * * *"},
		}}
		h, _, _ := newTestSystemHandlers(t, runner)

		req := httptest.NewRequest(http.MethodGet, "/api/system/jobs", nil)
		w := httptest.NewRecorder()
		newSystemRouter(h).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var response JobsStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.SchedulerEnabled)
		assert.Equal(t, 2, response.TotalJobs)
		assert.Equal(t, "decision_pipeline", response.Jobs[1].Name)
		assert.Equal(t, "0 0 3 * * *", response.Jobs[1].Schedule)
	})
}

func TestSystemHandlers_HandleRunJob(t *testing.T) {
	runner := &fakeJobRunner{
		jobs: []scheduler.JobStatus{{Name: "decision_pipeline", Schedule: "0 0 3 * * *"}},
		err:  errors.New("boom"),
	}
	h, _, _ := newTestSystemHandlers(t, runner)
	router := newSystemRouter(h)

	t.Run("starts a known job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/system/jobs/decision_pipeline/run", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)
		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "decision_pipeline", response["job"])

		assert.Eventually(t, func() bool {
			return len(runner.Ran()) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("unknown job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/system/jobs/nope/run", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("scheduler disabled", func(t *testing.T) {
		disabled, _, _ := newTestSystemHandlers(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/system/jobs/decision_pipeline/run", nil)
		w := httptest.NewRecorder()
		newSystemRouter(disabled).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
