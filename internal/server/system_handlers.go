package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/expenseoracle/oracle/internal/database"
	"github.com/expenseoracle/oracle/internal/scheduler"
)

// JobRunner lists and triggers scheduled jobs
type JobRunner interface {
	Jobs() []scheduler.JobStatus
	RunByName(name string) (bool, error)
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	oracleDB    *database.DB
	cacheDB     *database.DB
	jobs        JobRunner
	statsFunc   func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance.
// jobs may be nil when scheduling is disabled.
func NewSystemHandlers(log zerolog.Logger, oracleDB, cacheDB *database.DB, jobs JobRunner) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		oracleDB:    oracleDB,
		cacheDB:     cacheDB,
		jobs:        jobs,
	}
	h.statsFunc = h.getSystemStats
	return h
}

// DBInfo describes one database file
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

// SystemStatusResponse represents system status
type SystemStatusResponse struct {
	Status        string   `json:"status"`
	Users         int      `json:"users"`
	Expenses      int      `json:"expenses"`
	Budgets       int      `json:"budgets"`
	AuditRecords  int      `json:"audit_records"`
	CacheEntries  int      `json:"cache_entries"`
	Databases     []DBInfo `json:"databases"`
	CPUPercent    float64  `json:"cpu_percent"`
	MemoryPercent float64  `json:"memory_percent"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Errors        []string `json:"errors,omitempty"`
}

// JobsStatusResponse represents the registered scheduled jobs
type JobsStatusResponse struct {
	SchedulerEnabled bool                  `json:"scheduler_enabled"`
	TotalJobs        int                   `json:"total_jobs"`
	Jobs             []scheduler.JobStatus `json:"jobs"`
}

// GetSystemStatusSnapshot collects row counts, database sizes and host stats.
// Query failures degrade the status instead of failing the request.
func (h *SystemHandlers) GetSystemStatusSnapshot(ctx context.Context) SystemStatusResponse {
	response := SystemStatusResponse{
		Status:        "healthy",
		Databases:     []DBInfo{},
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
	}

	count := func(db *database.DB, query string, args ...interface{}) int {
		var n int
		err := db.Conn().QueryRowContext(ctx, query, args...).Scan(&n)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Status query failed")
			response.Status = "degraded"
			response.Errors = append(response.Errors, err.Error())
		}
		return n
	}

	response.Users = count(h.oracleDB, "SELECT COUNT(*) FROM users")
	response.Expenses = count(h.oracleDB, "SELECT COUNT(*) FROM expenses")
	response.Budgets = count(h.oracleDB, "SELECT COUNT(*) FROM budgets")
	response.AuditRecords = count(h.oracleDB, "SELECT COUNT(*) FROM autonomous_actions")
	response.CacheEntries = count(h.cacheDB, "SELECT COUNT(*) FROM cache_entries WHERE expires_at > ?", time.Now().Unix())

	for _, db := range []*database.DB{h.oracleDB, h.cacheDB} {
		info := DBInfo{Name: db.Name(), Path: db.Path()}
		if stat, err := os.Stat(db.Path()); err == nil {
			info.SizeMB = float64(stat.Size()) / 1024 / 1024
		}
		response.Databases = append(response.Databases, info)
	}

	response.CPUPercent, response.MemoryPercent = h.statsFunc()
	return response
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.GetSystemStatusSnapshot(r.Context()))
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	response := JobsStatusResponse{Jobs: []scheduler.JobStatus{}}
	if h.jobs != nil {
		response.SchedulerEnabled = true
		response.Jobs = h.jobs.Jobs()
	}
	response.TotalJobs = len(response.Jobs)
	h.writeJSON(w, http.StatusOK, response)
}

// HandleRunJob handles POST /api/system/jobs/{name}/run.
// The job runs in the background; the response only confirms it was started.
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		http.Error(w, "Scheduler is disabled", http.StatusServiceUnavailable)
		return
	}
	if !h.hasJob(name) {
		http.Error(w, "Unknown job: "+name, http.StatusNotFound)
		return
	}

	go func() {
		if _, err := h.jobs.RunByName(name); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}

func (h *SystemHandlers) hasJob(name string) bool {
	for _, job := range h.jobs.Jobs() {
		if job.Name == name {
			return true
		}
	}
	return false
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
