// Package scheduler runs the background refresh cycle: pulling fresh season
// data from the stats provider, rebuilding the scouting engine and exporting
// the standing reports.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/config"
	"github.com/futscout/scout-engine/internal/ingest"
	"github.com/futscout/scout-engine/internal/scout"
)

const exportSchedule = "0 5 * * *" // an hour after the default refresh

// JobInfo represents information about a scheduled job
type JobInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Schedule   string        `json:"schedule"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	Status     string        `json:"status"`
	RunCount   int           `json:"run_count"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Duration   time.Duration `json:"duration"`
	IsEnabled  bool          `json:"is_enabled"`
}

// RefreshService schedules and tracks the recurring refresh jobs.
type RefreshService struct {
	engine    *scout.Engine
	sync      *ingest.SyncService // nil when upstream sync is disabled
	cfg       *config.Config
	logger    *logrus.Logger
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	jobs      map[string]JobInfo
	entries   map[string]cron.EntryID
	isRunning bool
}

// NewRefreshService creates the refresh scheduler. syncService may be nil, in
// which case the refresh job rebuilds from stored data only.
func NewRefreshService(cfg *config.Config, engine *scout.Engine, syncService *ingest.SyncService, logger *logrus.Logger) *RefreshService {
	ctx, cancel := context.WithCancel(context.Background())

	cronLogger := cron.VerbosePrintfLogger(logger)
	c := cron.New(cron.WithLogger(cronLogger))

	return &RefreshService{
		engine:  engine,
		sync:    syncService,
		cfg:     cfg,
		logger:  logger,
		cron:    c,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]JobInfo),
		entries: make(map[string]cron.EntryID),
	}
}

// Start schedules the jobs and starts the cron scheduler.
func (rs *RefreshService) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.isRunning {
		return fmt.Errorf("refresh service is already running")
	}

	rs.logger.WithField("component", "scheduler").Info("Starting refresh service with scheduled jobs")

	if err := rs.scheduleJobs(); err != nil {
		return fmt.Errorf("failed to schedule jobs: %w", err)
	}

	rs.cron.Start()
	rs.isRunning = true

	rs.logger.WithField("component", "scheduler").Info("Refresh service started successfully")
	return nil
}

// scheduleJobs sets up all scheduled jobs
func (rs *RefreshService) scheduleJobs() error {
	if err := rs.addJob("daily_refresh", rs.cfg.RefreshSchedule, "Season data refresh", rs.refreshData); err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	if err := rs.addJob("results_export", exportSchedule, "Analysis results export", rs.exportResults); err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	return nil
}

// addJob adds a new scheduled job
func (rs *RefreshService) addJob(id, schedule, name string, jobFunc func() error) error {
	entryID, err := rs.cron.AddFunc(schedule, func() {
		rs.runJob(id, name, jobFunc)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", id, err)
	}

	rs.entries[id] = entryID
	rs.jobs[id] = JobInfo{
		ID:        id,
		Name:      name,
		Schedule:  schedule,
		NextRun:   rs.cron.Entry(entryID).Next,
		Status:    "scheduled",
		IsEnabled: true,
	}

	rs.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    id,
		"job_name":  name,
		"schedule":  schedule,
	}).Info("Scheduled job added")

	return nil
}

// runJob executes a job with error handling and metrics
func (rs *RefreshService) runJob(id, name string, jobFunc func() error) {
	rs.mu.Lock()
	job, exists := rs.jobs[id]
	if !exists || !job.IsEnabled {
		rs.mu.Unlock()
		return
	}

	job.Status = "running"
	job.LastRun = time.Now()
	job.RunCount++
	rs.jobs[id] = job
	rs.mu.Unlock()

	logger := rs.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    id,
		"job_name":  name,
		"run_count": job.RunCount,
	})

	logger.Info("Starting scheduled job")
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Job panicked")
			rs.updateJobStatus(id, "failed", fmt.Sprintf("panic: %v", r), time.Since(startTime))
		}
	}()

	if err := jobFunc(); err != nil {
		duration := time.Since(startTime)
		logger.WithError(err).WithField("duration", duration).Error("Job failed")
		rs.updateJobStatus(id, "failed", err.Error(), duration)
		return
	}

	duration := time.Since(startTime)
	logger.WithField("duration", duration).Info("Job completed successfully")
	rs.updateJobStatus(id, "completed", "", duration)
}

// updateJobStatus updates the status of a job
func (rs *RefreshService) updateJobStatus(id, status, errorMsg string, duration time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	job, exists := rs.jobs[id]
	if !exists {
		return
	}

	job.Status = status
	job.Duration = duration

	if errorMsg != "" {
		job.ErrorCount++
		job.LastError = errorMsg
	}

	if entryID, ok := rs.entries[id]; ok {
		job.NextRun = rs.cron.Entry(entryID).Next
	}

	rs.jobs[id] = job
}

// refreshData pulls fresh season data when sync is configured, then rebuilds
// the engine from the store.
func (rs *RefreshService) refreshData() error {
	ctx, cancel := context.WithTimeout(rs.ctx, 30*time.Minute)
	defer cancel()

	if rs.sync != nil {
		summary, err := rs.sync.SyncSeasons(ctx, rs.cfg.ProfileSeasons)
		if err != nil {
			return fmt.Errorf("season sync: %w", err)
		}
		rs.logger.WithFields(logrus.Fields{
			"component": "scheduler",
			"seasons":   summary.Seasons,
			"players":   summary.Players,
			"teams":     summary.Teams,
			"matches":   summary.Matches,
		}).Info("Upstream sync finished")
	}

	if err := rs.engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("engine rebuild: %w", err)
	}
	return nil
}

// exportResults writes the standing reports to the export directory.
func (rs *RefreshService) exportResults() error {
	if !rs.engine.Ready() {
		return fmt.Errorf("engine not built yet")
	}

	paths, err := rs.engine.ExportResults()
	if err != nil {
		return err
	}

	rs.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"files":     len(paths),
	}).Info("Scheduled export finished")
	return nil
}

// GetJobs returns information about all scheduled jobs
func (rs *RefreshService) GetJobs() map[string]JobInfo {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	jobs := make(map[string]JobInfo)
	for k, v := range rs.jobs {
		jobs[k] = v
	}
	return jobs
}

// EnableJob enables a scheduled job
func (rs *RefreshService) EnableJob(id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	job, exists := rs.jobs[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	job.IsEnabled = true
	rs.jobs[id] = job

	rs.logger.WithField("job_id", id).Info("Job enabled")
	return nil
}

// DisableJob disables a scheduled job
func (rs *RefreshService) DisableJob(id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	job, exists := rs.jobs[id]
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	job.IsEnabled = false
	rs.jobs[id] = job

	rs.logger.WithField("job_id", id).Info("Job disabled")
	return nil
}

// TriggerJob manually triggers a job outside its schedule.
func (rs *RefreshService) TriggerJob(id string) error {
	rs.mu.RLock()
	job, exists := rs.jobs[id]
	rs.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	jobFunctions := map[string]func() error{
		"daily_refresh":  rs.refreshData,
		"results_export": rs.exportResults,
	}

	jobFunc, exists := jobFunctions[id]
	if !exists {
		return fmt.Errorf("job function not found for %s", id)
	}

	rs.logger.WithField("job_id", id).Info("Manually triggering job")
	go rs.runJob(id, job.Name, jobFunc)

	return nil
}

// Stop stops the scheduler, waiting briefly for running jobs.
func (rs *RefreshService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.isRunning {
		return nil
	}

	rs.logger.WithField("component", "scheduler").Info("Stopping refresh service")

	ctx := rs.cron.Stop()
	select {
	case <-ctx.Done():
		rs.logger.WithField("component", "scheduler").Info("Cron scheduler stopped gracefully")
	case <-time.After(5 * time.Second):
		rs.logger.WithField("component", "scheduler").Warn("Cron scheduler stop timed out")
	}

	rs.cancel()
	rs.isRunning = false

	rs.logger.WithField("component", "scheduler").Info("Refresh service stopped")
	return nil
}
