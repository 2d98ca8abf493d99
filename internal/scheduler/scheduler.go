package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusScheduled JobStatus = "scheduled"
)

// JobInfo contains information about a scheduled job.
type JobInfo struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     JobStatus  `json:"status"`
	Schedule   string     `json:"schedule"`
	LastRun    time.Time  `json:"lastRun"`
	NextRun    time.Time  `json:"nextRun"`
	RunCount   int        `json:"runCount"`
	ErrorCount int        `json:"errorCount"`
	LastError  string     `json:"lastError,omitempty"`
	GocronJob  gocron.Job `json:"-"`
}

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

// Scheduler runs background jobs on cron schedules.
type Scheduler struct {
	gocron gocron.Scheduler
	mu     sync.RWMutex
	jobs   map[string]*JobInfo
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler. Jobs receive a context that is cancelled by Stop.
func New(ctx context.Context) (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Scheduler{
		gocron: gocronScheduler,
		jobs:   make(map[string]*JobInfo),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	log.Info("Starting job scheduler")
	s.gocron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, jobInfo := range s.jobs {
		if nextRun, err := jobInfo.GocronJob.NextRun(); err == nil {
			jobInfo.NextRun = nextRun
			log.Debug("Next run time for job", "id", id, "nextRun", nextRun)
		}
	}
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() error {
	log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddCronJob schedules jobFunc on a five field cron expression.
// Runs never overlap; a run that is due while the previous one is busy is rescheduled.
func (s *Scheduler) AddCronJob(id, name, schedule string, jobFunc JobFunc) error {
	jobInfo := &JobInfo{
		ID:       id,
		Name:     name,
		Status:   JobStatusScheduled,
		Schedule: schedule,
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(s.wrapJobFunc(jobInfo, jobFunc)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	jobInfo.GocronJob = job

	s.mu.Lock()
	s.jobs[id] = jobInfo
	s.mu.Unlock()

	log.Info("Added job to scheduler", "id", id, "name", name, "schedule", schedule)
	return nil
}

// RunJobNow manually triggers a job to run immediately.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.RLock()
	jobInfo, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	log.Info("Manually triggering job", "id", id, "name", jobInfo.Name)
	if err := jobInfo.GocronJob.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// GetJob returns a copy of the information about a specific job.
func (s *Scheduler) GetJob(id string) (JobInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[id]
	if !exists {
		return JobInfo{}, false
	}
	return *job, true
}

// wrapJobFunc wraps a job function to update job statistics.
func (s *Scheduler) wrapJobFunc(jobInfo *JobInfo, jobFunc JobFunc) func() {
	return func() {
		s.mu.Lock()
		log.Info("Starting job", "id", jobInfo.ID, "name", jobInfo.Name)
		jobInfo.Status = JobStatusRunning
		jobInfo.LastRun = time.Now()
		jobInfo.RunCount++
		s.mu.Unlock()

		err := jobFunc(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if jobInfo.GocronJob != nil {
			if nextRun, nextErr := jobInfo.GocronJob.NextRun(); nextErr == nil {
				jobInfo.NextRun = nextRun
			}
		}
		if err != nil {
			log.Error("Job failed", "id", jobInfo.ID, "name", jobInfo.Name, "error", err)
			jobInfo.Status = JobStatusFailed
			jobInfo.ErrorCount++
			jobInfo.LastError = err.Error()
			return
		}
		log.Info("Job completed successfully", "id", jobInfo.ID, "name", jobInfo.Name)
		jobInfo.Status = JobStatusCompleted
		jobInfo.LastError = ""
	}
}
