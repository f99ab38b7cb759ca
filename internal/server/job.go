// Package server runs optimization jobs behind a local HTTP API: a
// job carries a model definition, a worker drives the same pipeline as
// the command line runner, and the finished report is served back.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState represents the current state of a job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// JobConfig holds the configuration of an optimization job.
type JobConfig struct {
	// Profile is the line profile kind.
	Profile string `json:"profile"`
	// Model is the model definition text.
	Model string `json:"model"`

	RandomSeed     uint32  `json:"randomSeed"`
	ParentNumber   int     `json:"parentNumber"`
	PopulationSize int     `json:"populationSize"`
	GlobalStepSize float64 `json:"globalStepSize"`
	AccuracyGoal   float64 `json:"accuracyGoal"`
	StopGeneration uint64  `json:"stopGeneration"`
}

// Job represents an optimization job.
type Job struct {
	ID         string     `json:"id"`
	State      JobState   `json:"state"`
	Config     JobConfig  `json:"config"`
	Fitness    float64    `json:"fitness"`
	Generation uint64     `json:"generation"`
	Optimized  bool       `json:"optimized"`
	Underflow  bool       `json:"underflow"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Error      string     `json:"error,omitempty"`

	// Report is the rendered HTML report of a completed job. It is
	// not serialized with the job status.
	Report string `json:"-"`
}

// JobManager manages the lifecycle of jobs.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates a new JobManager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// CreateJob creates a new job with the given configuration.
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// GetJob retrieves a copy of a job by ID.
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// ListJobs returns copies of all jobs.
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function.
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}
