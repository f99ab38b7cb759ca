package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/especia/especia/internal/fit"
	"github.com/especia/especia/internal/model"
	"github.com/especia/especia/internal/profiles"
)

// runJob executes an optimization job in the background.
func runJob(jm *JobManager, jobID string) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		slog.Error("Job vanished before start", "job_id", jobID)
		return
	}

	jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning })
	slog.Info("Starting job", "job_id", jobID, "profile", job.Config.Profile)

	factory, ok := profiles.ForName(job.Config.Profile)
	if !ok {
		markJobFailed(jm, jobID, fmt.Errorf("unknown profile %q", job.Config.Profile))
		return
	}

	m, err := model.Read(strings.NewReader(job.Config.Model), factory, nil)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to read model: %w", err))
		return
	}

	result, runErr := fit.Run(m, fit.Params{
		RandomSeed:     job.Config.RandomSeed,
		ParentNumber:   job.Config.ParentNumber,
		PopulationSize: job.Config.PopulationSize,
		GlobalStepSize: job.Config.GlobalStepSize,
		AccuracyGoal:   job.Config.AccuracyGoal,
		StopGeneration: job.Config.StopGeneration,
	}, nil)
	if result == nil {
		markJobFailed(jm, jobID, runErr)
		return
	}

	var report strings.Builder
	m.WriteModelBlock(&report)
	if err := m.WriteReport(&report); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to render report: %w", err))
		return
	}

	end := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Fitness = result.Fitness
		j.Generation = result.Generation
		j.Optimized = result.Optimized
		j.Underflow = result.Underflow
		j.Report = report.String()
		j.EndTime = &end
		if runErr != nil {
			j.State = StateFailed
			j.Error = runErr.Error()
		}
	})

	slog.Info("Job finished",
		"job_id", jobID,
		"fitness", result.Fitness,
		"generation", result.Generation,
		"optimized", result.Optimized,
	)
}

func markJobFailed(jm *JobManager, jobID string, err error) {
	end := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &end
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}
