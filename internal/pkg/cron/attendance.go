package cron

import (
	"context"
	"fmt"
	"time"
)

// LiveService is the part of the attendance service driven by the scheduler.
type LiveService interface {
	BroadcastLive(ctx context.Context) error
	RefreshDirectory(ctx context.Context) error
}

type AttendanceJobs struct {
	service           LiveService
	liveInterval      time.Duration
	directoryInterval time.Duration
}

func NewAttendanceJobs(service LiveService, liveInterval, directoryInterval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		service:           service,
		liveInterval:      liveInterval,
		directoryInterval: directoryInterval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("broadcast_live_minutes", j.liveInterval, j.BroadcastLiveMinutes)
	scheduler.AddJob("refresh_employee_directory", j.directoryInterval, j.RefreshEmployeeDirectory)
}

// BroadcastLiveMinutes pushes the running total of employees inside an open segment.
func (j *AttendanceJobs) BroadcastLiveMinutes(ctx context.Context) error {
	if err := j.service.BroadcastLive(ctx); err != nil {
		return fmt.Errorf("failed to broadcast live minutes: %w", err)
	}
	return nil
}

// RefreshEmployeeDirectory reloads the display names used by summaries and exports.
func (j *AttendanceJobs) RefreshEmployeeDirectory(ctx context.Context) error {
	if err := j.service.RefreshDirectory(ctx); err != nil {
		return fmt.Errorf("failed to refresh employee directory: %w", err)
	}
	return nil
}
