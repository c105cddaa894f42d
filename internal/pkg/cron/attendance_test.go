package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLiveService struct {
	broadcasts   int
	refreshes    int
	refreshError error
}

func (f *fakeLiveService) BroadcastLive(ctx context.Context) error {
	f.broadcasts++
	return nil
}

func (f *fakeLiveService) RefreshDirectory(ctx context.Context) error {
	f.refreshes++
	return f.refreshError
}

func TestAttendanceJobs_RegisterJobs(t *testing.T) {
	svc := &fakeLiveService{}
	s := NewScheduler()
	NewAttendanceJobs(svc, time.Minute, 15*time.Minute).RegisterJobs(s)

	assert.Equal(t, []string{"broadcast_live_minutes", "refresh_employee_directory"}, s.Jobs())

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, svc.broadcasts)
	assert.Equal(t, 1, svc.refreshes)
}

func TestAttendanceJobs_WrapsErrors(t *testing.T) {
	errDirectory := errors.New("directory unavailable")
	svc := &fakeLiveService{refreshError: errDirectory}
	jobs := NewAttendanceJobs(svc, time.Minute, time.Minute)

	err := jobs.RefreshEmployeeDirectory(context.Background())
	require.ErrorIs(t, err, errDirectory)
	assert.Contains(t, err.Error(), "failed to refresh employee directory")
}
