package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/sse"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SSE event names.
const (
	EventNameAttendance = "attendance"
	EventNameLive       = "live"
)

// Config holds attendance service configuration
type Config struct {
	StandardDayMinutes int              // default: 480
	Now                func() time.Time // default: time.Now
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

type AttendanceServiceImpl struct {
	ledger     *Ledger
	calculator *WorkTimeCalculator
	repo       attendance.RecordRepository
	directory  attendance.EmployeeDirectory
	replicator *Replicator
	hub        *sse.Hub
	metrics    *metrics.Metrics
	config     Config

	namesMu sync.RWMutex
	names   map[string]string
}

// NewAttendanceService wires the ledger with its collaborators. replicator, hub, directory
// and m may be nil.
func NewAttendanceService(
	ledger *Ledger,
	calculator *WorkTimeCalculator,
	repo attendance.RecordRepository,
	directory attendance.EmployeeDirectory,
	replicator *Replicator,
	hub *sse.Hub,
	m *metrics.Metrics,
	cfg Config,
) *AttendanceServiceImpl {
	if cfg.StandardDayMinutes <= 0 {
		cfg.StandardDayMinutes = StandardDayMinutes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &AttendanceServiceImpl{
		ledger:     ledger,
		calculator: calculator,
		repo:       repo,
		directory:  directory,
		replicator: replicator,
		hub:        hub,
		metrics:    m,
		config:     cfg,
		names:      make(map[string]string),
	}
}

// Hydrate loads every stored record and the employee directory concurrently, then
// replaces the ledger content.
func (s *AttendanceServiceImpl) Hydrate(ctx context.Context) error {
	var (
		records []attendance.DailyRecord
		names   map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)

	if s.repo != nil {
		g.Go(func() error {
			var err error
			records, err = s.repo.List(gctx)
			if err != nil {
				return fmt.Errorf("failed to list daily records: %w", err)
			}
			return nil
		})
	}

	if s.directory != nil {
		g.Go(func() error {
			var err error
			names, err = s.directory.ListNames(gctx)
			if err != nil {
				return fmt.Errorf("failed to list employee names: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	n := s.ledger.Load(records)
	s.setNames(names)
	s.metrics.SetLedgerRecords(n)

	slog.Info("Attendance ledger hydrated", "records", n, "employees", len(names))
	return nil
}

// RefreshDirectory reloads employee display names.
func (s *AttendanceServiceImpl) RefreshDirectory(ctx context.Context) error {
	if s.directory == nil {
		return nil
	}
	names, err := s.directory.ListNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list employee names: %w", err)
	}
	s.setNames(names)
	return nil
}

func (s *AttendanceServiceImpl) setNames(names map[string]string) {
	if names == nil {
		return
	}
	s.namesMu.Lock()
	s.names = names
	s.namesMu.Unlock()
}

func (s *AttendanceServiceImpl) lookupName(employeeID string) string {
	s.namesMu.RLock()
	defer s.namesMu.RUnlock()
	return s.names[employeeID]
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
	return s.clock(ctx, req, attendance.EventClockIn)
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
	return s.clock(ctx, req, attendance.EventClockOut)
}

// StartBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
	return s.clock(ctx, req, attendance.EventBreakStart)
}

// EndBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
	return s.clock(ctx, req, attendance.EventBreakEnd)
}

func (s *AttendanceServiceImpl) clock(ctx context.Context, req attendance.ClockRequest, eventType attendance.EventType) (attendance.LiveStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.LiveStatusResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.LiveStatusResponse{}, fmt.Errorf("failed to generate event id: %w", err)
	}

	now := s.config.Now()
	event := attendance.ClockEvent{
		ID:        id.String(),
		Type:      eventType,
		Timestamp: now.UTC(),
		Device:    req.Device,
		Location:  req.Location,
	}

	// enqueued under the ledger lock so snapshots of one record are replicated in order
	record := s.ledger.Append(req.EmployeeID, event, func(record attendance.DailyRecord) {
		if s.replicator != nil {
			s.replicator.EnqueueUpsert(record)
		}
	})

	s.metrics.EventAppended(string(eventType))
	s.metrics.SetLedgerRecords(s.ledger.Len())

	slog.InfoContext(ctx, "Clock event appended",
		"employee_id", req.EmployeeID,
		"record_id", record.ID,
		"type", eventType,
	)

	status := s.liveStatus(record, now)
	s.publish(req.EmployeeID, EventNameAttendance, status)
	return status, nil
}

// GetLiveStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetLiveStatus(ctx context.Context, employeeID string) (attendance.LiveStatusResponse, error) {
	if employeeID == "" {
		return attendance.LiveStatusResponse{}, attendance.ErrEmployeeRequired
	}

	now := s.config.Now()
	today := attendance.CivilDate(now, s.ledger.Location())

	record, ok := s.ledger.Find(employeeID, today)
	if !ok {
		return attendance.LiveStatusResponse{
			EmployeeID:      employeeID,
			Date:            today.Format(attendance.DateLayout),
			State:           attendance.StateOff,
			LiveWorkedHours: attendance.MinutesToHours(0),
			AsOf:            now.UTC().Format(time.RFC3339),
		}, nil
	}

	return s.liveStatus(record, now), nil
}

func (s *AttendanceServiceImpl) liveStatus(record attendance.DailyRecord, now time.Time) attendance.LiveStatusResponse {
	computed := s.calculator.ComputeDailyRecord(record)
	live := LiveAdjustedMinutes(computed, now, s.ledger.Location())
	recordResp := mapRecordToResponse(computed)

	status := attendance.LiveStatusResponse{
		EmployeeID:        record.EmployeeID,
		Date:              record.DateKey(),
		State:             LiveStateOf(record),
		LiveWorkedMinutes: live,
		LiveWorkedHours:   attendance.MinutesToHours(live),
		Record:            &recordResp,
		AsOf:              now.UTC().Format(time.RFC3339),
	}
	if last, ok := LastEvent(record); ok {
		lastResp := mapEventToResponse(last)
		status.LastEvent = &lastResp
	}
	return status
}

// ListRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListDailyRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListDailyRecordResponse{}, err
	}

	computed := s.calculator.ComputeAll(s.ledger.Snapshot(filter.Matches))

	records := make([]attendance.DailyRecordResponse, 0, len(computed))
	for _, c := range computed {
		records = append(records, mapRecordToResponse(c))
	}

	return attendance.ListDailyRecordResponse{
		TotalCount: len(records),
		Records:    records,
	}, nil
}

// GetRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecord(ctx context.Context, id string) (attendance.DailyRecordResponse, error) {
	record, ok := s.ledger.Get(id)
	if !ok {
		return attendance.DailyRecordResponse{}, attendance.ErrRecordNotFound
	}
	return mapRecordToResponse(s.calculator.ComputeDailyRecord(record)), nil
}

// DeleteEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteEvent(ctx context.Context, req attendance.DeleteEventRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	updated, removed, hit := s.ledger.DeleteEvent(req.RecordID, req.EventID, func(updated attendance.DailyRecord, removed bool) {
		if s.replicator == nil {
			return
		}
		if removed {
			s.replicator.EnqueueDelete(updated.ID)
			return
		}
		s.replicator.EnqueueUpsert(updated)
	})
	if !hit {
		if _, ok := s.ledger.Get(req.RecordID); !ok {
			return attendance.ErrRecordNotFound
		}
		return attendance.ErrEventNotFound
	}

	s.metrics.EventDeleted()
	s.metrics.SetLedgerRecords(s.ledger.Len())

	if removed {
		s.metrics.RecordDeleted()
	}

	slog.InfoContext(ctx, "Clock event deleted",
		"record_id", req.RecordID,
		"event_id", req.EventID,
		"record_removed", removed,
	)

	s.publish(updated.EmployeeID, EventNameAttendance, s.liveStatus(updated, s.config.Now()))
	return nil
}

// DeleteRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	var record attendance.DailyRecord
	found := s.ledger.DeleteRecord(id, func(removed attendance.DailyRecord) {
		record = removed
		if s.replicator != nil {
			s.replicator.EnqueueDelete(removed.ID)
		}
	})
	if !found {
		return attendance.ErrRecordNotFound
	}

	s.metrics.RecordDeleted()
	s.metrics.SetLedgerRecords(s.ledger.Len())

	slog.InfoContext(ctx, "Daily record deleted", "record_id", id)

	s.publish(record.EmployeeID, EventNameAttendance, attendance.LiveStatusResponse{
		EmployeeID:      record.EmployeeID,
		Date:            record.DateKey(),
		State:           attendance.StateOff,
		LiveWorkedHours: attendance.MinutesToHours(0),
		AsOf:            s.config.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, filter attendance.RecordFilter) (attendance.SummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	computed := s.calculator.ComputeAll(s.ledger.Snapshot(filter.Matches))
	aggregations := AggregateWorkMinutes(computed, s.lookupName)

	std := s.config.StandardDayMinutes
	employees := make([]attendance.EmployeeSummaryResponse, 0, len(aggregations))
	for _, agg := range aggregations {
		summary := attendance.EmployeeSummaryResponse{
			EmployeeID:   agg.EmployeeID,
			EmployeeName: agg.EmployeeName,
			Daily:        make([]attendance.PeriodTotalResponse, 0, len(agg.Daily)),
			Monthly:      make([]attendance.PeriodTotalResponse, 0, len(agg.Monthly)),
		}

		for _, d := range agg.Daily {
			summary.Daily = append(summary.Daily, mapPeriodToResponse(d, SplitMinutes(d.Minutes, 1, std)))
		}
		for _, m := range agg.Monthly {
			days := CountDays(agg.Daily, m.Key)
			summary.Monthly = append(summary.Monthly, mapPeriodToResponse(m, SplitMinutes(m.Minutes, days, std)))
		}

		yearly := YearlyTotals(agg.Monthly)
		summary.Yearly = make([]attendance.PeriodTotalResponse, 0, len(yearly))
		for _, y := range yearly {
			days := CountDays(agg.Daily, y.Key)
			summary.Yearly = append(summary.Yearly, mapPeriodToResponse(y, SplitMinutes(y.Minutes, days, std)))
		}

		employees = append(employees, summary)
	}

	return attendance.SummaryResponse{
		StandardDayMinutes: std,
		Employees:          employees,
	}, nil
}

// ExportRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportRecords(ctx context.Context, filter attendance.RecordFilter, w io.Writer) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	computed := s.calculator.ComputeAll(s.ledger.Snapshot(filter.Matches))
	if err := WriteCSV(w, computed, s.lookupName, s.ledger.Location()); err != nil {
		return fmt.Errorf("failed to write csv export: %w", err)
	}
	return nil
}

// BroadcastLive pushes the live-adjusted total of every employee currently working
// to their stream subscribers.
func (s *AttendanceServiceImpl) BroadcastLive(ctx context.Context) error {
	if s.hub == nil {
		return nil
	}
	s.metrics.SetLiveSubscribers(s.hub.TotalSubscribers())
	if s.hub.TotalSubscribers() == 0 {
		return nil
	}

	now := s.config.Now()
	today := attendance.CivilDate(now, s.ledger.Location())
	records := s.ledger.Snapshot(func(r attendance.DailyRecord) bool {
		return r.Date.Equal(today)
	})

	watchAll := s.hub.SubscriberCount(sse.TopicAll) > 0
	sent := 0
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !watchAll && s.hub.SubscriberCount(r.EmployeeID) == 0 {
			continue
		}
		if LiveStateOf(r) != attendance.StateWorking {
			continue
		}
		s.publish(r.EmployeeID, EventNameLive, s.liveStatus(r, now))
		sent++
	}

	slog.Debug("Live minutes broadcast", "sent", sent)
	return nil
}

func (s *AttendanceServiceImpl) publish(employeeID, name string, status attendance.LiveStatusResponse) {
	if s.hub == nil {
		return
	}
	s.hub.PublishWithFanout(employeeID, sse.Event{
		Event: name,
		Data:  status,
	})
}

func mapEventToResponse(e attendance.ClockEvent) attendance.ClockEventResponse {
	return attendance.ClockEventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Device:    e.Device,
		Location:  e.Location,
	}
}

func mapRecordToResponse(c attendance.ComputedDailyRecord) attendance.DailyRecordResponse {
	events := make([]attendance.ClockEventResponse, 0, len(c.Events))
	for _, e := range SortedEvents(c.Events) {
		events = append(events, mapEventToResponse(e))
	}

	return attendance.DailyRecordResponse{
		ID:                     c.ID,
		EmployeeID:             c.EmployeeID,
		Date:                   c.DateKey(),
		Events:                 events,
		WorkedMinutes:          c.WorkedMinutes,
		WorkedHours:            attendance.MinutesToHours(c.WorkedMinutes),
		BreakMinutes:           c.BreakMinutes,
		RecordedBreakMinutes:   c.RecordedBreakMinutes,
		ScheduledBreakMinutes:  c.ScheduledBreakMinutes,
		PendingBreakMinutes:    c.PendingBreakMinutes,
		IgnoredBreakMinutes:    c.IgnoredBreakMinutes,
		AutomaticBreakDetected: c.AutomaticBreakDetected,
	}
}

func mapPeriodToResponse(p attendance.PeriodTotal, split attendance.PeriodSplit) attendance.PeriodTotalResponse {
	return attendance.PeriodTotalResponse{
		Key:             p.Key,
		Label:           p.Label,
		Minutes:         p.Minutes,
		Hours:           attendance.MinutesToHours(p.Minutes),
		RegularMinutes:  split.RegularMinutes,
		OvertimeMinutes: split.OvertimeMinutes,
		RecordedDays:    split.RecordedDays,
	}
}
