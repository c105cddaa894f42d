package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktime-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetEmployeeToday(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	DeleteEvent(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
	keepalive         time.Duration
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
		keepalive:         30 * time.Second,
	}
}

// errInvalidBody marks a clock request body that is not valid JSON.
var errInvalidBody = errors.New("invalid request body")

// decodeClockRequest reads the optional JSON body and sets the employee from the token.
func decodeClockRequest(r *http.Request) (attendance.ClockRequest, error) {
	var req attendance.ClockRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
	}
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		return req, err
	}
	req.EmployeeID = employeeID
	return req, nil
}

func (h *attendanceHandlerImpl) clock(w http.ResponseWriter, r *http.Request, action func(r *http.Request, req attendance.ClockRequest) (attendance.LiveStatusResponse, error), message string) {
	req, err := decodeClockRequest(r)
	if err != nil {
		if errors.Is(err, errInvalidBody) {
			slog.Debug("Rejected clock request body", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		response.HandleError(w, err)
		return
	}

	result, err := action(r, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, message, result)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, func(r *http.Request, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
		return h.attendanceService.ClockIn(r.Context(), req)
	}, "Clocked in")
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, func(r *http.Request, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
		return h.attendanceService.ClockOut(r.Context(), req)
	}, "Clocked out")
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, func(r *http.Request, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
		return h.attendanceService.StartBreak(r.Context(), req)
	}, "Break started")
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, func(r *http.Request, req attendance.ClockRequest) (attendance.LiveStatusResponse, error) {
		return h.attendanceService.EndBreak(r.Context(), req)
	}, "Break ended")
}

// GetToday returns the live status of the authenticated employee.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetLiveStatus(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeeToday returns the live status of any employee (manager view).
func (h *attendanceHandlerImpl) GetEmployeeToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetLiveStatus(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyAttendance lists the records of the authenticated employee.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := parseRecordFilter(r)
	filter.EmployeeID = &employeeID

	result, err := h.attendanceService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListRecords(r.Context(), parseRecordFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.DeleteRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted", nil)
}

// DeleteEvent implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	req := attendance.DeleteEventRequest{
		RecordID: chi.URLParam(r, "id"),
		EventID:  chi.URLParam(r, "eventID"),
	}

	if err := h.attendanceService.DeleteEvent(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock event deleted", nil)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetSummary(r.Context(), parseRecordFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export streams the filtered records as a CSV attachment.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	filter := parseRecordFilter(r)
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(filter)))

	if err := h.attendanceService.ExportRecords(r.Context(), filter, w); err != nil {
		// headers are already sent once the first row is written
		slog.Error("Failed to export attendance records", "error", err)
		return
	}
}

func exportFileName(filter attendance.RecordFilter) string {
	name := "attendance"
	if filter.StartDate != nil && *filter.StartDate != "" {
		name += "_" + *filter.StartDate
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		name += "_" + *filter.EndDate
	}
	if filter.Month != nil && *filter.Month != "" {
		name += "_" + *filter.Month
	}
	return name + ".csv"
}

// StreamToken issues a short-lived token for the SSE endpoint
func (h *attendanceHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(employeeID, middleware.RoleFromContext(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

var streamScopes = []string{"own", "all"}

// Stream handles the SSE connection for live attendance updates
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	employeeID, role, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope != "" && !validator.IsInSlice(scope, streamScopes) {
		response.BadRequest(w, "scope must be 'own' or 'all'", nil)
		return
	}

	topic := employeeID
	if scope == "all" {
		if !role.IsManager() {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}
		topic = sse.TopicAll
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"employee_id\":%q,\"scope\":%q}\n\n", employeeID, topic)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// parseRecordFilter reads employee_id, start_date, end_date and month from the query string
func parseRecordFilter(r *http.Request) attendance.RecordFilter {
	var filter attendance.RecordFilter
	query := r.URL.Query()

	if v := query.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := query.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := query.Get("month"); v != "" {
		filter.Month = &v
	}
	return filter
}
