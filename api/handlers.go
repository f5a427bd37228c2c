/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave-request engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Leave:
    POST   /api/leave/submit          Submit a leave application
    GET    /api/leave/hours           Estimate total leave hours
    GET    /api/leave/affectedcourses Preview affected courses per date
    GET    /api/leave/records         Term-scoped or full history listing

SUBMISSION CONTENT TYPES:
  /api/leave/submit accepts either application/json or
  multipart/form-data. The multipart form carries the same fields plus
  an optional "certificate" file (doctor's note, competition notice)
  stored with the primary record.

REQUEST FLOW:
  1. Parse HTTP request (JSON or multipart)
  2. Validate input (go-playground/validator tags on the DTO)
  3. Call domain logic (leave.Service)
  4. Serialize response
  5. Map domain errors to HTTP status

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid window, unknown student
  - 502: Course directory fetch failure (upstream fault)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - leave/service.go: The operations these handlers front
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/studentaffairs/leave-engine/engine"
	"github.com/studentaffairs/leave-engine/leave"
)

const dateLayout = "2006-01-02"

// maxCertificateBytes caps uploaded certificate files.
const maxCertificateBytes = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *leave.Service
	validate *validator.Validate
}

// NewHandler creates a new handler over the given service.
func NewHandler(service *leave.Service) *Handler {
	return &Handler{
		Service:  service,
		validate: validator.New(),
	}
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// SubmitLeave submits a leave application. Accepts JSON or multipart
// form data; the latter may attach a certificate file.
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var (
		req         SubmitLeaveRequest
		certificate []byte
	)

	if isMultipart(r) {
		var err error
		req, certificate, err = parseMultipartSubmit(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	startDate, endDate, ok := parseDates(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	record := &leave.LeaveRecord{
		StudentID:   req.StudentID,
		StartDate:   startDate,
		EndDate:     endDate,
		StartPeriod: req.StartPeriod,
		EndPeriod:   req.EndPeriod,
		LeaveType:   req.LeaveType,
		Reason:      req.Reason,
		PhoneNumber: req.PhoneNumber,
		Certificate: certificate,
	}

	result, err := h.Service.Submit(r.Context(), record)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitLeaveResponse{
		LeaveID:         result.LeaveID,
		AcademicYear:    result.Term.Year,
		Semester:        result.Term.Semester,
		Hours:           result.Hours,
		AffectedCourses: result.AffectedCourses,
		Progress:        string(leave.ProgressStudentSubmitted),
	})
}

// EstimateHours returns the total leave hours for a window without
// persisting anything.
func (h *Handler) EstimateHours(w http.ResponseWriter, r *http.Request) {
	studentID, window, ok := parseWindowQuery(w, r)
	if !ok {
		return
	}

	hours, err := h.Service.ComputeHours(r.Context(), studentID, window)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, HoursDTO{Hours: hours})
}

// PreviewAffectedCourses returns the per-date affected courses of a
// would-be submission.
func (h *Handler) PreviewAffectedCourses(w http.ResponseWriter, r *http.Request) {
	studentID, window, ok := parseWindowQuery(w, r)
	if !ok {
		return
	}

	preview, err := h.Service.Preview(r.Context(), studentID, window)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := PreviewDTO{
		AcademicYear: preview.Term.Year,
		Semester:     preview.Term.Semester,
	}
	for _, day := range preview.Days {
		dayDTO := DayPreviewDTO{
			Date:    day.Date.Format(dateLayout),
			Weekday: day.Weekday,
		}
		for _, c := range day.Courses {
			dayDTO.Courses = append(dayDTO.Courses, CoursePreviewDTO{
				CourseID:   c.CourseID,
				CourseName: c.CourseName,
				Periods:    c.Periods,
			})
			dto.Hours += len(c.Periods)
		}
		dto.Days = append(dto.Days, dayDTO)
	}

	writeJSON(w, http.StatusOK, dto)
}

// ListRecords lists a student's primary leave records. With academic_year
// and semester it returns that one term; without, the full per-term
// history from enrollment.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required", nil)
		return
	}

	yearStr := r.URL.Query().Get("academic_year")
	semStr := r.URL.Query().Get("semester")

	// Both or neither: a term is only addressable as a pair.
	if (yearStr == "") != (semStr == "") {
		writeError(w, http.StatusBadRequest, "academic_year and semester must be provided together", nil)
		return
	}

	if yearStr == "" {
		byTerm, err := h.Service.RecordsByTerm(r.Context(), studentID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		dtos := make([]TermRecordsDTO, len(byTerm))
		for i, tr := range byTerm {
			dtos[i] = TermRecordsDTO{
				AcademicYear: tr.Term.Year,
				Semester:     tr.Term.Semester,
				Records:      toLeaveRecordDTOs(tr.Records),
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"terms": dtos})
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid academic_year", err)
		return
	}
	semester, err := strconv.Atoi(semStr)
	if err != nil || (semester != 1 && semester != 2) {
		writeError(w, http.StatusBadRequest, "Invalid semester (must be 1 or 2)", err)
		return
	}

	records, err := h.Service.RecordsForTerm(r.Context(), studentID, engine.Term{Year: year, Semester: semester})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"records": toLeaveRecordDTOs(records)})
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

func parseMultipartSubmit(r *http.Request) (SubmitLeaveRequest, []byte, error) {
	if err := r.ParseMultipartForm(maxCertificateBytes); err != nil {
		return SubmitLeaveRequest{}, nil, err
	}

	req := SubmitLeaveRequest{
		StudentID:   r.FormValue("student_id"),
		StartDate:   r.FormValue("start_date"),
		EndDate:     r.FormValue("end_date"),
		LeaveType:   r.FormValue("leave_type"),
		Reason:      r.FormValue("reason"),
		PhoneNumber: r.FormValue("phone_number"),
	}
	req.StartPeriod, _ = strconv.Atoi(r.FormValue("start_period"))
	req.EndPeriod, _ = strconv.Atoi(r.FormValue("end_period"))

	file, _, err := r.FormFile("certificate")
	if err == http.ErrMissingFile {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, err
	}
	defer file.Close()

	certificate, err := io.ReadAll(io.LimitReader(file, maxCertificateBytes))
	if err != nil {
		return req, nil, err
	}
	return req, certificate, nil
}

// parseWindowQuery reads the window parameters shared by the estimate and
// preview endpoints. Writes the error response itself on failure.
func parseWindowQuery(w http.ResponseWriter, r *http.Request) (string, engine.Window, bool) {
	q := r.URL.Query()

	studentID := q.Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required", nil)
		return "", engine.Window{}, false
	}

	startDate, endDate, ok := parseDates(w, q.Get("start_date"), q.Get("end_date"))
	if !ok {
		return "", engine.Window{}, false
	}

	startPeriod, err := strconv.Atoi(q.Get("start_period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_period", err)
		return "", engine.Window{}, false
	}

	endPeriod := 0
	if s := q.Get("end_period"); s != "" {
		if endPeriod, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_period", err)
			return "", engine.Window{}, false
		}
	}

	return studentID, engine.Window{
		Start:       startDate,
		End:         endDate,
		StartPeriod: startPeriod,
		EndPeriod:   endPeriod,
	}, true
}

func parseDates(w http.ResponseWriter, startStr, endStr string) (time.Time, time.Time, bool) {
	startDate, err := time.Parse(dateLayout, startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return time.Time{}, time.Time{}, false
	}
	endDate, err := time.Parse(dateLayout, endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return time.Time{}, time.Time{}, false
	}
	return startDate, endDate, true
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps service errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, leave.ErrCourseFetch):
		writeError(w, http.StatusBadGateway, "Course directory unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
