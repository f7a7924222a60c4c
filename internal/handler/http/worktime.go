package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/cmlabs-hris/worktime-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/worktime-backend/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type WorktimeHandler interface {
	// GET /worktime/employees/{employeeID}/monthly
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)

	// GET /worktime/employees/{employeeID}/monthly/export
	ExportMonthlyReport(w http.ResponseWriter, r *http.Request)

	// GET /worktime/employees/{employeeID}/annual
	GetAnnualReport(w http.ResponseWriter, r *http.Request)

	// GET /worktime/alerts
	ListAlerts(w http.ResponseWriter, r *http.Request)
}

type worktimeHandlerImpl struct {
	worktimeService worktime.Service
}

func NewWorktimeHandler(worktimeService worktime.Service) WorktimeHandler {
	return &worktimeHandlerImpl{
		worktimeService: worktimeService,
	}
}

// GetMonthlyReport implements WorktimeHandler.
func (h *worktimeHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	detail, err := parseDetail(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	req := worktime.MonthlyReportRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Period:     r.URL.Query().Get("period"),
		AsOf:       r.URL.Query().Get("as_of"),
		Detail:     detail,
	}

	result, err := h.worktimeService.GenerateMonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyReport implements WorktimeHandler. The workbook always
// includes the per-day sheet.
func (h *worktimeHandlerImpl) ExportMonthlyReport(w http.ResponseWriter, r *http.Request) {
	req := worktime.MonthlyReportRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Period:     r.URL.Query().Get("period"),
		AsOf:       r.URL.Query().Get("as_of"),
		Detail:     true,
	}

	result, err := h.worktimeService.GenerateMonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteMonthlyReport(&buf, result); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.MonthlyFilename(result)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetAnnualReport implements WorktimeHandler.
func (h *worktimeHandlerImpl) GetAnnualReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	detail, err := parseDetail(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	req := worktime.AnnualReportRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Year:       year,
		AsOf:       r.URL.Query().Get("as_of"),
		Detail:     detail,
	}

	result, err := h.worktimeService.GenerateAnnualReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListAlerts implements WorktimeHandler.
func (h *worktimeHandlerImpl) ListAlerts(w http.ResponseWriter, r *http.Request) {
	req := worktime.AlertListRequest{
		Period:    r.URL.Query().Get("period"),
		MinStatus: r.URL.Query().Get("min_status"),
	}

	result, err := h.worktimeService.ListAlerts(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func parseDetail(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("detail")
	if raw == "" {
		return false, nil
	}
	detail, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid detail parameter")
	}
	return detail, nil
}
