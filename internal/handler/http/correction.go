package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/i18n"
)

type CorrectionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	GetMy(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	ListApprovers(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.CorrectionService
}

func NewCorrectionHandler(correctionService correction.CorrectionService) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
	}
}

// Create implements CorrectionHandler.
func (h *correctionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req correction.CreateCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, i18n.T(r.Context(), "common.invalid_request"), nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.correctionService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, i18n.T(r.Context(), "correction.created"), result)
}

func parseCorrectionFilter(r *http.Request) correction.CorrectionFilter {
	query := r.URL.Query()
	filter := correction.CorrectionFilter{}

	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if attendanceID := query.Get("attendance_id"); attendanceID != "" {
		filter.AttendanceID = &attendanceID
	}
	if approverID := query.Get("approver_id"); approverID != "" {
		filter.ApproverID = &approverID
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if kind := query.Get("kind"); kind != "" {
		filter.Kind = &kind
	}

	filter.Page = queryInt(r, "page", 1)
	filter.Limit = queryInt(r, "limit", 20)
	filter.SortOrder = query.Get("sort_order")

	return filter
}

// GetMy implements CorrectionHandler.
func (h *correctionHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	filter := parseCorrectionFilter(r)
	filter.EmployeeID = nil

	if err := filter.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	results, err := h.correctionService.ListMine(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, results)
}

// Get implements CorrectionHandler.
func (h *correctionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.correctionService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// List implements CorrectionHandler.
func (h *correctionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := parseCorrectionFilter(r)

	if err := filter.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	results, err := h.correctionService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, results)
}

// Approve implements CorrectionHandler.
func (h *correctionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// Body is optional
	var req correction.ApproveCorrectionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, i18n.T(r.Context(), "common.invalid_request"), nil)
			return
		}
	}
	req.ID = id

	result, err := h.correctionService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, i18n.T(r.Context(), "correction.approved"), result)
}

// Reject implements CorrectionHandler.
func (h *correctionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req correction.RejectCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, i18n.T(r.Context(), "common.invalid_request"), nil)
		return
	}
	req.ID = id

	if err := req.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.correctionService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, i18n.T(r.Context(), "correction.rejected"), result)
}

// ListApprovers implements CorrectionHandler.
func (h *correctionHandlerImpl) ListApprovers(w http.ResponseWriter, r *http.Request) {
	results, err := h.correctionService.ListApprovers(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, results)
}
