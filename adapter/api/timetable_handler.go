package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/calendar"
)

const maxBodyBytes = 1 << 20

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Missing or invalid parameters",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)

// TimetableHandler serves the timetable endpoints.
type TimetableHandler struct {
	engine    *application.Engine
	assistant Assistant
	location  *time.Location
	logger    *slog.Logger
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(engine *application.Engine, loc *time.Location, logger *slog.Logger) *TimetableHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimetableHandler{engine: engine, location: loc, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /chat
func (h *TimetableHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "chat assistant is not configured")
		return
	}
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.assistant.Reply(r.Context(), req.Message)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "assistant failed", "error", err)
		writeError(w, http.StatusBadGateway, "assistant failed to answer")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type updateSlotRequest struct {
	Date    string       `json:"date"`
	OldDate string       `json:"old_date"`
	Index   *int         `json:"index"`
	NewSlot *domain.Slot `json:"new_slot"`
}

type updateSlotResponse struct {
	Message string      `json:"message"`
	NewSlot domain.Slot `json:"new_slot"`
}

// UpdateSlot handles POST /update_slot, the positional override used by the
// slot editor.
func (h *TimetableHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	var req updateSlotRequest
	if err := decodeBody(r, &req); err != nil {
		writeAPIError(w, ErrBadRequest)
		return
	}
	if req.Date == "" || req.Index == nil || req.NewSlot == nil {
		writeAPIError(w, ErrBadRequest)
		return
	}

	out, err := h.engine.UpdateSlot(r.Context(), application.UpdateRequest{
		Date:    req.Date,
		OldDate: req.OldDate,
		Index:   *req.Index,
		Slot:    *req.NewSlot,
	})
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateSlotResponse{Message: out.Message, NewSlot: out.Slot})
}

// Show handles GET /timetable and GET /timetable?date=DD/MM/YYYY
func (h *TimetableHandler) Show(w http.ResponseWriter, r *http.Request) {
	var (
		res domain.Result
		err error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		res, err = h.engine.RenderDate(r.Context(), date)
	} else {
		res, err = h.engine.Render(r.Context())
	}
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeResult(w, res)
}

type slotsRequest struct {
	Slots []domain.Candidate `json:"slots"`
}

// AddSlots handles POST /slots
func (h *TimetableHandler) AddSlots(w http.ResponseWriter, r *http.Request) {
	var req slotsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.engine.InsertBatch(r.Context(), req.Slots)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeResult(w, res)
}

// CheckConflicts handles POST /slots/conflicts
func (h *TimetableHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	var req slotsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.engine.CheckConflicts(r.Context(), req.Slots)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeResult(w, res)
}

type removeSlotsResponse struct {
	Results []domain.Result `json:"results"`
}

// RemoveSlots handles POST /slots/remove
func (h *TimetableHandler) RemoveSlots(w http.ResponseWriter, r *http.Request) {
	var req slotsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Slots) == 0 {
		writeError(w, http.StatusBadRequest, "no slots provided")
		return
	}
	results, err := h.engine.RemoveBatch(r.Context(), req.Slots)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removeSlotsResponse{Results: results})
}

// ExportICS handles GET /timetable.ics
func (h *TimetableHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.engine.Snapshot(r.Context())
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	data, err := calendar.ExportICS(schedule, h.location, time.Now())
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timetable.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *TimetableHandler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeAPIError(w, apiErr)
}

// toAPIError maps engine errors onto HTTP errors.
func toAPIError(err error) *APIError {
	switch {
	case errors.Is(err, domain.ErrDateNotFound):
		return &APIError{Status: http.StatusNotFound, Code: ErrNotFound.Code, Message: err.Error()}
	case errors.Is(err, domain.ErrIndexOutOfRange), errors.Is(err, application.ErrInvalidRequest):
		return &APIError{Status: http.StatusBadRequest, Code: ErrBadRequest.Code, Message: err.Error()}
	default:
		return ErrInternalServer
	}
}

func writeAPIError(w http.ResponseWriter, e *APIError) {
	writeJSON(w, e.Status, e)
}

// writeResult writes an engine Result. Not-found and invalid results keep
// their body so agents can relay the message.
func writeResult(w http.ResponseWriter, res domain.Result) {
	status := http.StatusOK
	switch res.Status {
	case domain.StatusNotFound:
		status = http.StatusNotFound
	case domain.StatusInvalidFormat:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("request body is not valid JSON")
	}
	return nil
}
