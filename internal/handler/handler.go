// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the booking engine.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/apperror"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/logger"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// codeBadRequest marks malformed input rejected before it reaches the engine.
const codeBadRequest = "BAD_REQUEST"

// ReservationService is the booking engine as seen by the transport.
type ReservationService interface {
	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error)
	TransitionStatus(ctx context.Context, id string, next model.Status) (string, error)
	UpdateReservation(ctx context.Context, id, tenantID string, req model.UpdateReservationRequest) (string, error)
	DeleteReservation(ctx context.Context, id, tenantID string) (string, error)
	ListForTenant(ctx context.Context, tenantID string) ([]model.ReservationResponse, error)
	ListForTenantByStatus(ctx context.Context, tenantID string, status model.Status) ([]model.ReservationResponse, error)
	GetForTenant(ctx context.Context, id, tenantID string) (*model.ReservationResponse, error)
	ListForOwner(ctx context.Context, propertyID, ownerID string) ([]model.ReservationResponse, error)
	GetForOwner(ctx context.Context, id, ownerID string) (*model.ReservationResponse, error)
}

// ReservationHandler holds all HTTP handlers for the reservation API.
type ReservationHandler struct {
	svc      ReservationService
	validate *validator.Validate
	log      *slog.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc ReservationService, log *slog.Logger) *ReservationHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &ReservationHandler{svc: svc, validate: validator.New(), log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps engine failures to their HTTP status. The cause of an
// unexpected failure is logged, never sent to the client.
func (h *ReservationHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Unexpected("processing the request", err)
	}
	if appErr.Kind == apperror.KindUnexpected {
		logger.FromContext(r.Context(), h.log).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, appErr.HTTPStatus(), string(appErr.Kind), appErr.Message)
}

// pathID reads a uuid path parameter, answering 400 when it is malformed.
func (h *ReservationHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if err := h.validate.Var(id, "required,uuid"); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid "+name)
		return "", false
	}
	return id, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateReservation handles POST /reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, validationMessage(err))
		return
	}

	res, err := h.svc.CreateReservation(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// TransitionStatus handles PATCH /reservations/{id}/status
// The body names the target status; case is ignored.
func (h *ReservationHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, validationMessage(err))
		return
	}

	next := model.Status(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	msg, err := h.svc.TransitionStatus(r.Context(), id, next)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// ListForTenant handles GET /tenants/{tenantID}/reservations[?status=]
func (h *ReservationHandler) ListForTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}

	var (
		list []model.ReservationResponse
		err  error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := model.ParseStatus(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, perr.Error())
			return
		}
		list, err = h.svc.ListForTenantByStatus(r.Context(), tenantID, status)
	} else {
		list, err = h.svc.ListForTenant(r.Context(), tenantID)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if list == nil {
		list = []model.ReservationResponse{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetForTenant handles GET /tenants/{tenantID}/reservations/{id}
func (h *ReservationHandler) GetForTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.svc.GetForTenant(r.Context(), id, tenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateReservation handles PATCH /tenants/{tenantID}/reservations/{id}
// Omitted dates keep their current values.
func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.UpdateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	msg, err := h.svc.UpdateReservation(r.Context(), id, tenantID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// DeleteReservation handles DELETE /tenants/{tenantID}/reservations/{id}
func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.pathID(w, r, "tenantID")
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	msg, err := h.svc.DeleteReservation(r.Context(), id, tenantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// ListForOwner handles GET /owners/{ownerID}/properties/{propertyID}/reservations
func (h *ReservationHandler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.pathID(w, r, "ownerID")
	if !ok {
		return
	}
	propertyID, ok := h.pathID(w, r, "propertyID")
	if !ok {
		return
	}

	list, err := h.svc.ListForOwner(r.Context(), propertyID, ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []model.ReservationResponse{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetForOwner handles GET /owners/{ownerID}/reservations/{id}
func (h *ReservationHandler) GetForOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.pathID(w, r, "ownerID")
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.svc.GetForOwner(r.Context(), id, ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyCheck handles GET /ready. ping is nil when there is no backing database.
func ReadyCheck(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
