package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nutriapi/internal/store"
)

// Appointment statuses. "missed" is applied by the background sweeper when
// a pending appointment's slot has passed.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentMissed    = "missed"
)

// appointmentTransitions defines the allowed status changes
var appointmentTransitions = map[string][]string{
	AppointmentPending:   {AppointmentConfirmed, AppointmentCancelled},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

type appointmentRequest struct {
	PlanID          string `json:"plan_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Notes           string `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := s.store.ListAll(r.Context(), store.SheetAppointments)
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityFrom(r.Context())
	query := store.Query{}
	if !identity.IsAdmin() {
		query.Conditions = append(query.Conditions, store.Condition{Column: "user_id", Value: identity.UserID})
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query.Conditions = append(query.Conditions, store.Condition{Column: "status", Value: status})
	}

	views := make([]map[string]interface{}, 0, len(appointments))
	for _, appointment := range store.Filter(appointments, query) {
		views = append(views, appointment.Values)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if _, err := time.Parse("2006-01-02", req.AppointmentDate); err != nil {
		writeBadRequest(w, "appointment_date must be YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("15:04", req.AppointmentTime); err != nil {
		writeBadRequest(w, "appointment_time must be HH:MM")
		return
	}

	plan, err := s.store.FindByID(r.Context(), store.SheetNutritionPlans, req.PlanID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !plan.GetAsBool("is_active", false) {
		writeBadRequest(w, "plan %s is not active", req.PlanID)
		return
	}

	identity := identityFrom(r.Context())
	_, appointment, err := s.store.Insert(r.Context(), store.SheetAppointments, map[string]interface{}{
		"user_id":          identity.UserID,
		"plan_id":          req.PlanID,
		"appointment_date": req.AppointmentDate,
		"appointment_time": req.AppointmentTime,
		"status":           AppointmentPending,
		"notes":            req.Notes,
		"created_at":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointment.Values)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	appointment, err := s.store.FindByID(r.Context(), store.SheetAppointments, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if !canAccessUser(r, appointment.GetAsString("user_id", "")) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}
	writeJSON(w, http.StatusOK, appointment.Values)
}

func (s *Server) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	appointment, err := s.store.FindByID(r.Context(), store.SheetAppointments, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityFrom(r.Context())
	owner := appointment.GetAsString("user_id", "") == identity.UserID

	// Owners may only cancel their own pending appointments; everything
	// else requires the admin role.
	if !identity.IsAdmin() {
		if !owner || req.Status != AppointmentCancelled {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
			return
		}
	}

	current := appointment.GetAsString("status", "")
	if !transitionAllowed(appointmentTransitions, current, req.Status) {
		writeBadRequest(w, "cannot change status from %s to %s", current, req.Status)
		return
	}

	updated, err := s.store.UpdateByID(r.Context(), store.SheetAppointments, appointment.ID(), map[string]interface{}{
		"status": req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.Values)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	if err := s.store.DeleteByID(r.Context(), store.SheetAppointments, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// transitionAllowed checks a status change against a transition table
func transitionAllowed(transitions map[string][]string, from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
