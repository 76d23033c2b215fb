package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"nutriapi/internal/store"
)

type planRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int64   `json:"duration_minutes"`
	IsActive        *bool    `json:"is_active"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListAll(r.Context(), store.SheetNutritionPlans)
	if err != nil {
		writeError(w, err)
		return
	}

	query := store.Query{}
	if !identityFromRequest(s, r).IsAdmin() {
		query.Conditions = append(query.Conditions, store.Condition{Column: "is_active", Value: true})
	}

	views := make([]map[string]interface{}, 0, len(plans))
	for _, plan := range store.Filter(plans, query) {
		views = append(views, plan.Values)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.FindByID(r.Context(), store.SheetNutritionPlans, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if !plan.GetAsBool("is_active", false) && !identityFromRequest(s, r).IsAdmin() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
		return
	}
	writeJSON(w, http.StatusOK, plan.Values)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req planRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.Price == nil || *req.Price < 0 {
		writeBadRequest(w, "a non-negative price is required")
		return
	}
	if req.DurationMinutes == nil || *req.DurationMinutes <= 0 {
		writeBadRequest(w, "a positive duration_minutes is required")
		return
	}

	if err := s.ensureUnique(r, store.SheetNutritionPlans, "name", req.Name, "plan name already exists"); err != nil {
		writeError(w, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	_, plan, err := s.store.Insert(r.Context(), store.SheetNutritionPlans, map[string]interface{}{
		"name":             req.Name,
		"description":      req.Description,
		"price":            *req.Price,
		"duration_minutes": *req.DurationMinutes,
		"is_active":        isActive,
		"created_at":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan.Values)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req planRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			writeBadRequest(w, "price must be non-negative")
			return
		}
		updates["price"] = *req.Price
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			writeBadRequest(w, "duration_minutes must be positive")
			return
		}
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		writeBadRequest(w, "no updatable fields provided")
		return
	}

	plan, err := s.store.UpdateByID(r.Context(), store.SheetNutritionPlans, mux.Vars(r)["id"], updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan.Values)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	if err := s.store.DeleteByID(r.Context(), store.SheetNutritionPlans, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
