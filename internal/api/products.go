package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"nutriapi/internal/store"
)

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	FileURL     string   `json:"file_url"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url"`
	IsActive    *bool    `json:"is_active"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListAll(r.Context(), store.SheetProducts)
	if err != nil {
		writeError(w, err)
		return
	}

	query := store.Query{}
	if category := r.URL.Query().Get("category"); category != "" {
		query.Conditions = append(query.Conditions, store.Condition{Column: "category", Value: category})
	}
	// Inactive products are visible to admins only.
	if !identityFromRequest(s, r).IsAdmin() {
		query.Conditions = append(query.Conditions, store.Condition{Column: "is_active", Value: true})
	}

	views := make([]map[string]interface{}, 0, len(products))
	for _, product := range store.Filter(products, query) {
		views = append(views, product.Values)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.store.FindByID(r.Context(), store.SheetProducts, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if !product.GetAsBool("is_active", false) && !identityFromRequest(s, r).IsAdmin() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
		return
	}
	writeJSON(w, http.StatusOK, product.Values)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req productRequest
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

	if err := s.ensureUnique(r, store.SheetProducts, "name", req.Name, "product name already exists"); err != nil {
		writeError(w, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	_, product, err := s.store.Insert(r.Context(), store.SheetProducts, map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"price":       *req.Price,
		"file_url":    req.FileURL,
		"category":    req.Category,
		"image_url":   req.ImageURL,
		"is_active":   isActive,
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product.Values)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req productRequest
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
	if req.FileURL != "" {
		updates["file_url"] = req.FileURL
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		writeBadRequest(w, "no updatable fields provided")
		return
	}

	product, err := s.store.UpdateByID(r.Context(), store.SheetProducts, mux.Vars(r)["id"], updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product.Values)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	if err := s.store.DeleteByID(r.Context(), store.SheetProducts, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// identityFromRequest resolves the caller identity on routes that are
// public but behave differently for admins. The bearer token is optional
// here; an invalid or absent token just means an anonymous caller.
func identityFromRequest(s *Server, r *http.Request) Identity {
	if id := identityFrom(r.Context()); id.UserID != "" {
		return id
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}
	}
	identity, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return Identity{}
	}
	return identity
}
