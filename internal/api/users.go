package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"nutriapi/internal/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// userView strips the password hash from a user record
func userView(user store.Record) map[string]interface{} {
	view := user.Clone()
	delete(view.Values, "password_hash")
	return view.Values
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.FullName == "" {
		writeBadRequest(w, "username and full_name are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeBadRequest(w, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}

	// Uniqueness pre-checks. These are read-then-write, not atomic; a
	// concurrent registration can still slip through.
	if err := s.ensureUnique(r, store.SheetUsers, "email", req.Email, "email already registered"); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ensureUnique(r, store.SheetUsers, "username", req.Username, "username already taken"); err != nil {
		writeError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	_, user, err := s.store.Insert(r.Context(), store.SheetUsers, map[string]interface{}{
		"username":      req.Username,
		"email":         req.Email,
		"password_hash": string(hash),
		"full_name":     req.FullName,
		"role":          RoleCustomer,
		"created_at":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userView(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := s.store.FindByField(r.Context(), store.SheetUsers, "email", strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			return
		}
		writeError(w, err)
		return
	}

	hash := user.GetAsString("password_hash", "")
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userView(user),
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	users, err := s.store.ListAll(r.Context(), store.SheetUsers)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]map[string]interface{}, 0, len(users))
	for _, user := range users {
		views = append(views, userView(user))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canAccessUser(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	user, err := s.store.FindByID(r.Context(), store.SheetUsers, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canAccessUser(r, id) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	updates := make(map[string]interface{})
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if !strings.Contains(email, "@") {
			writeBadRequest(w, "a valid email is required")
			return
		}
		current, err := s.store.FindByID(r.Context(), store.SheetUsers, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if current.GetAsString("email", "") != email {
			if err := s.ensureUnique(r, store.SheetUsers, "email", email, "email already registered"); err != nil {
				writeError(w, err)
				return
			}
		}
		updates["email"] = email
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			writeBadRequest(w, "password must be at least 8 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, err)
			return
		}
		updates["password_hash"] = string(hash)
	}
	if req.Role != nil {
		// Only admins may change roles.
		if !identityFrom(r.Context()).IsAdmin() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		if *req.Role != RoleAdmin && *req.Role != RoleCustomer {
			writeBadRequest(w, "unknown role %q", *req.Role)
			return
		}
		updates["role"] = *req.Role
	}

	if len(updates) == 0 {
		writeBadRequest(w, "no updatable fields provided")
		return
	}

	user, err := s.store.UpdateByID(r.Context(), store.SheetUsers, id, updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	if err := s.store.DeleteByID(r.Context(), store.SheetUsers, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ensureUnique fails with ErrConflict when a record with the given column
// value already exists. This is a read-then-write pre-check, not a
// constraint enforced by the medium.
func (s *Server) ensureUnique(r *http.Request, sheet, column, value, msg string) error {
	_, err := s.store.FindByField(r.Context(), sheet, column, value)
	if err == nil {
		return conflictf(msg)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
