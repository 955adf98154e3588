// Package api provides HTTP handlers for the P.A.L. gateway.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lucifer12122001/PAL/internal/assistant"
	"github.com/Lucifer12122001/PAL/internal/session"
)

// securityStatus is the fixed identity tag attached to every command
// response.
const securityStatus = "Master"

// Handler wires the session guard and conversation engine to the HTTP
// surface.
type Handler struct {
	guard          *session.Guard
	engine         *assistant.Engine
	sessionMinutes int
}

// NewHandler creates a new Handler.
func NewHandler(guard *session.Guard, engine *assistant.Engine, sessionMinutes int) *Handler {
	return &Handler{
		guard:          guard,
		engine:         engine,
		sessionMinutes: sessionMinutes,
	}
}

// RegisterRoutes registers the gateway routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth", h.Authenticate)
	r.Post("/command", h.Command)
}

type authRequest struct {
	SecretName string `json:"secret_name"`
}

type authResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type commandRequest struct {
	Query string `json:"query"`
}

type commandResponse struct {
	Response       string `json:"response"`
	SecurityStatus string `json:"security_status"`
}

// Authenticate handles the shared-secret challenge. A denial carries the
// alert side effect inside the guard.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.guard.Authenticate(req.SecretName) {
		JSON(w, http.StatusUnauthorized, authResponse{
			Status:  "Failed",
			Message: "Authentication failed. Access is restricted and alert(s) have been sent.",
		})
		return
	}

	JSON(w, http.StatusOK, authResponse{
		Status:  "Success",
		Message: fmt.Sprintf("Access Granted. Welcome, Master. Session timer started (%d minutes).", h.sessionMinutes),
	})
}

// Command handles a free-text command. An invalid or expired session is
// rejected before the command can reach the classifier.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	if !h.guard.CheckValidity() {
		JSON(w, http.StatusForbidden, map[string]string{
			"response": "System is currently in OFF mode. Please re-authenticate.",
		})
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	responseText := h.engine.Handle(r.Context(), req.Query)

	JSON(w, http.StatusOK, commandResponse{
		Response:       responseText,
		SecurityStatus: securityStatus,
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
