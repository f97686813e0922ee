package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/steph-crown/movie-moments/internal/service"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

type HTTPHandler struct {
	idSvc  service.IdentityService
	rmSvc  service.RoomService
	logger logger.Logger
}

func NewHTTPHandler(idSvc service.IdentityService, rmSvc service.RoomService, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		idSvc:  idSvc,
		rmSvc:  rmSvc,
		logger: logger,
	}
}

// Register wires the JSON API onto mux. Websocket registration happens
// separately; this handler covers room lifecycle only.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/v1/tokens", h.IssueToken)
	mux.HandleFunc("POST /api/v1/rooms", h.withIdentity(h.CreateRoom))
	mux.HandleFunc("GET /api/v1/rooms/{roomId}", h.withIdentity(h.GetRoom))
	mux.HandleFunc("POST /api/v1/rooms/{roomId}/join", h.withIdentity(h.JoinRoom))
	mux.HandleFunc("POST /api/v1/rooms/{roomId}/leave", h.withIdentity(h.LeaveRoom))
	mux.HandleFunc("GET /api/v1/rooms/{roomId}/participants", h.withIdentity(h.ListParticipants))
	mux.HandleFunc("POST /api/v1/rooms/{roomId}/heartbeat", h.withIdentity(h.Heartbeat))
}

// withIdentity authenticates the bearer token and attaches the identity to
// the request context.
func (h *HTTPHandler) withIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth {
			h.respondError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		identity, err := h.idSvc.Authenticate(token)
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "Invalid access token", err)
			return
		}

		next(w, r.WithContext(service.WithIdentity(r.Context(), identity)))
	}
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "moviemoments-service",
		"version": "1.0.0",
	}
	h.respondJSON(w, http.StatusOK, response)
}

type issueTokenRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// IssueToken mints an access token for a known user. Upstream this sits
// behind the account system; here the caller supplies its own identity.
func (h *HTTPHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" {
		h.respondError(w, http.StatusBadRequest, "User ID is required", nil)
		return
	}

	token, err := h.idSvc.IssueToken(req.UserID, req.DisplayName)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to issue token", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// CreateRoom handles create room requests
func (h *HTTPHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRoomInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" || req.ContentRef == "" {
		h.respondError(w, http.StatusBadRequest, "Title and content ref are required", nil)
		return
	}

	room, err := h.rmSvc.CreateRoom(r.Context(), req)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to create room", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create room", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, room)
}

// GetRoom handles get room requests
func (h *HTTPHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if roomID == "" {
		h.respondError(w, http.StatusBadRequest, "Room ID is required", nil)
		return
	}

	room, err := h.rmSvc.GetRoom(r.Context(), roomID)
	if err != nil {
		switch err {
		case service.ErrRoomNotFound:
			h.respondError(w, http.StatusNotFound, "Room not found", err)
		default:
			h.logger.Error(r.Context(), "Failed to get room", "error", err, "room_id", roomID)
			h.respondError(w, http.StatusInternalServerError, "Failed to get room", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, room)
}

// JoinRoom handles join room requests
func (h *HTTPHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if roomID == "" {
		h.respondError(w, http.StatusBadRequest, "Room ID is required", nil)
		return
	}

	participant, err := h.rmSvc.JoinRoom(r.Context(), roomID)
	if err != nil {
		switch err {
		case service.ErrRoomNotFound:
			h.respondError(w, http.StatusNotFound, "Room not found", err)
		case service.ErrAlreadyJoined:
			h.respondError(w, http.StatusConflict, "You already joined this room", err)
		default:
			h.logger.Error(r.Context(), "Failed to join room", "error", err, "room_id", roomID)
			h.respondError(w, http.StatusInternalServerError, "Failed to join room", err)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, participant)
}

// LeaveRoom handles leave room requests
func (h *HTTPHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if roomID == "" {
		h.respondError(w, http.StatusBadRequest, "Room ID is required", nil)
		return
	}

	if err := h.rmSvc.LeaveRoom(r.Context(), roomID); err != nil {
		switch err {
		case service.ErrNotAMember:
			h.respondError(w, http.StatusNotFound, "You are not a member of this room", err)
		case service.ErrCreatorCannotLeave:
			h.respondError(w, http.StatusForbidden, "The room creator cannot leave", err)
		default:
			h.logger.Error(r.Context(), "Failed to leave room", "error", err, "room_id", roomID)
			h.respondError(w, http.StatusInternalServerError, "Failed to leave room", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"room_id": roomID,
		"message": "Successfully left the room",
	})
}

// ListParticipants handles list participants requests
func (h *HTTPHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if roomID == "" {
		h.respondError(w, http.StatusBadRequest, "Room ID is required", nil)
		return
	}

	participants, err := h.rmSvc.ListParticipants(r.Context(), roomID)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to list participants", "error", err, "room_id", roomID)
		h.respondError(w, http.StatusInternalServerError, "Failed to list participants", err)
		return
	}

	h.respondJSON(w, http.StatusOK, participants)
}

// Heartbeat handles presence heartbeat requests
func (h *HTTPHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if roomID == "" {
		h.respondError(w, http.StatusBadRequest, "Room ID is required", nil)
		return
	}

	if err := h.rmSvc.Heartbeat(r.Context(), roomID); err != nil {
		switch err {
		case service.ErrNotAMember:
			h.respondError(w, http.StatusNotFound, "You are not a member of this room", err)
		default:
			h.logger.Error(r.Context(), "Failed to record heartbeat", "error", err, "room_id", roomID)
			h.respondError(w, http.StatusInternalServerError, "Failed to record heartbeat", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(context.Background(), "Failed to encode JSON response", "error", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]interface{}{
		"error": message,
		"code":  statusCode,
	}

	if err != nil {
		h.logger.Debug(context.Background(), "Error response", "message", message, "error", err.Error())
	}

	h.respondJSON(w, statusCode, response)
}
