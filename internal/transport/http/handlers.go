package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storyweave/internal/domain"
)

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
}

// CreateRoomRequest is the body for room creation
type CreateRoomRequest struct {
	PlayerName string `json:"playerName" validate:"required,min=1,max=64"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// JoinRoomRequest is the body for joining a room
type JoinRoomRequest struct {
	PlayerName string `json:"playerName" validate:"required,min=1,max=64"`
}

// JoinRoomResponse is the response for joining a room
type JoinRoomResponse struct {
	Success bool `json:"success"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode    string    `json:"roomCode"`
	PlayerCount int       `json:"playerCount"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TranscriptResponse is the response for the transcript endpoint
type TranscriptResponse struct {
	RoomCode string              `json:"roomCode"`
	Story    []domain.StoryEntry `json:"story"`
	Scores   map[string]int      `json:"scores"`
	IsActive bool                `json:"isActive"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	session, err := s.hub.CreateRoom(r.Context(), strings.TrimSpace(req.PlayerName))
	if err != nil {
		if errors.Is(err, domain.ErrGenerationExhausted) {
			s.sendError(w, http.StatusServiceUnavailable, "GENERATION_EXHAUSTED", "Could not allocate a room code")
			return
		}
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	s.sendJSON(w, http.StatusOK, &CreateRoomResponse{
		RoomCode: session.GetRoomCode(),
	})
}

// handleJoinRoom handles POST /api/rooms/{roomCode}/join
func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(r.PathValue("roomCode"))
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return
	}

	var req JoinRoomRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	session, err := s.hub.GetSession(roomCode)
	if err != nil {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}

	// REST joins carry no live connection, so nobody is excluded from the
	// player-joined broadcast.
	if err := session.Join(r.Context(), strings.TrimSpace(req.PlayerName), ""); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomInactive):
			s.sendError(w, http.StatusConflict, "ROOM_INACTIVE", "Room is no longer active")
		case errors.Is(err, domain.ErrEmptyPlayerName):
			s.sendError(w, http.StatusBadRequest, "INVALID_PLAYER_NAME", "Player name is required")
		default:
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendJSON(w, http.StatusOK, &JoinRoomResponse{Success: true})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(r.PathValue("roomCode"))
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return
	}

	session, err := s.hub.GetSession(roomCode)
	if err != nil {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}

	s.sendJSON(w, http.StatusOK, &GetRoomResponse{
		RoomCode:    session.GetRoomCode(),
		PlayerCount: session.GetPlayerCount(),
		IsActive:    session.IsActive(),
		CreatedAt:   session.GetCreatedAt(),
	})
}

// handleTranscript handles GET /api/rooms/{roomCode}/transcript. Works for
// live rooms and, via the store, for rooms from a previous process.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(r.PathValue("roomCode"))
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return
	}

	room, err := s.hub.Transcript(r.Context(), roomCode)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendJSON(w, http.StatusOK, &TranscriptResponse{
		RoomCode: room.Code,
		Story:    room.Story,
		Scores:   room.Scores,
		IsActive: room.IsActive,
	})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, &StatsResponse{
		ActiveRooms:  s.hub.GetSessionCount(),
		TotalPlayers: s.hub.GetTotalPlayerCount(),
	})
}

// decodeAndValidate decodes a JSON body into dst and validates it,
// reporting failures to the client. Returns false when the request was
// rejected.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		s.sendError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return false
	}

	return true
}

// sendJSON sends a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&ErrorResponse{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
