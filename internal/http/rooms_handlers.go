package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/scotow/buzzer/internal/ws"
)

// RoomsAPI adapts HTTP requests and upgraded sockets to the registry
type RoomsAPI struct {
	Registry *ws.Registry
	Log      *slog.Logger
	validate *validator.Validate
}

func NewRoomsAPI(reg *ws.Registry, logger *slog.Logger) *RoomsAPI {
	return &RoomsAPI{Registry: reg, Log: logger, validate: validator.New()}
}

// reserveReq only checks the body's shape; name rules belong to the registry
type reserveReq struct {
	Name *string `json:"name" validate:"required"`
}

// Reserve holds a room name for a host that will connect shortly
func (a *RoomsAPI) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || a.validate.Struct(req) != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorResp{Error: "invalid payload"})
		return
	}
	res, err := a.Registry.Reserve(*req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// FindByName resolves a hosted room's id from its name
func (a *RoomsAPI) FindByName(w http.ResponseWriter, r *http.Request) {
	res, err := a.Registry.LookupByName(r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// Host upgrades the request into the host connection of a reserved room
func (a *RoomsAPI) Host(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	if !a.Registry.Pending(id) {
		writeError(w, ws.ErrRoomNotFound)
		return
	}
	conn, err := ws.Accept(w, r)
	if err != nil {
		a.Log.Error("ws.accept", "role", "host", "err", err)
		return
	}
	// the reservation may have expired while upgrading
	if err := a.Registry.Claim(id, conn); err != nil {
		a.Log.Info("host.rejected", "room", id.String(), "err", err)
		ws.Reject(conn, err)
	}
}

// Participate upgrades the request into a participant of a hosted room
func (a *RoomsAPI) Participate(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	name, err := a.Registry.ValidateUsername(r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !a.Registry.Active(id) {
		writeError(w, ws.ErrRoomNotFound)
		return
	}
	conn, err := ws.Accept(w, r)
	if err != nil {
		a.Log.Error("ws.accept", "role", "participant", "err", err)
		return
	}
	if err := a.Registry.JoinRoom(id, conn, name); err != nil {
		a.Log.Info("participant.rejected", "room", id.String(), "err", err)
		ws.Reject(conn, err)
	}
}

// roomID parses the {id} path segment; malformed ids cannot name a room
func roomID(w http.ResponseWriter, r *http.Request) (ws.RoomID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, ws.ErrRoomNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
