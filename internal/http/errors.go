package httpx

import (
	"errors"
	"net/http"

	"github.com/scotow/buzzer/internal/ws"
)

type errorResp struct {
	Error string `json:"error"`
}

// statusFor maps core outcomes to client-visible statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, ws.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ws.ErrRoomAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ws.ErrRoomNameTooShort), errors.Is(err, ws.ErrUsernameTooShort):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONStatus(w, statusFor(err), errorResp{Error: err.Error()})
}
