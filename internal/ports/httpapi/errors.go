package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"staredown/internal/app"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNotSeated):
		return http.StatusForbidden
	case errors.Is(err, app.ErrRoomFull),
		errors.Is(err, app.ErrAlreadyStarted),
		errors.Is(err, app.ErrInsufficientPlayers),
		errors.Is(err, app.ErrNotPlaying),
		errors.Is(err, app.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, app.ErrIllegalPlay),
		errors.Is(err, app.ErrMalformedRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorPayload(err error) errorBody {
	msg := err.Error()
	if app.ErrorCode(err) == "Internal" {
		msg = app.ErrInternal.Error()
	}
	return errorBody{Success: false, Error: app.ErrorCode(err), Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorPayload(err))
}
