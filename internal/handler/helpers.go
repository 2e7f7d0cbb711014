package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/questkeep/internal/approval"
	"github.com/dukerupert/questkeep/internal/economy"
	"github.com/dukerupert/questkeep/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "something went wrong, try again"

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
		msg = "someone else got there first, try again"
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
		msg = "storage is unavailable, try again"
	case errors.Is(err, economy.ErrInsufficientPoints):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, economy.ErrTaskUnavailable),
		errors.Is(err, economy.ErrRewardUnavailable):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, economy.ErrNotAdmin),
		errors.Is(err, approval.ErrNotAdmin):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, approval.ErrAlreadyDecided):
		status = http.StatusConflict
		msg = err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// decidedAction is the websocket action name for a decision outcome.
func decidedAction(d approval.Decision) string {
	if d == approval.Approve {
		return "approved"
	}
	return "rejected"
}
