package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

// Error messages shown to the (German-speaking) users of the frontend.
const (
	msgInvalidRequest   = "Ungültige Anfrage"
	msgInvalidData      = "Ungültige Daten"
	msgInternal         = "Interner Fehler"
	msgCustomerNotFound = "Kunde nicht gefunden"
	msgProjectNotFound  = "Projekt nicht gefunden"
	msgTaskNotFound     = "Aufgabe nicht gefunden"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

// WriteError writes {"error": msg} with the given status code.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// notFoundMessage names the entity a NotFound error of action a refers to.
func notFoundMessage(a action) string {
	switch a {
	case getCustomer, updateCustomer, deleteCustomer:
		return msgCustomerNotFound
	case getTask, updateTask, deleteTask:
		return msgTaskNotFound
	default:
		// Project routes, and creating a task under a missing project.
		return msgProjectNotFound
	}
}

// writeStoreError maps a repository error onto a status code and message.
func writeStoreError(w http.ResponseWriter, r *http.Request, a action, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, notFoundMessage(a))
	case errors.Is(err, storage.ErrConstraint), errors.Is(err, storage.ErrInvalidField):
		slog.Info("Rejected request data",
			"action", a.String(),
			"path", r.URL.Path,
			"error", err,
		)
		WriteError(w, http.StatusBadRequest, msgInvalidData)
	default:
		slog.Error("Storage operation failed",
			"action", a.String(),
			"path", r.URL.Path,
			"error", err,
		)
		WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}
