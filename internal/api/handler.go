package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/sundsoffice-tech/messebau-pm/internal/models"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage"
)

// maxBodyBytes caps request bodies; larger bodies count as malformed.
const maxBodyBytes = 1 << 20

// Handler serves the REST API and hands every non-API path to a fallback
// handler (the static frontend).
type Handler struct {
	store    storage.Store
	routes   *router
	fallback http.Handler
}

// NewHandler creates a Handler backed by store. fallback may be nil, in which
// case non-API paths get a plain 404.
func NewHandler(store storage.Store, fallback http.Handler) *Handler {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	return &Handler{
		store:    store,
		routes:   newRouter(),
		fallback: fallback,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(r.URL.Path)
	if len(segments) == 0 || segments[0] != apiPrefix {
		h.fallback.ServeHTTP(w, r)
		return
	}

	it, ok := h.routes.resolve(r.Method, segments[1:], r.URL.Query())
	if !ok {
		WriteError(w, http.StatusNotFound, msgInvalidRequest)
		return
	}

	var fields models.Fields
	if it.action.readsBody() {
		fields = readFields(w, r)
	}

	result, status, err := h.dispatch(r.Context(), it, fields)
	if err != nil {
		writeStoreError(w, r, it.action, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, result)
}

// dispatch runs the repository operation for it and returns the payload and
// the success status code.
func (h *Handler) dispatch(ctx context.Context, it intent, fields models.Fields) (any, int, error) {
	var (
		result any
		err    error
	)
	status := http.StatusOK

	switch it.action {
	case listCustomers:
		result, err = h.store.ListCustomers(ctx)
	case getCustomer:
		result, err = h.store.GetCustomer(ctx, it.id)
	case listCustomerProjects:
		result, err = h.store.ListProjectsByCustomer(ctx, it.id)
	case listProjects:
		result, err = h.store.ListProjects(ctx, storage.Filter{})
	case getProject:
		result, err = h.store.GetProject(ctx, it.id)
	case listProjectTasks:
		result, err = h.store.ListTasksByProject(ctx, it.id)
	case listTasks:
		filter := storage.Filter{}
		if it.status != "" {
			filter = storage.Filter{Field: "status", Value: it.status}
		}
		result, err = h.store.ListTasks(ctx, filter)
	case getTask:
		result, err = h.store.GetTask(ctx, it.id)

	case createCustomer:
		status = http.StatusCreated
		result, err = h.store.CreateCustomer(ctx, fields)
	case createProject:
		status = http.StatusCreated
		result, err = h.store.CreateProject(ctx, fields)
	case createTask:
		status = http.StatusCreated
		result, err = h.store.CreateTask(ctx, it.id, fields)

	case updateCustomer:
		result, err = h.store.UpdateCustomer(ctx, it.id, fields)
	case updateProject:
		result, err = h.store.UpdateProject(ctx, it.id, fields)
	case updateTask:
		result, err = h.store.UpdateTask(ctx, it.id, fields)

	case deleteCustomer:
		status = http.StatusNoContent
		err = h.store.DeleteCustomer(ctx, it.id)
	case deleteProject:
		status = http.StatusNoContent
		err = h.store.DeleteProject(ctx, it.id)
	case deleteTask:
		status = http.StatusNoContent
		err = h.store.DeleteTask(ctx, it.id)
	}

	if err != nil {
		return nil, 0, err
	}
	return result, status, nil
}

// readFields decodes the request body. A missing, oversized or malformed body
// yields an empty field set instead of an error.
func readFields(w http.ResponseWriter, r *http.Request) models.Fields {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Debug("Unreadable request body, using empty field set",
			"path", r.URL.Path,
			"error", err,
		)
		return models.Fields{}
	}

	fields, ok := models.DecodeFields(body)
	if !ok {
		slog.Debug("Malformed JSON body, using empty field set", "path", r.URL.Path)
	}
	return fields
}
