package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"GrestAPI/internal/logger"
	"GrestAPI/internal/resource"
)

// Resource returns the handler serving all five CRUD operations for one
// controller. basePath is the route the handler is mounted on, e.g.
// "/api/tasks"; anything after it is the primary key.
func Resource(basePath string, ctrl *resource.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pk := strings.Trim(strings.TrimPrefix(r.URL.Path, basePath), "/")
		if strings.Contains(pk, "/") {
			http.NotFound(w, r)
			return
		}

		switch {
		case pk == "" && r.Method == http.MethodGet:
			payload, err := ctrl.List(r.Context(), r.URL.Query())
			respond(w, http.StatusOK, payload, err)
		case pk == "" && r.Method == http.MethodPost:
			body, err := readBody(w, r)
			if err != nil {
				return
			}
			payload, err := ctrl.Create(r.Context(), body)
			respond(w, http.StatusCreated, payload, err)
		case pk != "" && r.Method == http.MethodGet:
			payload, err := ctrl.Retrieve(r.Context(), pk, r.URL.Query())
			respond(w, http.StatusOK, payload, err)
		case pk != "" && r.Method == http.MethodPut:
			body, err := readBody(w, r)
			if err != nil {
				return
			}
			payload, err := ctrl.Update(r.Context(), pk, body)
			respond(w, http.StatusOK, payload, err)
		case pk != "" && r.Method == http.MethodDelete:
			err := ctrl.Delete(r.Context(), pk)
			if err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("read_body_failed", map[string]any{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
		http.Error(w, "Failed to read body: "+err.Error(), http.StatusBadRequest)
		return nil, err
	}
	return body, nil
}

func respond(w http.ResponseWriter, status int, payload []byte, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"error": err.Error(),
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := resource.HTTPStatus(err)
	if status == http.StatusMethodNotAllowed {
		w.WriteHeader(status)
		return
	}
	if status == http.StatusInternalServerError {
		logger.Error("request_failed", map[string]any{"error": err.Error()})
	}

	var body any
	var ve *resource.ValidationError
	switch {
	case errors.As(err, &ve):
		body = map[string]any{"error": ve.Fields}
	case errors.Is(err, resource.ErrNotFound):
		body = map[string]any{"error": "not found"}
	default:
		body = map[string]any{"error": err.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		logger.Error("write_response_failed", map[string]any{"error": encErr.Error()})
	}
}
