package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/0xalexb/hjarta-configdb/key"
	"github.com/0xalexb/hjarta-configdb/listener/middleware"
	"github.com/0xalexb/hjarta-configdb/repository"
	"github.com/0xalexb/hjarta-configdb/value"

	"github.com/goccy/go-json"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// DefaultParam is the query parameter holding the fallback of GET /v1/items/{key}.
const DefaultParam = "default"

var (
	errNotFound       = errors.New("key not found")
	errEmptyNamespace = errors.New("namespace must not be empty")
)

// ItemResponse is the body of GET /v1/items/{key}.
type ItemResponse struct {
	Key   string      `json:"key"`
	Value value.Value `json:"value"`
}

// SavedResponse is the body of PUT /v1/items/{key}.
type SavedResponse struct {
	Saved bool `json:"saved"`
}

// ExistsResponse is the body of GET /v1/groups/{key}.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// NamespacesResponse is the body of GET /v1/namespaces.
type NamespacesResponse struct {
	Namespaces []string `json:"namespaces"`
}

// NamespaceRequest is the body of POST /v1/namespaces.
type NamespaceRequest struct {
	Namespace string `json:"namespace"`
	Hint      string `json:"hint"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewHandler returns the API handler for repo wrapped with request ID, access logging
// and panic recovery. A nil logger means slog.Default().
//
//nolint:ireturn // the mux is wrapped by middleware
func NewHandler(repo *repository.Repository, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &handler{repo: repo, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/items/{key}", h.getItem)
	mux.HandleFunc("HEAD /v1/items/{key}", h.hasItem)
	mux.HandleFunc("PUT /v1/items/{key}", h.saveItem)
	mux.HandleFunc("GET /v1/groups/{key}", h.hasGroup)
	mux.HandleFunc("GET /v1/namespaces", h.namespaces)
	mux.HandleFunc("POST /v1/namespaces", h.addNamespace)

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
	)
}

func (h *handler) getItem(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("key")

	found, ok, err := h.repo.Lookup(r.Context(), raw)
	if err != nil {
		h.fail(w, r, err)

		return
	}

	if !ok {
		if !r.URL.Query().Has(DefaultParam) {
			h.writeError(w, r, http.StatusNotFound, errNotFound)

			return
		}

		found = value.Scalar(r.URL.Query().Get(DefaultParam))
	}

	h.writeJSON(w, r, http.StatusOK, ItemResponse{Key: raw, Value: found})
}

func (h *handler) hasItem(w http.ResponseWriter, r *http.Request) {
	ok, err := h.repo.Has(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, r, err)

		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *handler) saveItem(w http.ResponseWriter, r *http.Request) {
	var content value.Value

	if !h.decode(w, r, &content) {
		return
	}

	saved, err := h.repo.Save(r.Context(), r.PathValue("key"), content)
	if err != nil {
		h.fail(w, r, err)

		return
	}

	h.writeJSON(w, r, http.StatusOK, SavedResponse{Saved: saved})
}

func (h *handler) hasGroup(w http.ResponseWriter, r *http.Request) {
	exists, err := h.repo.HasGroup(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, r, err)

		return
	}

	h.writeJSON(w, r, http.StatusOK, ExistsResponse{Exists: exists})
}

func (h *handler) namespaces(w http.ResponseWriter, r *http.Request) {
	names := h.repo.Namespaces()
	if names == nil {
		names = []string{}
	}

	h.writeJSON(w, r, http.StatusOK, NamespacesResponse{Namespaces: names})
}

func (h *handler) addNamespace(w http.ResponseWriter, r *http.Request) {
	var req NamespaceRequest

	if !h.decode(w, r, &req) {
		return
	}

	if req.Namespace == "" {
		h.writeError(w, r, http.StatusBadRequest, errEmptyNamespace)

		return
	}

	h.repo.AddNamespace(req.Namespace, req.Hint)

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, err)

			return false
		}

		h.writeError(w, r, http.StatusBadRequest, err)

		return false
	}

	err = json.Unmarshal(data, target)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)

		return false
	}

	return true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, key.ErrInvalidKey) {
		h.writeError(w, r, http.StatusBadRequest, err)

		return
	}

	h.logger.ErrorContext(r.Context(), "repository request failed",
		"path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)

	h.writeError(w, r, http.StatusInternalServerError, err)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.writeJSON(w, r, status, ErrorResponse{Error: err.Error()})
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)

		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}

	_, _ = w.Write(data)
}
