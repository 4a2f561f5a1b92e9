package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
	"github.com/openshift-splat-team/lockable-resource-manager/pkg/resources"
)

// QueueRequest asks for resources on behalf of a queue item.
type QueueRequest struct {
	Resources string `json:"resources"`
	Variable  string `json:"variable,omitempty"`
	Count     string `json:"count,omitempty"`
	// QueueItemID identifies the caller between polls. A new id is assigned when empty.
	QueueItemID int64  `json:"queueItemId,omitempty"`
	Project     string `json:"project"`
}

// QueueResponse reports the outcome of a queue attempt.
type QueueResponse struct {
	Admitted    bool     `json:"admitted"`
	QueueItemID int64    `json:"queueItemId"`
	Resources   []string `json:"resources,omitempty"`
}

// ResourcesRequest names resources to lock, unlock, reserve, unreserve or reset.
type ResourcesRequest struct {
	Resources []string `json:"resources"`
	Build     string   `json:"build,omitempty"`
	User      string   `json:"user,omitempty"`
}

// FreeResponse is the number of free resources carrying a label.
type FreeResponse struct {
	Label string `json:"label"`
	Free  int    `json:"free"`
}

// Handler serves the resource manager over HTTP.
type Handler struct {
	Manager *resources.Manager
	Logger  logr.Logger
}

func NewHandler(manager *resources.Manager) *Handler {
	return &Handler{
		Manager: manager,
		Logger:  ctrl.Log.WithName("endpoints"),
	}
}

// Register adds the handler routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	h.Logger.Info("initializing endpoints")
	mux.HandleFunc("POST /queue", h.queueHandler)
	mux.HandleFunc("POST /unqueue", h.unqueueHandler)
	mux.HandleFunc("POST /lock", h.lockHandler)
	mux.HandleFunc("POST /unlock", h.unlockHandler)
	mux.HandleFunc("POST /reserve", h.reserveHandler)
	mux.HandleFunc("POST /unreserve", h.unreserveHandler)
	mux.HandleFunc("POST /reset", h.resetHandler)
	mux.HandleFunc("GET /resources", h.listResourcesHandler)
	mux.HandleFunc("GET /resources/{name}", h.getResourceHandler)
	mux.HandleFunc("GET /labels", h.labelsHandler)
	mux.HandleFunc("GET /labels/{label}/free", h.freeHandler)
	mux.HandleFunc("GET /load-balancing", h.loadBalancingHandler)
	mux.HandleFunc("GET /configuration", h.getConfigurationHandler)
	mux.HandleFunc("PUT /configuration", h.putConfigurationHandler)
}

func (h *Handler) queueHandler(w http.ResponseWriter, r *http.Request) {
	var req QueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Project) == 0 {
		http.Error(w, "project is required", http.StatusBadRequest)
		return
	}

	spec, err := resources.ParseRequirement(req.Resources, req.Variable, req.Count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	requirement, err := h.Manager.Resolve(spec)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if req.QueueItemID == v1.NotQueued {
		req.QueueItemID = h.Manager.NextQueueItemID()
	}
	names, admitted := h.Manager.Queue(r.Context(), requirement, resources.QueueItem{ID: req.QueueItemID, Project: req.Project})

	status := http.StatusOK
	if !admitted {
		status = http.StatusConflict
	}
	h.writeJSON(w, status, QueueResponse{
		Admitted:    admitted,
		QueueItemID: req.QueueItemID,
		Resources:   names,
	})
}

func (h *Handler) unqueueHandler(w http.ResponseWriter, r *http.Request) {
	var req QueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	released := h.Manager.Unqueue(r.Context(), resources.QueueItem{ID: req.QueueItemID, Project: req.Project})
	h.writeJSON(w, http.StatusOK, QueueResponse{
		QueueItemID: req.QueueItemID,
		Resources:   released,
	})
}

func (h *Handler) lockHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeResources(w, r)
	if !ok {
		return
	}
	locked, err := h.Manager.Lock(r.Context(), req.Resources, req.Build)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !locked {
		http.Error(w, fmt.Sprintf("resources %v are reserved or locked", req.Resources), http.StatusConflict)
		return
	}
	h.writeResources(w, req.Resources)
}

func (h *Handler) unlockHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeResources(w, r)
	if !ok {
		return
	}
	if err := h.Manager.Unlock(r.Context(), req.Resources, req.Build); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResources(w, req.Resources)
}

func (h *Handler) reserveHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeResources(w, r)
	if !ok {
		return
	}
	reserved, err := h.Manager.Reserve(r.Context(), req.Resources, req.User)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !reserved {
		http.Error(w, fmt.Sprintf("resources %v are not free", req.Resources), http.StatusConflict)
		return
	}
	h.writeResources(w, req.Resources)
}

func (h *Handler) unreserveHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeResources(w, r)
	if !ok {
		return
	}
	if err := h.Manager.Unreserve(r.Context(), req.Resources); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResources(w, req.Resources)
}

func (h *Handler) resetHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeResources(w, r)
	if !ok {
		return
	}
	if err := h.Manager.Reset(r.Context(), req.Resources); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeResources(w, req.Resources)
}

// listResourcesHandler lists resources, optionally filtered by one of the
// label, project or build query parameters.
func (h *Handler) listResourcesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var list v1.LockableResources
	switch {
	case query.Has("label"):
		label := query.Get("label")
		if !h.Manager.IsValidLabel(label) {
			http.Error(w, fmt.Sprintf("unknown label %q", label), http.StatusNotFound)
			return
		}
		list = h.Manager.ResourcesWithLabel(label)
	case query.Has("project"):
		list = h.Manager.ResourcesFromProject(query.Get("project"))
	case query.Has("build"):
		list = h.Manager.ResourcesFromBuild(query.Get("build"))
	default:
		list = h.Manager.Resources()
	}
	if list == nil {
		list = v1.LockableResources{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getResourceHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	resource, ok := h.Manager.Get(name)
	if !ok {
		http.Error(w, fmt.Sprintf("resource %q not found", name), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, resource)
}

func (h *Handler) labelsHandler(w http.ResponseWriter, r *http.Request) {
	labels := h.Manager.AllLabels()
	if labels == nil {
		labels = []string{}
	}
	h.writeJSON(w, http.StatusOK, labels)
}

func (h *Handler) freeHandler(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("label")
	if !h.Manager.IsValidLabel(label) {
		http.Error(w, fmt.Sprintf("unknown label %q", label), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, FreeResponse{Label: label, Free: h.Manager.FreeResourceAmount(label)})
}

func (h *Handler) loadBalancingHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Manager.LoadBalancingUsage())
}

func (h *Handler) getConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Manager.Configuration())
}

func (h *Handler) putConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	config := &v1.ResourceManagerConfig{}
	if err := json.NewDecoder(r.Body).Decode(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Manager.Configure(r.Context(), config); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.Manager.Configuration())
}

func (h *Handler) decodeResources(w http.ResponseWriter, r *http.Request) (*ResourcesRequest, bool) {
	req := &ResourcesRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if len(req.Resources) == 0 {
		http.Error(w, "no resources given", http.StatusBadRequest)
		return nil, false
	}
	return req, true
}

func (h *Handler) writeResources(w http.ResponseWriter, names []string) {
	h.writeJSON(w, http.StatusOK, ResourcesRequest{Resources: names})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resources.ErrResourceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, resources.ErrMalformedRequirement), apierrors.IsInvalid(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, resources.ErrBuildRequired), errors.Is(err, resources.ErrUserRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error(err, "request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	marshalled, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(marshalled); err != nil {
		h.Logger.Error(err, "unable to write response")
	}
}
