package handlers

import (
	"net/http"
	"strings"

	"github.com/medassist/offline-triage/internal/application/services"
	"github.com/medassist/offline-triage/internal/domain/entities"
)

// StaticHandler serves every unrouted GET through the dispatcher: app shell
// and assets cache-first, other API reads network-first.
type StaticHandler struct {
	dispatcher services.RequestDispatcher
}

// NewStaticHandler creates a new static handler
func NewStaticHandler(dispatcher services.RequestDispatcher) *StaticHandler {
	return &StaticHandler{dispatcher: dispatcher}
}

// Serve handles GET /
func (h *StaticHandler) Serve(w http.ResponseWriter, r *http.Request) {
	resp := h.dispatcher.Dispatch(r.Context(), &entities.FetchRequest{
		Method:   http.MethodGet,
		Path:     r.URL.RequestURI(),
		Header:   r.Header,
		Navigate: IsNavigation(r),
	})
	writeResult(w, &services.Result{
		Status: resp.Status,
		Header: resp.Header,
		Body:   resp.Body,
		Source: resp.Source,
	})
}

// IsNavigation reports whether r is a page load rather than a subresource fetch.
func IsNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
