package handlers

import (
	"net/http"

	"github.com/skilloww/cs2panel/middleware"
	"github.com/skilloww/cs2panel/services"
)

type ServerHandler struct {
	serverService services.ServerService
}

func NewServerHandler(serverService services.ServerService) *ServerHandler {
	return &ServerHandler{serverService: serverService}
}

func (h *ServerHandler) CreateServer(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.ServerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	server, err := h.serverService.CreateServer(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"server": server}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ServerHandler) ListServers(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	servers, err := h.serverService.ListServers(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"servers": servers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ServerHandler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	serverID, err := getIDFromURL(r, "serverID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.serverService.DeleteServer(r.Context(), currentUserID, serverID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServerStatus probes one server over RCON.
func (h *ServerHandler) ServerStatus(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	serverID, err := getIDFromURL(r, "serverID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.serverService.ServerStatus(r.Context(), currentUserID, serverID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FleetStatus probes every visible server concurrently.
func (h *ServerHandler) FleetStatus(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	statuses, err := h.serverService.FleetStatus(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"statuses": statuses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
