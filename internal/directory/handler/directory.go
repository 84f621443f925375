package handler

import (
	"net/http"

	"innkeep/internal/directory/service"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DirectoryHandler struct {
	service service.DirectoryService
	log     *logger.Logger
}

func NewDirectoryHandler(service service.DirectoryService, log *logger.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		log:     log,
	}
}

func (h *DirectoryHandler) CreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var room model.Room
	if err := httputil.DecodeJSON(r, &room, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CreateRoom(r.Context(), &room); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, room)
}

func (h *DirectoryHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetRoom(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, room)
}

func (h *DirectoryHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rooms, total, err := h.service.ListRooms(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, rooms, total, limit, offset)
}

func (h *DirectoryHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.RoomUpdate
	if err := httputil.DecodeJSON(r, &updates, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	room, err := h.service.UpdateRoom(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, room)
}

func (h *DirectoryHandler) DeleteRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteRoom(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DirectoryHandler) CreatePackage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var pkg model.Package
	if err := httputil.DecodeJSON(r, &pkg, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CreatePackage(r.Context(), &pkg); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, pkg)
}

func (h *DirectoryHandler) GetPackage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pkg, err := h.service.GetPackage(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, pkg)
}

func (h *DirectoryHandler) ListPackages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	packages, total, err := h.service.ListPackages(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, packages, total, limit, offset)
}

func (h *DirectoryHandler) UpdatePackage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.PackageUpdate
	if err := httputil.DecodeJSON(r, &updates, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	pkg, err := h.service.UpdatePackage(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, pkg)
}

func (h *DirectoryHandler) DeletePackage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeletePackage(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DirectoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.ListRooms)
	router.POST("/api/v1/rooms", h.CreateRoom)
	router.GET("/api/v1/rooms/id/:id", h.GetRoom)
	router.PATCH("/api/v1/rooms/id/:id", h.UpdateRoom)
	router.DELETE("/api/v1/rooms/id/:id", h.DeleteRoom)

	router.GET("/api/v1/packages", h.ListPackages)
	router.POST("/api/v1/packages", h.CreatePackage)
	router.GET("/api/v1/packages/id/:id", h.GetPackage)
	router.PATCH("/api/v1/packages/id/:id", h.UpdatePackage)
	router.DELETE("/api/v1/packages/id/:id", h.DeletePackage)
}
