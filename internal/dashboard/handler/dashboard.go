package handler

import (
	"net/http"
	"time"

	"innkeep/internal/dashboard/service"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

// Stats accepts an optional ?date= to view another day's arrivals and departures.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.ParseDateParam(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	today := time.Now().UTC()
	if date != nil {
		today = *date
	}

	stats, err := h.service.Stats(r.Context(), today)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, stats)
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/dashboard", h.Stats)
}
