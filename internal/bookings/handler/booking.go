package handler

import (
	"net/http"
	"slices"
	"time"

	"innkeep/internal/bookings/service"
	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

var (
	bookingStatuses = []string{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted}
	paymentStatuses = []string{model.PaymentUnpaid, model.PaymentPaid, model.PaymentRefunded}
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

type completeDueResponse struct {
	Completed int    `json:"completed"`
	AsOf      string `json:"as_of"`
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.QuoteRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, quote)
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SubmitRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Get(r.Context(), ps.ByName("id"), r.URL.Query().Get("email"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if err := httputil.DecodeJSON(r, &req, true); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var outcome model.PaymentOutcome
	if err := httputil.DecodeJSON(r, &outcome, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.RecordPayment(r.Context(), ps.ByName("id"), &outcome)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Complete(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) CompleteDue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	asOf, err := httputil.ParseDateParam(r, "as_of")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	now := time.Now().UTC()
	if asOf != nil {
		now = *asOf
	}

	completed, err := h.service.CompleteDueStays(r.Context(), now)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, completeDueResponse{
		Completed: completed,
		AsOf:      now.Format(httputil.DateLayout),
	})
}

func parseFilter(r *http.Request) (model.BookingFilter, error) {
	query := r.URL.Query()
	filter := model.BookingFilter{
		Status:        query.Get("status"),
		PaymentStatus: query.Get("payment_status"),
		RoomID:        query.Get("room_id"),
	}

	if filter.Status != "" && !slices.Contains(bookingStatuses, filter.Status) {
		return filter, apperrors.InvalidInput("invalid status parameter: " + filter.Status)
	}
	if filter.PaymentStatus != "" && !slices.Contains(paymentStatuses, filter.PaymentStatus) {
		return filter, apperrors.InvalidInput("invalid payment_status parameter: " + filter.PaymentStatus)
	}

	switch order := query.Get("order"); order {
	case "", "desc":
	case "asc":
		filter.SortAscending = true
	default:
		return filter, apperrors.InvalidInput("invalid order parameter: " + order)
	}

	var err error
	if filter.CheckInFrom, err = httputil.ParseDateParam(r, "check_in_from"); err != nil {
		return filter, err
	}
	if filter.CheckInTo, err = httputil.ParseDateParam(r, "check_in_to"); err != nil {
		return filter, err
	}

	return filter, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/quotes", h.Quote)
	router.POST("/api/v1/bookings", h.Submit)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/payment", h.RecordPayment)

	router.GET("/api/v1/admin/bookings", h.List)
	router.POST("/api/v1/admin/bookings/id/:id/complete", h.Complete)
	router.POST("/api/v1/admin/bookings/complete-due", h.CompleteDue)
}
