package handler

import (
	"net/http"

	"innkeep/internal/payments/service"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	WebhookPath = "/api/v1/payments/webhook"
	Source      = "payment-webhook"
)

// WebhookHandler receives provider callbacks. It trusts its caller, so it
// must only be mounted behind the payment signature middleware.
type WebhookHandler struct {
	service service.OutcomeService
	log     *logger.Logger
}

func NewWebhookHandler(service service.OutcomeService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log,
	}
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event model.PaymentOutcomeEvent
	if err := httputil.DecodeJSON(r, &event, false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Apply(r.Context(), Source, &event)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(WebhookPath, h.Receive)
}
