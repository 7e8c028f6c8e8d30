package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

type CheckoutHandler struct {
	orders port.OrderPlacer
}

func RegisterCheckout(mux *http.ServeMux, orders port.OrderPlacer) {
	h := CheckoutHandler{orders}
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
}

func (h CheckoutHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostCheckout"
	log := slog.With("op", op)

	var req OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	conf, err := h.orders.PlaceOrder(r.Context(), domain.OrderRequest{
		DeliveryLocation: req.DeliveryLocation,
		Landmark:         req.Landmark,
		PaymentType:      domain.PaymentType(req.PaymentType),
	})
	if err != nil && conf.OrderCode == "" {
		writeError(w, err, "Failed to place order")
		log.Warn("order not placed", "err", err)
		return
	}
	if err != nil {
		log.Error("order placed with errors", "orderCode", conf.OrderCode, "err", err)
	}

	writeJSON(w, http.StatusCreated, OrderConfirmation{
		OrderCode:    conf.OrderCode,
		Total:        conf.Total,
		CurrencyCode: conf.CurrencyCode,
		Items:        conf.Items,
	})
}
