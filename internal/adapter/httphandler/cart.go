package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

type CartHandler struct {
	cart     port.CartManager
	products port.ProductFinder
}

func RegisterCart(
	mux *http.ServeMux, cart port.CartManager, products port.ProductFinder,
) {
	h := CartHandler{cart: cart, products: products}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("PATCH /v1/cart/items/{id}", h.PatchItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.DeleteItem)
	mux.HandleFunc("DELETE /v1/cart", h.DeleteCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fromCart(h.cart.Snapshot()))
}

// PostItem adds a product with the catalog's current price and stock.
func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req AddCartItem
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.products.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err, "Error fetching product")
		log.Warn("failed to fetch product", "productID", req.ProductID, "err", err)
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	h.dispatch(w, r, domain.AddToCart{Item: domain.ItemFromProduct(p, quantity)})
}

func (h CartHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateCartItem
	if !decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, domain.UpdateQuantity{ProductID: id, Quantity: req.Quantity})
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, domain.RemoveFromCart{ProductID: id})
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, domain.ClearCart{})
}

func (h CartHandler) dispatch(w http.ResponseWriter, r *http.Request, a domain.Action) {
	const op = "CartHandler.dispatch"

	c, err := h.cart.Dispatch(r.Context(), a)
	if err != nil {
		writeError(w, err, "Failed to update the cart")
		slog.Error("failed to update cart", "op", op, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, fromCart(c))
}
