package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/brewhouse/internal/catalog"
	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/service"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
	"github.com/utafrali/brewhouse/pkg/httputil"
	"github.com/utafrali/brewhouse/pkg/logger"
	"github.com/utafrali/brewhouse/pkg/validator"
)

// StorefrontHandler handles HTTP requests for menu, cart and checkout endpoints.
type StorefrontHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc *service.Storefront, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *StorefrontHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}

func kindParam(r *http.Request) (domain.Kind, error) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", apperrors.InvalidInput(err.Error())
	}
	return kind, nil
}

// --- Menu ---

// ListMenu handles GET /api/v1/menu/{kind}?category=
func (h *StorefrontHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.service.Menu(r.Context(), kind, r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toMenuResponse(view)})
}

// GetProduct handles GET /api/v1/menu/{kind}/{productId}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.service.Product(r.Context(), kind, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toProductResponse(*p)})
}

// QuoteProduct handles POST /api/v1/menu/{kind}/{productId}/quote
func (h *StorefrontHandler) QuoteProduct(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req QuoteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	q, err := h.service.Quote(r.Context(), kind, chi.URLParam(r, "productId"), service.QuoteInput{
		Quantity: req.Quantity,
		AddOnIDs: req.AddOnIDs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toQuoteResponse(q)})
}

// ListAddOns handles GET /api/v1/add-ons?type=
func (h *StorefrontHandler) ListAddOns(w http.ResponseWriter, r *http.Request) {
	t := r.URL.Query().Get("type")
	if t == "" {
		t = catalog.AllCategories
	}

	view := h.service.AddOns(r.Context(), t)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toAddOnsResponse(view)})
}

// --- Cart ---

// GetCart handles GET /api/v1/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Cart(r.Context(), logger.SessionIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(view)})
}

// AddItem handles POST /api/v1/cart/items
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.AddItem(r.Context(), logger.SessionIDFromContext(r.Context()), service.AddItemInput{
		Kind:      req.Kind,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(view)})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *StorefrontHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), logger.SessionIDFromContext(r.Context()),
		chi.URLParam(r, "productId"), service.UpdateQuantityInput{Quantity: *req.Quantity})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(view)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveItem(r.Context(), logger.SessionIDFromContext(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartResponse(view)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), logger.SessionIDFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/v1/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.Checkout(r.Context(), logger.SessionIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toReceiptResponse(receipt)})
}
