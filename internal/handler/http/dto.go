package http

import (
	"time"

	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/pricing"
	"github.com/utafrali/brewhouse/internal/service"
)

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// Quantity defaults to 1.
type AddItemRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=coffee matcha dessert"`
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// UpdateQuantityRequest is the JSON request body for setting a line item's quantity.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

// QuoteRequest is the JSON request body for pricing a detail page selection.
type QuoteRequest struct {
	Quantity int      `json:"quantity" validate:"required,gte=1,lte=99"`
	AddOnIDs []string `json:"add_on_ids" validate:"max=20,unique,dive,required"`
}

// --- Response DTOs ---
// Money is rendered as fixed two-decimal strings.

type productResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"`
	Popular     bool      `json:"popular"`
	CreatedAt   time.Time `json:"created_at"`
}

type addOnResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Type        string `json:"type"`
}

type lineItemResponse struct {
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"line_total"`
}

type summaryResponse struct {
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	GrandTotal string `json:"grand_total"`
	TaxRate    string `json:"tax_rate"`
}

type menuResponse struct {
	Kind       string            `json:"kind"`
	Category   string            `json:"category,omitempty"`
	Products   []productResponse `json:"products"`
	Categories []string          `json:"categories"`
	Available  bool              `json:"available"`
}

type addOnsResponse struct {
	Type      string          `json:"type,omitempty"`
	AddOns    []addOnResponse `json:"add_ons"`
	Types     []string        `json:"types"`
	Available bool            `json:"available"`
}

type quoteResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	AddOns   []addOnResponse `json:"add_ons"`
	Total    string          `json:"total"`
}

type cartResponse struct {
	SessionID   string             `json:"session_id"`
	Items       []lineItemResponse `json:"items"`
	TotalItems  int                `json:"total_items"`
	Summary     summaryResponse    `json:"summary"`
	CanCheckout bool               `json:"can_checkout"`
}

type receiptResponse struct {
	OrderID    string             `json:"order_id"`
	Items      []lineItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	Summary    summaryResponse    `json:"summary"`
	PlacedAt   time.Time          `json:"placed_at"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Kind:        string(p.Kind),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Rating:      p.Rating,
		Popular:     p.Popular,
		CreatedAt:   p.CreatedAt,
	}
}

func toAddOnResponses(addOns []domain.AddOn) []addOnResponse {
	out := make([]addOnResponse, len(addOns))
	for i, a := range addOns {
		out[i] = addOnResponse{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Price:       a.Price.StringFixed(2),
			Type:        a.Type,
		}
	}
	return out
}

func toLineItemResponses(items []domain.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, len(items))
	for i, li := range items {
		out[i] = lineItemResponse{
			Product:   toProductResponse(li.Product),
			Quantity:  li.Quantity,
			LineTotal: li.Total().StringFixed(2),
		}
	}
	return out
}

func toSummaryResponse(s pricing.Summary) summaryResponse {
	return summaryResponse{
		Subtotal:   s.Subtotal.StringFixed(2),
		Tax:        s.Tax.StringFixed(2),
		GrandTotal: s.GrandTotal.StringFixed(2),
		TaxRate:    s.TaxRate.StringFixed(2),
	}
}

func toMenuResponse(v *service.MenuView) menuResponse {
	products := make([]productResponse, len(v.Products))
	for i, p := range v.Products {
		products[i] = toProductResponse(p)
	}
	return menuResponse{
		Kind:       string(v.Kind),
		Category:   v.Category,
		Products:   products,
		Categories: v.Categories,
		Available:  v.Available,
	}
}

func toAddOnsResponse(v *service.AddOnView) addOnsResponse {
	return addOnsResponse{
		Type:      v.Type,
		AddOns:    toAddOnResponses(v.AddOns),
		Types:     v.Types,
		Available: v.Available,
	}
}

func toQuoteResponse(q *service.QuoteResult) quoteResponse {
	return quoteResponse{
		Product:  toProductResponse(q.Product),
		Quantity: q.Quantity,
		AddOns:   toAddOnResponses(q.AddOns),
		Total:    q.Total.StringFixed(2),
	}
}

func toCartResponse(v *service.CartView) cartResponse {
	return cartResponse{
		SessionID:   v.SessionID,
		Items:       toLineItemResponses(v.Items),
		TotalItems:  v.TotalItems,
		Summary:     toSummaryResponse(v.Summary),
		CanCheckout: len(v.Items) > 0,
	}
}

func toReceiptResponse(r *service.Receipt) receiptResponse {
	return receiptResponse{
		OrderID:    r.OrderID,
		Items:      toLineItemResponses(r.Items),
		TotalItems: r.TotalItems,
		Summary:    toSummaryResponse(r.Summary),
		PlacedAt:   r.PlacedAt,
	}
}
