package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/brewhouse/internal/cart"
	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/pricing"
	pkgkafka "github.com/utafrali/brewhouse/pkg/kafka"
	"github.com/utafrali/brewhouse/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated = "brewhouse.cart.updated"
	TopicCartCleared = "brewhouse.cart.cleared"
	TopicOrderPlaced = "brewhouse.order.placed"
)

// Aggregate type constants.
const (
	AggregateTypeCart  = "cart"
	AggregateTypeOrder = "order"
)

// Publisher sends an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// ItemData is the line item payload within cart and order events.
// Money is rendered as fixed two-decimal strings.
type ItemData struct {
	ProductID string `json:"product_id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string     `json:"session_id"`
	Items     []ItemData `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  string     `json:"subtotal"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID    string     `json:"order_id"`
	SessionID  string     `json:"session_id"`
	Items      []ItemData `json:"items"`
	ItemCount  int        `json:"item_count"`
	Subtotal   string     `json:"subtotal"`
	Tax        string     `json:"tax"`
	GrandTotal string     `json:"grand_total"`
	PlacedAt   time.Time  `json:"placed_at"`
}

// Order is what PublishOrderPlaced needs to know about a placed order.
type Order struct {
	ID        string
	SessionID string
	Items     []domain.LineItem
	Summary   pricing.Summary
	PlacedAt  time.Time
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func toItemData(items []domain.LineItem) []ItemData {
	out := make([]ItemData, len(items))
	for i, li := range items {
		out[i] = ItemData{
			ProductID: li.Product.ID,
			Kind:      string(li.Product.Kind),
			Name:      li.Product.Name,
			Price:     li.Product.Price.StringFixed(2),
			Quantity:  li.Quantity,
		}
	}
	return out
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any, metadata map[string]string) error {
	opts := []pkgkafka.EventOption{pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx))}
	for k, v := range metadata {
		opts = append(opts, pkgkafka.WithMetadata(k, v))
	}

	agg := pkgkafka.Aggregate{Type: aggregateType, ID: aggregateID}
	event, err := pkgkafka.NewEvent(topic, agg, data, opts...)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, snap cart.Snapshot) error {
	data := CartUpdatedData{
		SessionID: sessionID,
		Items:     toItemData(snap.Items),
		ItemCount: snap.TotalItems,
		Subtotal:  snap.Subtotal.StringFixed(2),
	}

	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data, nil); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("item_count", snap.TotalItems),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	data := CartClearedData{SessionID: sessionID}

	if err := p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, data, nil); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)
	return nil
}

// PublishOrderPlaced publishes an order.placed event keyed by session so it
// is ordered after that session's cart events.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order Order) error {
	count := 0
	for _, li := range order.Items {
		count += li.Quantity
	}

	data := OrderPlacedData{
		OrderID:    order.ID,
		SessionID:  order.SessionID,
		Items:      toItemData(order.Items),
		ItemCount:  count,
		Subtotal:   order.Summary.Subtotal.StringFixed(2),
		Tax:        order.Summary.Tax.StringFixed(2),
		GrandTotal: order.Summary.GrandTotal.StringFixed(2),
		PlacedAt:   order.PlacedAt,
	}

	meta := map[string]string{"order_id": order.ID}
	if err := p.publish(ctx, TopicOrderPlaced, order.SessionID, AggregateTypeOrder, data, meta); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "published order.placed event",
		slog.String("order_id", order.ID),
		slog.String("session_id", order.SessionID),
		slog.String("grand_total", data.GrandTotal),
	)
	return nil
}
