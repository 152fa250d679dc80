// Package rest reads the catalog from a PostgREST endpoint such as a hosted
// Supabase project.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/brewhouse/internal/catalog"
	"github.com/utafrali/brewhouse/internal/domain"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
	"github.com/utafrali/brewhouse/pkg/httpclient"
)

const (
	maxBodyBytes = 4 << 20

	// maxRemembered caps the number of distinct queries kept for the
	// breaker fallback.
	maxRemembered = 256

	// StaleHeader marks a response replayed from the last successful fetch.
	StaleHeader = "X-Catalog-Stale"
)

// Config holds the PostgREST endpoint and its anon key.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements catalog.Provider over the PostgREST HTTP API. While the
// circuit breaker is open it replays the last successful response for the
// same query, so menus stay browsable during a short catalog outage.
type Client struct {
	baseURL string
	http    httpclient.Doer
	logger  *slog.Logger

	mu         sync.RWMutex
	remembered map[string][]byte
}

// New builds a client with retries and a circuit breaker in front of the API.
func New(cfg Config, logger *slog.Logger) *Client {
	hcfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		hcfg.Timeout = cfg.Timeout
	}
	return newClient(cfg, hcfg, httpclient.CatalogBreakerConfig("catalog-rest"), logger)
}

func newClient(cfg Config, hcfg httpclient.Config, bcfg httpclient.CircuitBreakerConfig, logger *slog.Logger) *Client {
	hcfg.Headers = map[string]string{
		"apikey":        cfg.APIKey,
		"Authorization": "Bearer " + cfg.APIKey,
		"Accept":        "application/json",
	}

	c := NewWithDoer(cfg.BaseURL, nil)
	c.logger = logger
	bcfg.Fallback = c.replay
	c.http = httpclient.NewCircuitBreakerClient(httpclient.New(hcfg), bcfg, logger)
	return c
}

// NewWithDoer builds a client on an existing transport.
func NewWithDoer(baseURL string, doer httpclient.Doer) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       doer,
		logger:     slog.Default(),
		remembered: make(map[string][]byte),
	}
}

func (c *Client) remember(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.remembered[key]; !ok && len(c.remembered) >= maxRemembered {
		return
	}
	c.remembered[key] = body
}

// replay answers a refused request with the last body seen for its URL.
func (c *Client) replay(req *http.Request, err error) (*http.Response, error) {
	c.mu.RLock()
	body, ok := c.remembered[req.URL.String()]
	c.mu.RUnlock()
	if !ok {
		return nil, err
	}

	c.logger.WarnContext(req.Context(), "catalog unavailable, replaying last response",
		slog.String("url", req.URL.Path),
	)
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set(StaleHeader, "true")
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// productRow is the wire shape of coffees, matchas and desserts rows.
type productRow struct {
	ID          rowID           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	Category    *string         `json:"category"`
	Rating      *float64        `json:"rating"`
	Popular     bool            `json:"popular"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (r productRow) toDomain(kind domain.Kind) (domain.Product, error) {
	if r.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %s: negative price %s", r.ID, r.Price)
	}
	return domain.Product{
		ID:          string(r.ID),
		Kind:        kind,
		Name:        r.Name,
		Description: deref(r.Description),
		Price:       r.Price,
		ImageURL:    deref(r.ImageURL),
		Category:    deref(r.Category),
		Rating:      derefFloat(r.Rating),
		Popular:     r.Popular,
		CreatedAt:   r.CreatedAt,
	}, nil
}

type addOnRow struct {
	ID          rowID           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Type        *string         `json:"type"`
}

// ListProducts fetches every product of kind, popular first.
func (c *Client) ListProducts(ctx context.Context, kind domain.Kind) ([]domain.Product, error) {
	if !kind.Valid() {
		return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: fmt.Errorf("unknown kind")}
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "popular.desc")

	var rows []productRow
	if err := c.get(ctx, kind.Table(), q, &rows); err != nil {
		return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: err}
	}

	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain(kind)
		if err != nil {
			return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: err}
		}
		products = append(products, p)
	}
	catalog.SortProducts(products)
	return products, nil
}

// GetProduct fetches one product by id, or returns a NotFound error.
func (c *Client) GetProduct(ctx context.Context, kind domain.Kind, id string) (*domain.Product, error) {
	if !kind.Valid() {
		return nil, apperrors.NotFound(string(kind), id)
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("limit", "1")

	var rows []productRow
	if err := c.get(ctx, kind.Table(), q, &rows); err != nil {
		return nil, &catalog.FetchError{Op: "get product", Kind: kind, Err: err}
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound(string(kind), id)
	}

	p, err := rows[0].toDomain(kind)
	if err != nil {
		return nil, &catalog.FetchError{Op: "get product", Kind: kind, Err: err}
	}
	return &p, nil
}

// ListAddOns fetches every add-on ordered by type.
func (c *Client) ListAddOns(ctx context.Context) ([]domain.AddOn, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "type.asc")

	var rows []addOnRow
	if err := c.get(ctx, "add_ons", q, &rows); err != nil {
		return nil, &catalog.FetchError{Op: "list add-ons", Err: err}
	}

	addOns := make([]domain.AddOn, 0, len(rows))
	for _, r := range rows {
		if r.Price.IsNegative() {
			return nil, &catalog.FetchError{Op: "list add-ons", Err: fmt.Errorf("add-on %s: negative price %s", r.ID, r.Price)}
		}
		addOns = append(addOns, domain.AddOn{
			ID:          string(r.ID),
			Name:        r.Name,
			Description: deref(r.Description),
			Price:       r.Price,
			Type:        deref(r.Type),
		})
	}
	catalog.SortAddOns(addOns)
	return addOns, nil
}

func (c *Client) get(ctx context.Context, table string, q url.Values, dst any) error {
	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.ParseResponseError(resp, "catalog")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", table, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	if resp.Header.Get(StaleHeader) == "" {
		c.remember(req.URL.String(), body)
	}
	return nil
}

// rowID accepts both text and integer primary keys.
type rowID string

func (id *rowID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = rowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = rowID(n.String())
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
