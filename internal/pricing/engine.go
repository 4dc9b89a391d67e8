package pricing

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/cart-pricing/internal/catalog"
	"github.com/noah-isme/cart-pricing/internal/obs"
	"github.com/noah-isme/cart-pricing/internal/promotion"
)

// PromotionSource resolves the promotions applicable to a product code at an instant.
type PromotionSource interface {
	PromotionsFor(productCode string, at time.Time) []promotion.Promotion
}

// Line is the priced contribution of one product group.
type Line struct {
	Code          string          `json:"code"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ListTotal     decimal.Decimal `json:"list_total"`
	Total         decimal.Decimal `json:"total"`
	Savings       decimal.Decimal `json:"savings"`
	PromotionCode string          `json:"promotion_code,omitempty"`
	PromotionKind promotion.Kind  `json:"promotion_kind,omitempty"`
}

// Quote aggregates the priced lines of a cart.
type Quote struct {
	At       time.Time       `json:"at"`
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Savings  decimal.Decimal `json:"savings"`
	Total    decimal.Decimal `json:"total"`
}

// Engine is a cart that prices its items against a promotion source. It is safe for
// concurrent use; pricing never mutates the cart.
type Engine struct {
	ID      uuid.UUID
	source  PromotionSource
	logger  zerolog.Logger
	metrics *obs.PricingMetrics
	now     func() time.Time

	mu    sync.Mutex
	items []catalog.Product
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for quote and anomaly events.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables Prometheus recording.
func WithMetrics(m *obs.PricingMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the clock used by Total.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine returns an empty cart bound to source.
func NewEngine(source PromotionSource, opts ...Option) *Engine {
	e := &Engine{
		ID:     uuid.New(),
		source: source,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("cart_id", e.ID.String()).Logger()
	return e
}

// AddItem appends product to the cart.
func (e *Engine) AddItem(product catalog.Product) {
	e.mu.Lock()
	e.items = append(e.items, product)
	e.mu.Unlock()
}

// Items returns a copy of the cart contents in insertion order.
func (e *Engine) Items() []catalog.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]catalog.Product(nil), e.items...)
}

// Len returns the number of items in the cart.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Clear empties the cart.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.items = nil
	e.mu.Unlock()
}

// Total prices the cart at the engine clock's current time.
func (e *Engine) Total() decimal.Decimal {
	return e.TotalPrice(e.now())
}

// TotalPrice returns the cart total at the given instant with the best promotion applied to
// each product group.
func (e *Engine) TotalPrice(at time.Time) decimal.Decimal {
	return e.Quote(at).Total
}

// Quote prices every product group at the given instant. Groups are listed in the order their
// code first appeared in the cart.
func (e *Engine) Quote(at time.Time) Quote {
	start := time.Now()
	q := Quote{At: at, Subtotal: decimal.Zero, Savings: decimal.Zero, Total: decimal.Zero}
	for _, g := range groupItems(e.Items()) {
		line := e.priceGroup(g, at)
		q.Lines = append(q.Lines, line)
		q.Subtotal = q.Subtotal.Add(line.ListTotal)
		q.Savings = q.Savings.Add(line.Savings)
		q.Total = q.Total.Add(line.Total)
	}
	e.metrics.ObserveQuote(time.Since(start))
	e.logger.Debug().
		Time("at", at).
		Int("groups", len(q.Lines)).
		Str("subtotal", q.Subtotal.String()).
		Str("total", q.Total.String()).
		Msg("pricing_quote")
	return q
}

func (e *Engine) priceGroup(g promotion.Group, at time.Time) Line {
	list := g.ListTotal()
	line := Line{
		Code:      g.Code,
		Quantity:  g.Quantity(),
		UnitPrice: g.UnitPrice(),
		ListTotal: list,
		Total:     list,
		Savings:   decimal.Zero,
	}
	best, bestTotal := e.bestPromotion(g, list, at)
	if best == nil || !bestTotal.LessThan(list) {
		e.metrics.ObserveGroup(false, "")
		return line
	}
	line.Total = bestTotal
	line.Savings = list.Sub(bestTotal)
	line.PromotionCode = best.Code()
	line.PromotionKind = best.Kind()
	e.metrics.ObserveGroup(true, string(best.Kind()))
	return line
}

// bestPromotion evaluates every active promotion for the group and returns the one with the
// lowest clamped total. Equal totals resolve to the lexically smallest code.
func (e *Engine) bestPromotion(g promotion.Group, list decimal.Decimal, at time.Time) (promotion.Promotion, decimal.Decimal) {
	if e.source == nil {
		return nil, list
	}
	var (
		best      promotion.Promotion
		bestTotal decimal.Decimal
	)
	for _, p := range e.source.PromotionsFor(g.Code, at) {
		if p == nil || !p.Active(at) {
			continue
		}
		raw := p.Evaluate(g)
		total, bound := promotion.Clamp(raw, list)
		if bound != "" {
			e.metrics.ObserveClamp(bound)
			e.logger.Warn().
				Str("promotion_code", p.Code()).
				Str("promotion_kind", string(p.Kind())).
				Str("product_code", g.Code).
				Str("result", raw.String()).
				Str("list_total", list.String()).
				Str("bound", bound).
				Msg("promotion_result_clamped")
		}
		switch {
		case best == nil, total.LessThan(bestTotal):
			best, bestTotal = p, total
		case total.Equal(bestTotal) && p.Code() < best.Code():
			best = p
		}
	}
	return best, bestTotal
}

func groupItems(items []catalog.Product) []promotion.Group {
	index := make(map[string]int)
	groups := make([]promotion.Group, 0)
	for _, item := range items {
		i, ok := index[item.Code()]
		if !ok {
			i = len(groups)
			index[item.Code()] = i
			groups = append(groups, promotion.Group{Code: item.Code()})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
