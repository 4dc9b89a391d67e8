package promotion

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/cart-pricing/internal/common"
)

// Registry holds the known promotions and, per promotion, the product codes it applies to.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	promotions map[string]Promotion
	// product code -> promotion codes
	eligible map[string]map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		promotions: make(map[string]Promotion),
		eligible:   make(map[string]map[string]struct{}),
	}
}

// AddPromotion registers p. A promotion whose code is already registered is rejected and the
// registry is left unchanged.
func (r *Registry) AddPromotion(p Promotion) error {
	if p == nil {
		return common.ValidationError("promotion is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.promotions[p.Code()]; exists {
		return common.DuplicateCodeError("promotion", p.Code())
	}
	r.promotions[p.Code()] = p
	return nil
}

// AddEligibleProduct marks productCode as eligible for promotionCode. Adding an existing pair is a no-op.
func (r *Registry) AddEligibleProduct(promotionCode, productCode string) error {
	productCode = strings.TrimSpace(productCode)
	if productCode == "" {
		return common.ValidationError("product code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promotions[promotionCode]; !ok {
		return common.NotFoundError("promotion", promotionCode)
	}
	codes, ok := r.eligible[productCode]
	if !ok {
		codes = make(map[string]struct{})
		r.eligible[productCode] = codes
	}
	codes[promotionCode] = struct{}{}
	return nil
}

// PromotionsFor returns the promotions registered for productCode that are active at the given
// instant, ordered by code. It returns an empty slice when none apply.
func (r *Registry) PromotionsFor(productCode string, at time.Time) []Promotion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := r.eligible[productCode]
	out := make([]Promotion, 0, len(codes))
	for code := range codes {
		p := r.promotions[code]
		if p != nil && p.Active(at) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}

// Promotion looks up a registered promotion by code.
func (r *Registry) Promotion(code string) (Promotion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.promotions[code]
	return p, ok
}

// Len returns the number of registered promotions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.promotions)
}
