package promotion

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/cart-pricing/internal/common"
)

// DefaultBuyKThreshold is the quantity a BuyKPercent promotion requires when none is given.
const DefaultBuyKThreshold = 2

var hundred = decimal.NewFromInt(100)

// FlatPercentage takes a fixed percentage off every unit in the group.
type FlatPercentage struct {
	base
	percent decimal.Decimal
}

// NewFlatPercentage builds a flat percentage promotion. percent must be within [0, 100].
func NewFlatPercentage(id Identity, percent decimal.Decimal) (*FlatPercentage, error) {
	b, err := newBase(id)
	if err != nil {
		return nil, err
	}
	if err := checkPercent(b.code, percent); err != nil {
		return nil, err
	}
	return &FlatPercentage{base: b, percent: percent}, nil
}

func (p *FlatPercentage) Kind() Kind               { return KindFlatPercentage }
func (p *FlatPercentage) Percent() decimal.Decimal { return p.percent }

// Evaluate returns ListTotal * (1 - percent/100).
func (p *FlatPercentage) Evaluate(g Group) decimal.Decimal {
	return applyPercent(g.ListTotal(), p.percent)
}

// BuyKPercent applies a percentage to the whole line once the group reaches a quantity threshold.
type BuyKPercent struct {
	base
	threshold int
	percent   decimal.Decimal
}

type buyKParams struct {
	Threshold int `validate:"gte=1"`
}

// NewBuyKPercent builds a threshold percentage promotion. A threshold of 0 selects DefaultBuyKThreshold.
func NewBuyKPercent(id Identity, threshold int, percent decimal.Decimal) (*BuyKPercent, error) {
	b, err := newBase(id)
	if err != nil {
		return nil, err
	}
	if threshold == 0 {
		threshold = DefaultBuyKThreshold
	}
	if err := common.ValidateStruct(buyKParams{Threshold: threshold}); err != nil {
		return nil, err
	}
	if err := checkPercent(b.code, percent); err != nil {
		return nil, err
	}
	return &BuyKPercent{base: b, threshold: threshold, percent: percent}, nil
}

func (p *BuyKPercent) Kind() Kind               { return KindBuyKPercent }
func (p *BuyKPercent) Threshold() int           { return p.threshold }
func (p *BuyKPercent) Percent() decimal.Decimal { return p.percent }

// Evaluate discounts the full line when the group holds at least threshold units.
func (p *BuyKPercent) Evaluate(g Group) decimal.Decimal {
	list := g.ListTotal()
	if g.Quantity() < p.threshold {
		return list
	}
	return applyPercent(list, p.percent)
}

// BuyNGetXFree gives x free units for every complete set of n units.
type BuyNGetXFree struct {
	base
	n int
	x int
}

type buyNGetXParams struct {
	N int `validate:"gt=0"`
	X int `validate:"gte=0,ltfield=N"`
}

// NewBuyNGetXFree builds a buy-n-get-x-free promotion. Free units are valued at the group's
// nominal unit price, so cheapestFree must be true.
func NewBuyNGetXFree(id Identity, n, x int, cheapestFree bool) (*BuyNGetXFree, error) {
	b, err := newBase(id)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(buyNGetXParams{N: n, X: x}); err != nil {
		return nil, err
	}
	if !cheapestFree {
		return nil, common.ValidationError("promotion %q: only the cheapest-unit-free policy is supported", b.code)
	}
	return &BuyNGetXFree{base: b, n: n, x: x}, nil
}

func (p *BuyNGetXFree) Kind() Kind { return KindBuyNGetXFree }
func (p *BuyNGetXFree) N() int     { return p.n }
func (p *BuyNGetXFree) X() int     { return p.x }

// FreeUnits is floor(qty/n)*x capped at qty.
func (p *BuyNGetXFree) FreeUnits(qty int) int {
	if qty <= 0 {
		return 0
	}
	free := (qty / p.n) * p.x
	if free > qty {
		free = qty
	}
	return free
}

// Evaluate charges the non-free units at the nominal unit price.
func (p *BuyNGetXFree) Evaluate(g Group) decimal.Decimal {
	qty := g.Quantity()
	paid := qty - p.FreeUnits(qty)
	return g.UnitPrice().Mul(decimal.NewFromInt(int64(paid)))
}

// RuleFunc computes a discounted line total for a group. It should return a value within
// [0, ListTotal]; results outside that range are clamped by the pricing engine.
type RuleFunc func(g Group) decimal.Decimal

// Custom delegates evaluation to a caller supplied rule.
type Custom struct {
	base
	rule RuleFunc
}

// NewCustom wraps rule as a promotion.
func NewCustom(id Identity, rule RuleFunc) (*Custom, error) {
	b, err := newBase(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, common.ValidationError("promotion %q: rule is required", b.code)
	}
	return &Custom{base: b, rule: rule}, nil
}

func (p *Custom) Kind() Kind { return KindCustom }

// Evaluate returns the rule's result unchanged.
func (p *Custom) Evaluate(g Group) decimal.Decimal {
	return p.rule(g)
}

// Clamp bounds total to [0, list]. It reports which bound was applied, or "" when total was in range.
func Clamp(total, list decimal.Decimal) (decimal.Decimal, string) {
	if total.IsNegative() {
		return decimal.Zero, "lower"
	}
	if total.GreaterThan(list) {
		return list, "upper"
	}
	return total, ""
}

func applyPercent(list, percent decimal.Decimal) decimal.Decimal {
	if list.Sign() <= 0 {
		return decimal.Zero
	}
	return list.Mul(hundred.Sub(percent)).Div(hundred)
}

func checkPercent(code string, percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return common.ValidationError("promotion %q: percent must be within [0, 100], got %s", code, percent)
	}
	return nil
}
