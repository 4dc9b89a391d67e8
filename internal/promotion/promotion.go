package promotion

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/cart-pricing/internal/catalog"
	"github.com/noah-isme/cart-pricing/internal/common"
)

// Kind names a promotion variant.
type Kind string

const (
	KindFlatPercentage Kind = "flat_percentage"
	KindBuyKPercent    Kind = "buy_k_percent"
	KindBuyNGetXFree   Kind = "buy_n_get_x_free"
	KindCustom         Kind = "custom"
)

// Promotion is a coded, time-bounded discount rule. Evaluate returns the discounted line
// total of a group of identical products.
//
// The set of implementations is closed: use NewFlatPercentage, NewBuyKPercent,
// NewBuyNGetXFree or NewCustom.
type Promotion interface {
	Code() string
	Name() string
	ExpiresOn() time.Time
	Active(at time.Time) bool
	Kind() Kind
	Evaluate(g Group) decimal.Decimal
	sealed()
}

// Identity holds the fields shared by every promotion variant.
type Identity struct {
	Code      string    `validate:"required"`
	Name      string    `validate:"required"`
	ExpiresOn time.Time `validate:"-"`
}

type base struct {
	code      string
	name      string
	expiresOn time.Time
}

func newBase(id Identity) (base, error) {
	id.Code = strings.TrimSpace(id.Code)
	id.Name = strings.TrimSpace(id.Name)
	if err := common.ValidateStruct(id); err != nil {
		return base{}, err
	}
	if id.ExpiresOn.IsZero() {
		return base{}, common.ValidationError("promotion %q: expiry is required", id.Code)
	}
	return base{code: id.Code, name: id.Name, expiresOn: id.ExpiresOn}, nil
}

func (b base) Code() string         { return b.code }
func (b base) Name() string         { return b.name }
func (b base) ExpiresOn() time.Time { return b.expiresOn }
func (b base) sealed()              {}

// Active reports whether at is strictly before the expiry.
func (b base) Active(at time.Time) bool {
	return at.Before(b.expiresOn)
}

// Group is the set of cart items sharing one product code.
type Group struct {
	Code  string
	Items []catalog.Product
}

// Quantity is the number of units in the group.
func (g Group) Quantity() int {
	return len(g.Items)
}

// UnitPrice is the group's nominal unit price: the price of its first item.
func (g Group) UnitPrice() decimal.Decimal {
	if len(g.Items) == 0 {
		return decimal.Zero
	}
	return g.Items[0].UnitPrice()
}

// ListTotal is quantity times the nominal unit price.
func (g Group) ListTotal() decimal.Decimal {
	return g.UnitPrice().Mul(decimal.NewFromInt(int64(g.Quantity())))
}
