package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/cart-pricing/internal/common"
)

// Category groups products that share attribute sets.
type Category string

const (
	CategoryClothing Category = "clothing"
	CategoryOther    Category = "other"
)

// Size is the garment size carried by clothing products.
type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

// DefaultUnitName is used when the caller does not name the selling unit.
const DefaultUnitName = "Per"

// ProductParams carries the inputs accepted by NewProduct.
type ProductParams struct {
	Code      string          `validate:"required"`
	Name      string          `validate:"required"`
	Category  Category        `validate:"required,oneof=clothing other"`
	Size      Size            `validate:"omitempty,oneof=S M L XL"`
	UnitName  string          `validate:"omitempty,max=16"`
	UnitPrice decimal.Decimal `validate:"-"`
}

// Product is an immutable sellable item. Items sharing a Code are priced as one group.
type Product struct {
	code      string
	name      string
	category  Category
	size      Size
	unitName  string
	unitPrice decimal.Decimal
}

// NewProduct validates params and returns the product value.
func NewProduct(p ProductParams) (Product, error) {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.UnitName = strings.TrimSpace(p.UnitName)
	if err := common.ValidateStruct(p); err != nil {
		return Product{}, err
	}
	if p.UnitPrice.IsNegative() {
		return Product{}, common.ValidationError("product %q: unit price must not be negative, got %s", p.Code, p.UnitPrice)
	}
	if p.Size != "" && p.Category != CategoryClothing {
		return Product{}, common.ValidationError("product %q: size applies to clothing only", p.Code)
	}
	if p.UnitName == "" {
		p.UnitName = DefaultUnitName
	}
	return Product{
		code:      p.Code,
		name:      p.Name,
		category:  p.Category,
		size:      p.Size,
		unitName:  p.UnitName,
		unitPrice: p.UnitPrice,
	}, nil
}

func (p Product) Code() string               { return p.code }
func (p Product) Name() string               { return p.name }
func (p Product) Category() Category         { return p.category }
func (p Product) Size() Size                 { return p.size }
func (p Product) UnitName() string           { return p.unitName }
func (p Product) UnitPrice() decimal.Decimal { return p.unitPrice }
