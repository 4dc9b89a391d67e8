package app

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/cart-pricing/internal/catalog"
	"github.com/noah-isme/cart-pricing/internal/pricing"
	"github.com/noah-isme/cart-pricing/internal/promotion"
)

// Demo promotion codes.
const (
	PromoFlat10       = "10Percent"
	PromoBuy2Get10    = "Buy2Get10Percent"
	PromoBuy3Get1Free = "Buy3Get1Free"
	PromoCustom       = "Custom"
)

// DemoRegistry registers the sample promotions and their eligible products. All promotions
// expire at expiresOn.
func DemoRegistry(expiresOn time.Time) (*promotion.Registry, error) {
	ten := decimal.NewFromInt(10)

	flat, err := promotion.NewFlatPercentage(promotion.Identity{Code: PromoFlat10, Name: "Flat 10% discount", ExpiresOn: expiresOn}, ten)
	if err != nil {
		return nil, err
	}
	buy2, err := promotion.NewBuyKPercent(promotion.Identity{Code: PromoBuy2Get10, Name: "Buy 2 get flat 10% discount", ExpiresOn: expiresOn}, promotion.DefaultBuyKThreshold, ten)
	if err != nil {
		return nil, err
	}
	buy3, err := promotion.NewBuyNGetXFree(promotion.Identity{Code: PromoBuy3Get1Free, Name: "Buy 3 get 1 free", ExpiresOn: expiresOn}, 3, 1, true)
	if err != nil {
		return nil, err
	}
	custom, err := promotion.NewCustom(promotion.Identity{Code: PromoCustom, Name: "Custom", ExpiresOn: expiresOn}, func(promotion.Group) decimal.Decimal {
		return decimal.Zero
	})
	if err != nil {
		return nil, err
	}

	reg := promotion.NewRegistry()
	for _, p := range []promotion.Promotion{flat, buy2, buy3, custom} {
		if err := reg.AddPromotion(p); err != nil {
			return nil, fmt.Errorf("register %s: %w", p.Code(), err)
		}
	}
	eligible := []struct{ promo, product string }{
		{PromoFlat10, "T120"},
		{PromoBuy2Get10, "T110"},
		{PromoBuy3Get1Free, "T100"},
	}
	for _, e := range eligible {
		if err := reg.AddEligibleProduct(e.promo, e.product); err != nil {
			return nil, fmt.Errorf("eligible %s/%s: %w", e.promo, e.product, err)
		}
	}
	return reg, nil
}

// DemoProducts returns the sample clothing catalogue keyed by name.
func DemoProducts() (map[string]catalog.Product, error) {
	specs := []struct {
		code, name string
		price      int64
	}{
		{"T100", "TShirt1", 500},
		{"T100", "TShirt2", 400},
		{"T100", "TShirt3", 350},
		{"T110", "Jeans1", 1500},
		{"T110", "Jeans2", 1449},
		{"T120", "Trouser", 1000},
	}
	out := make(map[string]catalog.Product, len(specs))
	for _, s := range specs {
		p, err := catalog.NewProduct(catalog.ProductParams{
			Code:      s.code,
			Name:      s.name,
			Category:  catalog.CategoryClothing,
			Size:      catalog.SizeM,
			UnitName:  catalog.DefaultUnitName,
			UnitPrice: decimal.NewFromInt(s.price),
		})
		if err != nil {
			return nil, err
		}
		out[s.name] = p
	}
	return out, nil
}

// DemoCartItems lists the product names placed in the sample cart.
var DemoCartItems = []string{"TShirt1", "TShirt2", "TShirt3"}

// FillDemoCart adds the sample cart items to engine.
func FillDemoCart(engine *pricing.Engine) error {
	products, err := DemoProducts()
	if err != nil {
		return err
	}
	for _, name := range DemoCartItems {
		p, ok := products[name]
		if !ok {
			return fmt.Errorf("demo product %q missing", name)
		}
		engine.AddItem(p)
	}
	return nil
}
