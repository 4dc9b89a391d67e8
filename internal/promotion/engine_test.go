package promotion

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cart-pricing/internal/catalog"
	"github.com/noah-isme/cart-pricing/internal/common"
)

var testExpiry = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func ident(code string) Identity {
	return Identity{Code: code, Name: code + " promo", ExpiresOn: testExpiry}
}

func group(t *testing.T, code string, qty int, price int64) Group {
	t.Helper()
	items := make([]catalog.Product, 0, qty)
	for i := 0; i < qty; i++ {
		p, err := catalog.NewProduct(catalog.ProductParams{
			Code:      code,
			Name:      code,
			Category:  catalog.CategoryOther,
			UnitPrice: decimal.NewFromInt(price),
		})
		require.NoError(t, err)
		items = append(items, p)
	}
	return Group{Code: code, Items: items}
}

func requireDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.NewFromInt(want)), "expected %d, got %s", want, got)
}

func TestFlatPercentage(t *testing.T) {
	p, err := NewFlatPercentage(ident("10Percent"), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Equal(t, KindFlatPercentage, p.Kind())
	requireDecimal(t, 1800, p.Evaluate(group(t, "T120", 2, 1000)))
}

func TestFlatPercentageMonotonic(t *testing.T) {
	g := group(t, "T120", 3, 333)
	prev := g.ListTotal()
	for pct := int64(0); pct <= 100; pct += 5 {
		p, err := NewFlatPercentage(ident("flat"), decimal.NewFromInt(pct))
		require.NoError(t, err)
		got := p.Evaluate(g)
		require.False(t, got.GreaterThan(prev), "percent %d increased total", pct)
		require.False(t, got.IsNegative())
		prev = got
	}
	requireDecimal(t, 0, prev)
}

func TestFlatPercentageRejectsOutOfRange(t *testing.T) {
	for _, pct := range []int64{-1, 101} {
		_, err := NewFlatPercentage(ident("bad"), decimal.NewFromInt(pct))
		require.True(t, errors.Is(err, common.ErrValidation), "percent %d: %v", pct, err)
	}
}

func TestBuyKPercent(t *testing.T) {
	p, err := NewBuyKPercent(ident("Buy2Get10Percent"), 0, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Equal(t, DefaultBuyKThreshold, p.Threshold())
	requireDecimal(t, 1500, p.Evaluate(group(t, "T110", 1, 1500)))
	requireDecimal(t, 2700, p.Evaluate(group(t, "T110", 2, 1500)))
	requireDecimal(t, 4050, p.Evaluate(group(t, "T110", 3, 1500)))
}

func TestBuyKPercentRejectsInvalid(t *testing.T) {
	_, err := NewBuyKPercent(ident("neg"), -1, decimal.NewFromInt(10))
	require.True(t, errors.Is(err, common.ErrValidation))
	_, err = NewBuyKPercent(ident("pct"), 2, decimal.NewFromInt(150))
	require.True(t, errors.Is(err, common.ErrValidation))
}

func TestBuyNGetXFree(t *testing.T) {
	p, err := NewBuyNGetXFree(ident("Buy3Get1Free"), 3, 1, true)
	require.NoError(t, err)

	cases := []struct {
		qty  int
		free int
		want int64
	}{
		{qty: 1, free: 0, want: 100},
		{qty: 2, free: 0, want: 200},
		{qty: 3, free: 1, want: 200},
		{qty: 6, free: 2, want: 400},
		{qty: 7, free: 2, want: 500},
	}
	for _, tc := range cases {
		g := group(t, "T100", tc.qty, 100)
		require.Equal(t, tc.free, p.FreeUnits(tc.qty))
		got := p.Evaluate(g)
		requireDecimal(t, tc.want, got)
		require.False(t, got.GreaterThan(g.ListTotal()))
	}
}

func TestBuyNGetXFreeRejectsInvalid(t *testing.T) {
	cases := map[string]struct {
		n, x     int
		cheapest bool
	}{
		"zero n":       {n: 0, x: 0, cheapest: true},
		"negative n":   {n: -3, x: 1, cheapest: true},
		"negative x":   {n: 3, x: -1, cheapest: true},
		"x equals n":   {n: 2, x: 2, cheapest: true},
		"x exceeds n":  {n: 2, x: 5, cheapest: true},
		"not cheapest": {n: 3, x: 1, cheapest: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewBuyNGetXFree(ident("bad"), tc.n, tc.x, tc.cheapest)
			require.True(t, errors.Is(err, common.ErrValidation), "got %v", err)
		})
	}
}

func TestCustomDelegates(t *testing.T) {
	p, err := NewCustom(ident("Custom"), func(g Group) decimal.Decimal {
		return g.ListTotal().Sub(decimal.NewFromInt(50))
	})
	require.NoError(t, err)
	require.Equal(t, KindCustom, p.Kind())
	requireDecimal(t, 150, p.Evaluate(group(t, "X", 2, 100)))

	_, err = NewCustom(ident("nil"), nil)
	require.True(t, errors.Is(err, common.ErrValidation))
}

func TestIdentityValidation(t *testing.T) {
	_, err := NewFlatPercentage(Identity{Name: "x", ExpiresOn: testExpiry}, decimal.Zero)
	require.True(t, errors.Is(err, common.ErrValidation))
	_, err = NewFlatPercentage(Identity{Code: "x", Name: "x"}, decimal.Zero)
	require.True(t, errors.Is(err, common.ErrValidation))
}

func TestActiveIsStrictlyBeforeExpiry(t *testing.T) {
	p, err := NewFlatPercentage(ident("flat"), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.True(t, p.Active(testExpiry.Add(-time.Nanosecond)))
	require.False(t, p.Active(testExpiry))
	require.False(t, p.Active(testExpiry.Add(time.Hour)))
}

func TestClamp(t *testing.T) {
	list := decimal.NewFromInt(100)
	got, bound := Clamp(decimal.NewFromInt(-5), list)
	requireDecimal(t, 0, got)
	require.Equal(t, "lower", bound)

	got, bound = Clamp(decimal.NewFromInt(150), list)
	requireDecimal(t, 100, got)
	require.Equal(t, "upper", bound)

	got, bound = Clamp(decimal.NewFromInt(40), list)
	requireDecimal(t, 40, got)
	require.Empty(t, bound)
}

func TestGroupNominalPrice(t *testing.T) {
	g := group(t, "T100", 0, 0)
	requireDecimal(t, 0, g.ListTotal())

	mixed := Group{Code: "T100"}
	for _, price := range []int64{500, 400, 350} {
		p, err := catalog.NewProduct(catalog.ProductParams{Code: "T100", Name: "TShirt", Category: catalog.CategoryClothing, Size: catalog.SizeM, UnitPrice: decimal.NewFromInt(price)})
		require.NoError(t, err)
		mixed.Items = append(mixed.Items, p)
	}
	require.Equal(t, 3, mixed.Quantity())
	requireDecimal(t, 500, mixed.UnitPrice())
	requireDecimal(t, 1500, mixed.ListTotal())
}
