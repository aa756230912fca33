package pricing

import (
	"errors"

	"bloomcart/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
	ErrUnknownDiscountCode   = errors.New("unknown discount code")
	ErrNonPositiveTotal      = errors.New("order total must be positive")
)

// DiscountKind selects how a discount code is applied
type DiscountKind string

const (
	DiscountKindPercent DiscountKind = "percent"
	DiscountKindFixed   DiscountKind = "fixed"
)

// Discount describes the effect of a single discount code
type Discount struct {
	Kind  DiscountKind
	Value float64 // percent of subtotal, or fixed amount
}

// Config holds the rate tables the policy computes from. They are injected
// so tests can substitute fixtures without touching order logic.
type Config struct {
	ShippingRates         map[domain.ShippingMethod]float64
	FreeShippingThreshold float64
	TaxRate               float64
	DiscountCodes         map[string]Discount
}

// DefaultConfig returns the storefront's standard rate tables
func DefaultConfig() Config {
	return Config{
		ShippingRates: map[domain.ShippingMethod]float64{
			domain.ShippingMethodStandard:  5.99,
			domain.ShippingMethodExpress:   12.99,
			domain.ShippingMethodOvernight: 24.99,
			domain.ShippingMethodPickup:    0,
		},
		FreeShippingThreshold: 75,
		TaxRate:               0.08,
		DiscountCodes: map[string]Discount{
			"WELCOME10": {Kind: DiscountKindPercent, Value: 10},
			"SAVE20":    {Kind: DiscountKindPercent, Value: 20},
			"FREESHIP":  {Kind: DiscountKindFixed, Value: 5.99},
		},
	}
}

// Line is a priced order line before totalling
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Quote is the cost breakdown of an order. Total always equals
// Subtotal + ShippingCost + TaxAmount - DiscountAmount, each rounded to cents.
type Quote struct {
	Subtotal       float64
	ShippingCost   float64
	TaxAmount      float64
	DiscountAmount float64
	Total          float64
}

// Policy computes order quotes from injected rate tables
type Policy struct {
	cfg Config
}

// NewPolicy creates a pricing policy from the given rate tables
func NewPolicy(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// QuoteOrder computes the full cost breakdown for a set of priced lines.
// An unrecognized discount code fails the quote rather than silently
// contributing zero discount.
func (p *Policy) QuoteOrder(lines []Line, method domain.ShippingMethod, discountCode string) (Quote, error) {
	var q Quote

	rate, ok := p.cfg.ShippingRates[method]
	if !ok {
		return q, ErrUnknownShippingMethod
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		unitPrice := decimal.NewFromFloat(line.UnitPrice)
		subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.NewFromFloat(rate)
	if subtotal.GreaterThanOrEqual(decimal.NewFromFloat(p.cfg.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}

	tax := subtotal.Add(shipping).Mul(decimal.NewFromFloat(p.cfg.TaxRate)).Round(2)

	discount := decimal.Zero
	if discountCode != "" {
		d, ok := p.cfg.DiscountCodes[discountCode]
		if !ok {
			return q, ErrUnknownDiscountCode
		}
		switch d.Kind {
		case DiscountKindPercent:
			discount = subtotal.Mul(decimal.NewFromFloat(d.Value)).Div(decimal.NewFromInt(100)).Round(2)
		case DiscountKindFixed:
			discount = decimal.NewFromFloat(d.Value).Round(2)
		}
	}

	total := subtotal.Add(shipping).Add(tax).Sub(discount).Round(2)
	if total.LessThanOrEqual(decimal.Zero) {
		return q, ErrNonPositiveTotal
	}

	q.Subtotal, _ = subtotal.Float64()
	q.ShippingCost, _ = shipping.Float64()
	q.TaxAmount, _ = tax.Float64()
	q.DiscountAmount, _ = discount.Float64()
	q.Total, _ = total.Float64()

	return q, nil
}
