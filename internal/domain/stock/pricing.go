package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-componentes/internal/domain"
)

// UnitPricePlaces decimales con los que se guarda un precio unitario derivado.
const UnitPricePlaces = 6

// Pricing precio unitario y total de una entrada; cualquiera puede ser nil (sin precio).
type Pricing struct {
	PricePerUnit *decimal.Decimal
	TotalPrice   *decimal.Decimal
}

// HasUnitPrice indica si hay precio unitario (dado o derivado).
func (p Pricing) HasUnitPrice() bool {
	return p.PricePerUnit != nil
}

// DerivePricing completa el precio faltante de una entrada de quantity unidades:
//
//	total = precioUnitario × cantidad   (si solo llega precio unitario)
//	precioUnitario = total / cantidad   (si solo llega total)
//
// Si llegan ambos se respetan tal cual. Precios negativos o cantidad no positiva son ErrInvalidInput.
func DerivePricing(quantity int64, pricePerUnit, totalPrice *decimal.Decimal) (Pricing, error) {
	if pricePerUnit != nil && pricePerUnit.IsNegative() {
		return Pricing{}, fmt.Errorf("%w: price_per_unit negativo", domain.ErrInvalidInput)
	}
	if totalPrice != nil && totalPrice.IsNegative() {
		return Pricing{}, fmt.Errorf("%w: total_price negativo", domain.ErrInvalidInput)
	}
	if pricePerUnit == nil && totalPrice == nil {
		return Pricing{}, nil
	}
	if quantity <= 0 {
		return Pricing{}, fmt.Errorf("%w: cantidad %d no permite derivar precios", domain.ErrInvalidInput, quantity)
	}

	qty := decimal.NewFromInt(quantity)
	out := Pricing{PricePerUnit: copyDecimal(pricePerUnit), TotalPrice: copyDecimal(totalPrice)}
	switch {
	case out.PricePerUnit != nil && out.TotalPrice == nil:
		total := out.PricePerUnit.Mul(qty)
		out.TotalPrice = &total
	case out.PricePerUnit == nil && out.TotalPrice != nil:
		ppu := out.TotalPrice.DivRound(qty, UnitPricePlaces)
		out.PricePerUnit = &ppu
	}
	return out, nil
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
