package stock

import (
	"fmt"
	"sort"

	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
)

// LocationReplay resultado de reproducir el ledger de una ubicación.
type LocationReplay struct {
	LocationID       string
	TransactionCount int
	ReplayedQuantity int64
	CurrentQuantity  int64
	Discrepancies    []string
}

// Consistent indica que el ledger reconstruye exactamente la cantidad actual.
func (r LocationReplay) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// Replay reproduce las transacciones de un componente (en orden de Sequence) por ubicación
// y las compara con las cantidades actuales (current: locationID → quantity_on_hand; una
// ubicación ausente vale 0). Cada transacción debe partir de la cantidad que dejó la anterior.
func Replay(txs []*entity.StockTransaction, current map[string]int64) []LocationReplay {
	ordered := make([]*entity.StockTransaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })

	byLoc := make(map[string]*LocationReplay)
	get := func(loc string) *LocationReplay {
		r, ok := byLoc[loc]
		if !ok {
			r = &LocationReplay{LocationID: loc}
			byLoc[loc] = r
		}
		return r
	}

	for _, t := range ordered {
		r := get(t.LocationID())
		r.TransactionCount++
		if t.PreviousQuantity != r.ReplayedQuantity {
			r.Discrepancies = append(r.Discrepancies, fmt.Sprintf(
				"seq %d: previous_quantity %d, esperado %d", t.Sequence, t.PreviousQuantity, r.ReplayedQuantity))
		}
		if t.PreviousQuantity+t.QuantityChange != t.NewQuantity {
			r.Discrepancies = append(r.Discrepancies, fmt.Sprintf(
				"seq %d: %d %+d != %d", t.Sequence, t.PreviousQuantity, t.QuantityChange, t.NewQuantity))
		}
		switch t.Type {
		case entity.TransactionTypeADD:
			if t.QuantityChange <= 0 {
				r.Discrepancies = append(r.Discrepancies, fmt.Sprintf("seq %d: ADD con cambio %d", t.Sequence, t.QuantityChange))
			}
		case entity.TransactionTypeREMOVE:
			if t.QuantityChange >= 0 {
				r.Discrepancies = append(r.Discrepancies, fmt.Sprintf("seq %d: REMOVE con cambio %d", t.Sequence, t.QuantityChange))
			}
		default:
			r.Discrepancies = append(r.Discrepancies, fmt.Sprintf("seq %d: tipo desconocido %q", t.Sequence, t.Type))
		}
		if t.NewQuantity < 0 {
			r.Discrepancies = append(r.Discrepancies, fmt.Sprintf("seq %d: cantidad negativa %d", t.Sequence, t.NewQuantity))
		}
		r.ReplayedQuantity = t.NewQuantity
	}

	for loc := range current {
		get(loc)
	}

	out := make([]LocationReplay, 0, len(byLoc))
	for loc, r := range byLoc {
		r.CurrentQuantity = current[loc]
		if r.CurrentQuantity != r.ReplayedQuantity {
			r.Discrepancies = append(r.Discrepancies, fmt.Sprintf(
				"cantidad actual %d, ledger reconstruye %d", r.CurrentQuantity, r.ReplayedQuantity))
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out
}
