package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
	"github.com/jhoicas/Inventario-componentes/internal/domain/stock"
)

var (
	_ repository.ComponentLocationRepository = (*stockRepo)(nil)
	_ repository.StockTransactionRepository  = (*ledgerRepo)(nil)
)

var (
	errNoTx     = errors.New("operación de escritura requiere transacción")
	errReadOnly = errors.New("vista de solo lectura")
)

// stockRepo con u == nil opera sobre el estado comprometido.
type stockRepo struct {
	s        *Store
	u        *unitOfWork
	readOnly bool
}

func (r *stockRepo) GetForUpdate(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, error) {
	if r.u == nil {
		return nil, errNoTx
	}
	key := stock.LockKey{ComponentID: componentID, LocationID: locationID}
	if err := r.u.lock(ctx, key); err != nil {
		return nil, err
	}
	return r.u.current(key), nil
}

func (r *stockRepo) EnsureForUpdate(ctx context.Context, componentID, locationID string) (*entity.ComponentLocation, bool, error) {
	if r.u == nil {
		return nil, false, errNoTx
	}
	key := stock.LockKey{ComponentID: componentID, LocationID: locationID}
	if err := r.u.lock(ctx, key); err != nil {
		return nil, false, err
	}
	if cl := r.u.current(key); cl != nil {
		return cl, false, nil
	}
	now := r.s.now().UTC()
	cl := &entity.ComponentLocation{
		ID:          uuid.New().String(),
		ComponentID: componentID,
		LocationID:  locationID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.u.staged[key] = &stagedRow{row: cl}
	return cl.Clone(), true, nil
}

func (r *stockRepo) Update(_ context.Context, cl *entity.ComponentLocation) error {
	if r.u == nil {
		return errNoTx
	}
	key := stock.LockKey{ComponentID: cl.ComponentID, LocationID: cl.LocationID}
	if err := r.u.requireLock(key); err != nil {
		return err
	}
	if r.u.current(key) == nil {
		return domain.ErrNotFound
	}
	row := cl.Clone()
	row.UpdatedAt = r.s.now().UTC()
	r.u.staged[key] = &stagedRow{row: row}
	return nil
}

func (r *stockRepo) Delete(_ context.Context, componentID, locationID string) error {
	if r.u == nil {
		return errNoTx
	}
	key := stock.LockKey{ComponentID: componentID, LocationID: locationID}
	if err := r.u.requireLock(key); err != nil {
		return err
	}
	r.u.staged[key] = &stagedRow{deleted: true}
	return nil
}

func (r *stockRepo) Get(_ context.Context, componentID, locationID string) (*entity.ComponentLocation, error) {
	key := stock.LockKey{ComponentID: componentID, LocationID: locationID}
	if r.u != nil {
		return r.u.current(key), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.rows[key].Clone(), nil
}

func (r *stockRepo) ListByComponent(_ context.Context, componentID string) ([]*entity.ComponentLocation, error) {
	rows := r.visible(componentID)
	sort.Slice(rows, func(i, j int) bool { return rows[i].LocationID < rows[j].LocationID })
	return rows, nil
}

func (r *stockRepo) SumQuantityByComponent(_ context.Context, componentID string) (int64, error) {
	var total int64
	for _, cl := range r.visible(componentID) {
		total += cl.QuantityOnHand
	}
	return total, nil
}

// UpdateReorder toma el lock de la fila para no pisar una operación en curso.
func (r *stockRepo) UpdateReorder(ctx context.Context, componentID, locationID string, threshold *int64, enabled bool) error {
	if r.readOnly {
		return errReadOnly
	}
	key := stock.LockKey{ComponentID: componentID, LocationID: locationID}
	if r.u != nil {
		if err := r.u.lock(ctx, key); err != nil {
			return err
		}
		cl := r.u.current(key)
		if cl == nil {
			return domain.ErrNotFound
		}
		cl.ReorderThreshold, cl.ReorderEnabled = threshold, enabled
		cl.UpdatedAt = r.s.now().UTC()
		r.u.staged[key] = &stagedRow{row: cl}
		return nil
	}

	unlock, err := r.s.locks.Lock(ctx, key.String())
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cl, ok := r.s.rows[key]
	if !ok {
		return domain.ErrNotFound
	}
	cl = cl.Clone()
	if threshold != nil {
		v := *threshold
		threshold = &v
	}
	cl.ReorderThreshold, cl.ReorderEnabled = threshold, enabled
	cl.UpdatedAt = r.s.now().UTC()
	r.s.rows[key] = cl
	return nil
}

// visible filas del componente según la vista del repo (comprometidas + pendientes de la tx).
func (r *stockRepo) visible(componentID string) []*entity.ComponentLocation {
	byKey := make(map[stock.LockKey]*entity.ComponentLocation)
	r.s.mu.RLock()
	for key, cl := range r.s.rows {
		if key.ComponentID == componentID {
			byKey[key] = cl.Clone()
		}
	}
	r.s.mu.RUnlock()

	if r.u != nil {
		for key, st := range r.u.staged {
			if key.ComponentID != componentID {
				continue
			}
			if st.deleted {
				delete(byKey, key)
				continue
			}
			byKey[key] = st.row.Clone()
		}
	}

	out := make([]*entity.ComponentLocation, 0, len(byKey))
	for _, cl := range byKey {
		out = append(out, cl)
	}
	return out
}

// ── Ledger ─────────────────────────────────────────────────────────────────

type ledgerRepo struct {
	s *Store
	u *unitOfWork
}

// Create encola la transacción; la secuencia se asigna al comprometer.
func (r *ledgerRepo) Create(_ context.Context, t *entity.StockTransaction) error {
	if r.u == nil {
		return errNoTx
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.s.now().UTC()
	}
	cp := *t
	r.u.pending = append(r.u.pending, &cp)
	return nil
}

func (r *ledgerRepo) GetByID(_ context.Context, id string) (*entity.StockTransaction, error) {
	for _, t := range r.all() {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *ledgerRepo) ListByComponent(_ context.Context, componentID string, limit, offset int) ([]*entity.StockTransaction, error) {
	list := r.byComponent(componentID)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Sequence > list[j].Sequence })
	return paginate(list, limit, offset), nil
}

func (r *ledgerRepo) ListForReplay(_ context.Context, componentID string) ([]*entity.StockTransaction, error) {
	list := r.byComponent(componentID)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
	return list, nil
}

func (r *ledgerRepo) byComponent(componentID string) []*entity.StockTransaction {
	var out []*entity.StockTransaction
	for _, t := range r.all() {
		if t.ComponentID == componentID {
			out = append(out, t)
		}
	}
	return out
}

// all copia del ledger comprometido; dentro de una tx agrega las pendientes con
// una secuencia provisional posterior a la última comprometida.
func (r *ledgerRepo) all() []*entity.StockTransaction {
	r.s.mu.RLock()
	out := make([]*entity.StockTransaction, 0, len(r.s.ledger))
	for _, t := range r.s.ledger {
		cp := *t
		out = append(out, &cp)
	}
	seq := r.s.seq
	r.s.mu.RUnlock()
	if r.u != nil {
		for _, t := range r.u.pending {
			seq++
			cp := *t
			cp.Sequence = seq
			out = append(out, &cp)
		}
	}
	return out
}
