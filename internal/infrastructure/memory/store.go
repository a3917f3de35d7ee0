// Package memory implementa los puertos de repositorio y el TxRunner en memoria.
// Los locks de fila se reemplazan por un mutex por (component_id, location_id);
// las escrituras de cada transacción quedan en buffer y se aplican juntas en Commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
	"github.com/jhoicas/Inventario-componentes/internal/domain/stock"
)

var (
	_ inventory.TxRunner       = (*Store)(nil)
	_ inventory.SnapshotReader = (*Store)(nil)
)

// Store almacén en memoria seguro para uso concurrente.
type Store struct {
	mu         sync.RWMutex
	components map[string]*entity.Component
	locations  map[string]*entity.StorageLocation
	rows       map[stock.LockKey]*entity.ComponentLocation
	ledger     []*entity.StockTransaction
	seq        int64

	locks *KeyedLocker
	now   func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		components: make(map[string]*entity.Component),
		locations:  make(map[string]*entity.StorageLocation),
		rows:       make(map[stock.LockKey]*entity.ComponentLocation),
		locks:      NewKeyedLocker(),
		now:        time.Now,
	}
}

// Components repositorio de componentes.
func (s *Store) Components() repository.ComponentRepository { return &componentRepo{s: s} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() repository.StorageLocationRepository { return &locationRepo{s: s} }

// ComponentLocations repositorio de filas de stock fuera de transacción (lecturas, reorden).
func (s *Store) ComponentLocations() repository.ComponentLocationRepository {
	return &stockRepo{s: s}
}

// Transactions repositorio del ledger fuera de transacción (solo lecturas).
func (s *Store) Transactions() repository.StockTransactionRepository { return &ledgerRepo{s: s} }

// Run ejecuta fn en una unidad de trabajo. Si fn falla nada de lo escrito se aplica.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.ComponentLocationRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	u := &unitOfWork{s: s, held: make(map[stock.LockKey]func()), staged: make(map[stock.LockKey]*stagedRow)}
	defer u.release()

	if err := fn(&stockRepo{s: s, u: u}, &ledgerRepo{s: s, u: u}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.commit()
	return nil
}

// View ejecuta fn sobre una copia de filas y ledger tomada bajo un solo RLock.
// Los repos recibidos son de solo lectura.
func (s *Store) View(ctx context.Context, fn func(
	stockRepo repository.ComponentLocationRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	return fn(&stockRepo{s: snap, readOnly: true}, &ledgerRepo{s: snap})
}

// snapshot copia el estado comprometido de filas y ledger.
func (s *Store) snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Store{
		rows:   make(map[stock.LockKey]*entity.ComponentLocation, len(s.rows)),
		ledger: make([]*entity.StockTransaction, 0, len(s.ledger)),
		seq:    s.seq,
		now:    s.now,
	}
	for key, cl := range s.rows {
		snap.rows[key] = cl.Clone()
	}
	for _, t := range s.ledger {
		cp := *t
		snap.ledger = append(snap.ledger, &cp)
	}
	return snap
}

type stagedRow struct {
	row     *entity.ComponentLocation
	deleted bool
}

// unitOfWork estado de una transacción en curso: locks tomados y escrituras pendientes.
type unitOfWork struct {
	s       *Store
	held    map[stock.LockKey]func()
	staged  map[stock.LockKey]*stagedRow
	pending []*entity.StockTransaction
}

func (u *unitOfWork) lock(ctx context.Context, key stock.LockKey) error {
	if _, ok := u.held[key]; ok {
		return nil
	}
	unlock, err := u.s.locks.Lock(ctx, key.String())
	if err != nil {
		return err
	}
	u.held[key] = unlock
	return nil
}

func (u *unitOfWork) requireLock(key stock.LockKey) error {
	if _, ok := u.held[key]; !ok {
		return fmt.Errorf("fila %s no bloqueada en esta transacción", key)
	}
	return nil
}

// current fila visible para la transacción: pendiente si la hay, si no la comprometida.
func (u *unitOfWork) current(key stock.LockKey) *entity.ComponentLocation {
	if st, ok := u.staged[key]; ok {
		if st.deleted {
			return nil
		}
		return st.row.Clone()
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	return u.s.rows[key].Clone()
}

func (u *unitOfWork) commit() {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for key, st := range u.staged {
		if st.deleted {
			delete(u.s.rows, key)
			continue
		}
		u.s.rows[key] = st.row
	}
	for _, t := range u.pending {
		u.s.seq++
		t.Sequence = u.s.seq
		u.s.ledger = append(u.s.ledger, t)
	}
}

func (u *unitOfWork) release() {
	for _, unlock := range u.held {
		unlock()
	}
	u.held = nil
}

// ── Component ──────────────────────────────────────────────────────────────

type componentRepo struct{ s *Store }

func (r *componentRepo) Create(_ context.Context, c *entity.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.components {
		if existing.PartNumber == c.PartNumber {
			return domain.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	r.s.components[c.ID] = &cp
	return nil
}

func (r *componentRepo) GetByID(_ context.Context, id string) (*entity.Component, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.components[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *componentRepo) List(_ context.Context, limit, offset int) ([]*entity.Component, error) {
	r.s.mu.RLock()
	list := make([]*entity.Component, 0, len(r.s.components))
	for _, c := range r.s.components {
		cp := *c
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].PartNumber < list[j].PartNumber })
	return paginate(list, limit, offset), nil
}

// ── StorageLocation ────────────────────────────────────────────────────────

type locationRepo struct{ s *Store }

func (r *locationRepo) Create(_ context.Context, l *entity.StorageLocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.locations {
		if existing.Name == l.Name {
			return domain.ErrDuplicate
		}
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	cp := *l
	r.s.locations[l.ID] = &cp
	return nil
}

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.StorageLocation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *locationRepo) List(_ context.Context, limit, offset int) ([]*entity.StorageLocation, error) {
	r.s.mu.RLock()
	list := make([]*entity.StorageLocation, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		cp := *l
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
