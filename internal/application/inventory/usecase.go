package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
	"github.com/jhoicas/Inventario-componentes/internal/domain/stock"
	"github.com/jhoicas/Inventario-componentes/pkg/logger"
)

// DefaultMaxTxAttempts intentos por defecto ante ErrConflict.
const DefaultMaxTxAttempts = 5

// conflictBackoff pausa entre intentos tras perder una carrera de creación.
const conflictBackoff = 5 * time.Millisecond

// StockOperationsUseCase motor de operaciones de stock (add/remove/move).
// Cada operación es una única transacción: valida antes de escribir, bloquea las filas
// (SELECT FOR UPDATE o mutex por clave), muta, registra en el ledger y hace Commit o Rollback.
type StockOperationsUseCase struct {
	txRunner      TxRunner
	componentRepo repository.ComponentRepository
	locationRepo  repository.StorageLocationRepository
	stockRepo     repository.ComponentLocationRepository // fuera de tx: agregado post-commit
	observer      ChangeObserver
	log           *logger.Logger
	maxAttempts   int
	now           func() time.Time
}

// Option configura el caso de uso.
type Option func(*StockOperationsUseCase)

// WithObserver registra el observador post-commit.
func WithObserver(o ChangeObserver) Option {
	return func(uc *StockOperationsUseCase) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option {
	return func(uc *StockOperationsUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithMaxTxAttempts fija los intentos ante ErrConflict (mínimo 1).
func WithMaxTxAttempts(n int) Option {
	return func(uc *StockOperationsUseCase) {
		if n >= 1 {
			uc.maxAttempts = n
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *StockOperationsUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// NewStockOperationsUseCase construye el caso de uso.
func NewStockOperationsUseCase(
	txRunner TxRunner,
	componentRepo repository.ComponentRepository,
	locationRepo repository.StorageLocationRepository,
	stockRepo repository.ComponentLocationRepository,
	opts ...Option,
) *StockOperationsUseCase {
	uc := &StockOperationsUseCase{
		txRunner:      txRunner,
		componentRepo: componentRepo,
		locationRepo:  locationRepo,
		stockRepo:     stockRepo,
		observer:      nopObserver{},
		log:           logger.Nop(),
		maxAttempts:   DefaultMaxTxAttempts,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AddStockInput entrada de AddStock. PricePerUnit/TotalPrice opcionales; el faltante se deriva.
type AddStockInput struct {
	ComponentID  string
	LocationID   string
	Quantity     int64
	User         entity.UserRef
	PricePerUnit *decimal.Decimal
	TotalPrice   *decimal.Decimal
	LotID        string
	Reference    string
}

// RemoveStockInput entrada de RemoveStock.
type RemoveStockInput struct {
	ComponentID string
	LocationID  string
	Quantity    int64
	User        entity.UserRef
	Reason      string
}

// MoveStockInput entrada de MoveStock.
type MoveStockInput struct {
	ComponentID           string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int64
	User                  entity.UserRef
	Reason                string
}

// AddStock suma quantity unidades en (componente, ubicación). Crea la fila si no existe.
func (uc *StockOperationsUseCase) AddStock(ctx context.Context, in AddStockInput) (*dto.AddStockResult, error) {
	if in.ComponentID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: component_id y location_id son requeridos", domain.ErrInvalidInput)
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := validateUser(in.User); err != nil {
		return nil, err
	}
	pricing, err := stock.DerivePricing(in.Quantity, in.PricePerUnit, in.TotalPrice)
	if err != nil {
		return nil, err
	}
	if err := uc.requireComponent(ctx, in.ComponentID); err != nil {
		return nil, err
	}
	if err := uc.requireLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}

	var (
		res       dto.AddStockResult
		committed *entity.ComponentLocation
	)
	err = uc.runWithRetry(ctx, "add", func(
		stockRepo repository.ComponentLocationRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		cl, created, err := stockRepo.EnsureForUpdate(ctx, in.ComponentID, in.LocationID)
		if err != nil {
			return err
		}
		prev := cl.QuantityOnHand
		if prev > math.MaxInt64-in.Quantity {
			return fmt.Errorf("%w: la cantidad resultante desborda", domain.ErrInvalidInput)
		}
		now := uc.now()

		// Sin stock previo: el costo de la ubicación pasa a ser el de esta entrada.
		if prev == 0 && pricing.HasUnitPrice() {
			cost := *pricing.PricePerUnit
			cl.UnitCostAtLocation = &cost
		}

		t := &entity.StockTransaction{
			ID:               uuid.New().String(),
			ComponentID:      in.ComponentID,
			Type:             entity.TransactionTypeADD,
			QuantityChange:   in.Quantity,
			PreviousQuantity: prev,
			NewQuantity:      prev + in.Quantity,
			ToLocationID:     in.LocationID,
			PricePerUnit:     pricing.PricePerUnit,
			TotalPrice:       pricing.TotalPrice,
			LotID:            in.LotID,
			Reference:        in.Reference,
			UserID:           in.User.ID,
			UserName:         in.User.Name,
			CreatedAt:        now,
		}
		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}

		cl.QuantityOnHand = t.NewQuantity
		cl.UpdatedAt = now
		if err := stockRepo.Update(ctx, cl); err != nil {
			return err
		}

		committed = cl.Clone()
		res = dto.AddStockResult{
			Success:          true,
			Message:          fmt.Sprintf("%d unidades agregadas", in.Quantity),
			TransactionID:    t.ID,
			ComponentID:      in.ComponentID,
			LocationID:       in.LocationID,
			Quantity:         in.Quantity,
			PreviousQuantity: prev,
			NewQuantity:      t.NewQuantity,
			LocationCreated:  created,
			PricePerUnit:     pricing.PricePerUnit,
			TotalPrice:       pricing.TotalPrice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := uc.aggregate(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	res.TotalQuantity = total

	uc.log.Info().
		Str("op", "add").
		Str("component_id", in.ComponentID).
		Str("location_id", in.LocationID).
		Int64("quantity", in.Quantity).
		Int64("new_quantity", res.NewQuantity).
		Bool("location_created", res.LocationCreated).
		Str("user_id", in.User.ID).
		Msg("stock agregado")

	uc.observer.StockCommitted(ctx, dto.StockCommittedEvent{
		Operation:     "add",
		ComponentID:   in.ComponentID,
		Locations:     []dto.CommittedLocationDTO{committedLocation(committed, false)},
		TotalQuantity: total,
	})
	return &res, nil
}

// RemoveStock retira hasta quantity unidades. Si se pide más de lo disponible se retira
// todo lo que hay (Capped=true); nunca es error. La fila se elimina al llegar a 0.
func (uc *StockOperationsUseCase) RemoveStock(ctx context.Context, in RemoveStockInput) (*dto.RemoveStockResult, error) {
	if in.ComponentID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: component_id y location_id son requeridos", domain.ErrInvalidInput)
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := validateUser(in.User); err != nil {
		return nil, err
	}
	if err := uc.requireComponent(ctx, in.ComponentID); err != nil {
		return nil, err
	}

	var (
		res       dto.RemoveStockResult
		committed *entity.ComponentLocation
	)
	err := uc.runWithRetry(ctx, "remove", func(
		stockRepo repository.ComponentLocationRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		cl, err := stockRepo.GetForUpdate(ctx, in.ComponentID, in.LocationID)
		if err != nil {
			return err
		}
		if cl == nil || cl.QuantityOnHand <= 0 {
			return fmt.Errorf("%w: el componente %s no tiene stock en la ubicación %s",
				domain.ErrNotFound, in.ComponentID, in.LocationID)
		}
		prev := cl.QuantityOnHand
		actual := min(in.Quantity, prev)
		now := uc.now()

		reason := in.Reason
		if reason == "" {
			reason = "Retiro de stock"
		}
		t := &entity.StockTransaction{
			ID:               uuid.New().String(),
			ComponentID:      in.ComponentID,
			Type:             entity.TransactionTypeREMOVE,
			QuantityChange:   -actual,
			PreviousQuantity: prev,
			NewQuantity:      prev - actual,
			FromLocationID:   in.LocationID,
			UserID:           in.User.ID,
			UserName:         in.User.Name,
			Reason:           reason,
			CreatedAt:        now,
		}
		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}

		cl.QuantityOnHand = t.NewQuantity
		cl.UpdatedAt = now
		deleted := cl.QuantityOnHand == 0
		if deleted {
			if err := stockRepo.Delete(ctx, in.ComponentID, in.LocationID); err != nil {
				return err
			}
		} else if err := stockRepo.Update(ctx, cl); err != nil {
			return err
		}

		committed = cl.Clone()
		res = dto.RemoveStockResult{
			Success:           true,
			Message:           removeMessage(in.Quantity, actual),
			TransactionID:     t.ID,
			ComponentID:       in.ComponentID,
			LocationID:        in.LocationID,
			RequestedQuantity: in.Quantity,
			ActualQuantity:    actual,
			Capped:            in.Quantity > prev,
			PreviousQuantity:  prev,
			NewQuantity:       t.NewQuantity,
			LocationDeleted:   deleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := uc.aggregate(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	res.TotalQuantity = total

	uc.log.Info().
		Str("op", "remove").
		Str("component_id", in.ComponentID).
		Str("location_id", in.LocationID).
		Int64("requested", in.Quantity).
		Int64("removed", res.ActualQuantity).
		Bool("capped", res.Capped).
		Bool("location_deleted", res.LocationDeleted).
		Str("user_id", in.User.ID).
		Msg("stock retirado")

	uc.observer.StockCommitted(ctx, dto.StockCommittedEvent{
		Operation:     "remove",
		ComponentID:   in.ComponentID,
		Locations:     []dto.CommittedLocationDTO{committedLocation(committed, res.LocationDeleted)},
		TotalQuantity: total,
	})
	return &res, nil
}

// MoveStock traslada hasta quantity unidades de origen a destino en una sola transacción.
// Las dos filas se bloquean en orden ascendente de clave (no por rol) para que dos traslados
// opuestos entre las mismas ubicaciones no se bloqueen mutuamente. El total agregado no cambia.
func (uc *StockOperationsUseCase) MoveStock(ctx context.Context, in MoveStockInput) (*dto.MoveStockResult, error) {
	if in.ComponentID == "" || in.SourceLocationID == "" || in.DestinationLocationID == "" {
		return nil, fmt.Errorf("%w: component_id, source_location_id y destination_location_id son requeridos", domain.ErrInvalidInput)
	}
	if in.SourceLocationID == in.DestinationLocationID {
		return nil, fmt.Errorf("%w: origen y destino son la misma ubicación", domain.ErrInvalidInput)
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := validateUser(in.User); err != nil {
		return nil, err
	}
	if err := uc.requireComponent(ctx, in.ComponentID); err != nil {
		return nil, err
	}
	if err := uc.requireLocation(ctx, in.DestinationLocationID); err != nil {
		return nil, err
	}

	srcKey := stock.LockKey{ComponentID: in.ComponentID, LocationID: in.SourceLocationID}
	dstKey := stock.LockKey{ComponentID: in.ComponentID, LocationID: in.DestinationLocationID}

	var (
		res                        dto.MoveStockResult
		committedSrc, committedDst *entity.ComponentLocation
	)
	err := uc.runWithRetry(ctx, "move", func(
		stockRepo repository.ComponentLocationRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		var (
			src, dst   *entity.ComponentLocation
			dstCreated bool
		)
		// El destino se crea (con 0) en su turno del orden; si el origen no existe,
		// se corta ahí y el Rollback descarta lo creado.
		for _, key := range stock.LockOrder(srcKey, dstKey) {
			var err error
			if key != srcKey {
				if dst, dstCreated, err = stockRepo.EnsureForUpdate(ctx, key.ComponentID, key.LocationID); err != nil {
					return err
				}
				continue
			}
			if src, err = stockRepo.GetForUpdate(ctx, key.ComponentID, key.LocationID); err != nil {
				return err
			}
			if src == nil || src.QuantityOnHand <= 0 {
				return fmt.Errorf("%w: el componente %s no tiene stock en la ubicación origen %s",
					domain.ErrNotFound, in.ComponentID, in.SourceLocationID)
			}
		}

		srcPrev := src.QuantityOnHand
		dstPrev := dst.QuantityOnHand
		actual := min(in.Quantity, srcPrev)
		if dstPrev > math.MaxInt64-actual {
			return fmt.Errorf("%w: la cantidad resultante desborda", domain.ErrInvalidInput)
		}
		now := uc.now()
		correlationID := uuid.New().String()

		inherited := false
		if dstCreated && dst.UnitCostAtLocation == nil && src.UnitCostAtLocation != nil {
			cost := *src.UnitCostAtLocation
			dst.UnitCostAtLocation = &cost
			inherited = true
		}

		removeReason, addReason := in.Reason, in.Reason
		if in.Reason == "" {
			removeReason = "Traslado a " + in.DestinationLocationID
			addReason = "Traslado desde " + in.SourceLocationID
		}
		outTx := &entity.StockTransaction{
			ID:               uuid.New().String(),
			ComponentID:      in.ComponentID,
			Type:             entity.TransactionTypeREMOVE,
			QuantityChange:   -actual,
			PreviousQuantity: srcPrev,
			NewQuantity:      srcPrev - actual,
			FromLocationID:   in.SourceLocationID,
			ToLocationID:     in.DestinationLocationID,
			CorrelationID:    correlationID,
			UserID:           in.User.ID,
			UserName:         in.User.Name,
			Reason:           removeReason,
			CreatedAt:        now,
		}
		inTx := &entity.StockTransaction{
			ID:               uuid.New().String(),
			ComponentID:      in.ComponentID,
			Type:             entity.TransactionTypeADD,
			QuantityChange:   actual,
			PreviousQuantity: dstPrev,
			NewQuantity:      dstPrev + actual,
			FromLocationID:   in.SourceLocationID,
			ToLocationID:     in.DestinationLocationID,
			CorrelationID:    correlationID,
			UserID:           in.User.ID,
			UserName:         in.User.Name,
			Reason:           addReason,
			CreatedAt:        now,
		}
		if err := txRepo.Create(ctx, outTx); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, inTx); err != nil {
			return err
		}

		src.QuantityOnHand = outTx.NewQuantity
		src.UpdatedAt = now
		srcDeleted := src.QuantityOnHand == 0
		if srcDeleted {
			if err := stockRepo.Delete(ctx, in.ComponentID, in.SourceLocationID); err != nil {
				return err
			}
		} else if err := stockRepo.Update(ctx, src); err != nil {
			return err
		}

		dst.QuantityOnHand = inTx.NewQuantity
		dst.UpdatedAt = now
		if err := stockRepo.Update(ctx, dst); err != nil {
			return err
		}

		committedSrc, committedDst = src.Clone(), dst.Clone()
		res = dto.MoveStockResult{
			Success:                     true,
			Message:                     moveMessage(in.Quantity, actual),
			RemoveTransactionID:         outTx.ID,
			AddTransactionID:            inTx.ID,
			CorrelationID:               correlationID,
			ComponentID:                 in.ComponentID,
			SourceLocationID:            in.SourceLocationID,
			DestinationLocationID:       in.DestinationLocationID,
			RequestedQuantity:           in.Quantity,
			ActualQuantity:              actual,
			Capped:                      in.Quantity > srcPrev,
			SourcePreviousQuantity:      srcPrev,
			SourceNewQuantity:           outTx.NewQuantity,
			DestinationPreviousQuantity: dstPrev,
			DestinationNewQuantity:      inTx.NewQuantity,
			SourceLocationDeleted:       srcDeleted,
			DestinationLocationCreated:  dstCreated,
			PricingInherited:            inherited,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := uc.aggregate(ctx, in.ComponentID)
	if err != nil {
		return nil, err
	}
	res.TotalQuantity = total

	uc.log.Info().
		Str("op", "move").
		Str("component_id", in.ComponentID).
		Str("source_location_id", in.SourceLocationID).
		Str("destination_location_id", in.DestinationLocationID).
		Int64("requested", in.Quantity).
		Int64("moved", res.ActualQuantity).
		Bool("capped", res.Capped).
		Str("correlation_id", res.CorrelationID).
		Str("user_id", in.User.ID).
		Msg("stock trasladado")

	uc.observer.StockCommitted(ctx, dto.StockCommittedEvent{
		Operation:     "move",
		ComponentID:   in.ComponentID,
		CorrelationID: res.CorrelationID,
		Locations: []dto.CommittedLocationDTO{
			committedLocation(committedSrc, res.SourceLocationDeleted),
			committedLocation(committedDst, false),
		},
		TotalQuantity: total,
	})
	return &res, nil
}

// runWithRetry repite la unidad de trabajo completa mientras falle por ErrConflict,
// hasta maxAttempts intentos con una pausa fija entre ellos.
// Cualquier otro error (o nil) se devuelve tal cual.
func (uc *StockOperationsUseCase) runWithRetry(ctx context.Context, op string, fn func(
	stockRepo repository.ComponentLocationRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	backoff := retry.WithMaxRetries(uint64(uc.maxAttempts-1), retry.NewConstant(conflictBackoff))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := uc.txRunner.Run(ctx, fn)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt < uc.maxAttempts {
			uc.log.Warn().Str("op", op).Int("attempt", attempt).Err(err).Msg("carrera de creación de fila; reintentando")
		}
		return retry.RetryableError(err)
	})
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%s: %d intentos: %w", op, attempt, err)
	}
	return err
}

func (uc *StockOperationsUseCase) aggregate(ctx context.Context, componentID string) (int64, error) {
	total, err := uc.stockRepo.SumQuantityByComponent(ctx, componentID)
	if err != nil {
		return 0, fmt.Errorf("operación comprometida; recalcular total: %w", err)
	}
	return total, nil
}

func (uc *StockOperationsUseCase) requireComponent(ctx context.Context, id string) error {
	c, err := uc.componentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: componente %s", domain.ErrNotFound, id)
	}
	return nil
}

func (uc *StockOperationsUseCase) requireLocation(ctx context.Context, id string) error {
	l, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return nil
}

func validateQuantity(q int64) error {
	if q <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor que 0 (recibido %d)", domain.ErrInvalidInput, q)
	}
	return nil
}

func validateUser(u entity.UserRef) error {
	if u.ID == "" {
		return fmt.Errorf("%w: usuario requerido", domain.ErrUnauthorized)
	}
	return nil
}

func removeMessage(requested, actual int64) string {
	if requested > actual {
		return fmt.Sprintf("se solicitaron %d unidades; solo había %d y se retiraron todas", requested, actual)
	}
	return fmt.Sprintf("%d unidades retiradas", actual)
}

func moveMessage(requested, actual int64) string {
	if requested > actual {
		return fmt.Sprintf("se solicitaron %d unidades; solo había %d en origen y se trasladaron todas", requested, actual)
	}
	return fmt.Sprintf("%d unidades trasladadas", actual)
}

func committedLocation(cl *entity.ComponentLocation, deleted bool) dto.CommittedLocationDTO {
	return dto.CommittedLocationDTO{ComponentLocationDTO: toLocationDTO(cl), Deleted: deleted}
}
