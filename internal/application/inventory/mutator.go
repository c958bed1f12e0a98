package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 5 * time.Second
	publishTimeout     = 2 * time.Second
	retryBackoff       = 25 * time.Millisecond
)

// Mutator es el único componente autorizado a cambiar el saldo de un producto.
// Cada Apply es una unidad atómica: bloqueo de fila, verificación de no-negatividad,
// actualización versionada del saldo (compare-and-swap) y alta de la entrada en el
// ledger ocurren en una sola transacción. Ante conflicto de versión reintenta de
// forma acotada antes de devolver domain.ErrConflict.
type Mutator struct {
	txRunner    TxRunner
	notifier    ChangeNotifier
	log         *logger.Logger
	maxAttempts int
	timeout     time.Duration
}

// NewMutator construye el mutador. maxAttempts <= 0 y timeout <= 0 toman los
// valores por defecto (3 intentos, 5s).
func NewMutator(txRunner TxRunner, notifier ChangeNotifier, log *logger.Logger, maxAttempts int, timeout time.Duration) *Mutator {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Mutator{
		txRunner:    txRunner,
		notifier:    notifier,
		log:         log,
		maxAttempts: maxAttempts,
		timeout:     timeout,
	}
}

// Timeout plazo máximo configurado para una mutación. Los flujos multi-línea
// (ventas, devoluciones, restock) acotan su transacción con el mismo plazo.
func (m *Mutator) Timeout() time.Duration {
	return m.timeout
}

// ApplyInput entrada para registrar una mutación de saldo.
type ApplyInput struct {
	CompanyID   string
	ProductID   string
	Delta       decimal.Decimal // distinto de cero, con signo
	Type        string          // entity.StockEvent*
	Reason      string          // obligatorio en ajustes manuales
	ReferenceID string          // venta/devolución/orden de compra origen
	ActorID     string
	// Idempotent omite la mutación (domain.ErrDuplicate) si ya existe una
	// entrada (ProductID, ReferenceID, Type) en el ledger. El chequeo corre
	// dentro de la misma transacción que la mutación.
	Idempotent bool
}

func (in ApplyInput) validate() error {
	if in.CompanyID == "" || in.ProductID == "" || in.ActorID == "" {
		return domain.ErrInvalidInput
	}
	if in.Delta.IsZero() {
		return domain.ErrInvalidInput
	}
	if !entity.ValidStockEvent(in.Type) {
		return domain.ErrInvalidInput
	}
	if in.Type == entity.StockEventAdjustment && strings.TrimSpace(in.Reason) == "" {
		return domain.ErrInvalidInput
	}
	if in.Idempotent && in.ReferenceID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// Apply aplica un delta en su propia transacción, con timeout y reintentos ante
// conflicto. Tras confirmar publica el evento de cambio (fire-and-forget).
func (m *Mutator) Apply(ctx context.Context, in ApplyInput) (*entity.StockHistory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var entry *entity.StockHistory
	err := RetryOnConflict(ctx, m.maxAttempts, func() error {
		return m.txRunner.Run(ctx, func(
			productRepo repository.ProductRepository,
			historyRepo repository.StockHistoryRepository,
		) error {
			e, err := m.ApplyInTx(ctx, productRepo, historyRepo, in)
			if err != nil {
				return err
			}
			entry = e
			return nil
		})
	})
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrConflict) {
			err = domain.ErrUnavailable
		}
		// Todo intento queda auditado por log aunque no genere entrada en el ledger.
		m.log.Warn().Err(err).
			Str("company_id", in.CompanyID).
			Str("product_id", in.ProductID).
			Str("type", in.Type).
			Str("delta", in.Delta.String()).
			Msg("mutación de stock rechazada")
		return nil, err
	}
	m.PublishChange(entry)
	return entry, nil
}

// ApplyInTx aplica el delta usando los repositorios de la transacción del caller
// (aprobación de devoluciones, ventas, restock). Sin reintentos ni publicación:
// el caller es dueño del commit y debe llamar PublishChange tras confirmar.
func (m *Mutator) ApplyInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	in ApplyInput,
) (*entity.StockHistory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	// Bloquea la fila del producto: es el punto de serialización por producto.
	product, err := productRepo.GetForUpdate(ctx, in.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	// El chequeo de duplicados corre DESPUÉS de tomar el bloqueo de fila: en
	// READ COMMITTED, dos tx concurrentes con la misma referencia verían ambas
	// "no existe" si el chequeo corriera antes de serializarse en el lock, y la
	// segunda acreditaría el stock dos veces.
	if in.Idempotent {
		exists, err := historyRepo.ExistsByReference(ctx, in.ProductID, in.ReferenceID, in.Type)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicate
		}
	}

	newQty := product.StockQuantity.Add(in.Delta)
	if newQty.IsNegative() {
		// Nunca se persiste un saldo negativo, ni de forma transitoria.
		return nil, domain.ErrInsufficientStock
	}

	// Compare-and-swap sobre version: si otra tx ganó, domain.ErrConflict.
	if err := productRepo.UpdateStockVersioned(ctx, product.ID, newQty, product.Version); err != nil {
		return nil, err
	}

	entry := &entity.StockHistory{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		ProductID:      in.ProductID,
		Type:           in.Type,
		QuantityChange: in.Delta,
		QuantityAfter:  newQty,
		Reason:         in.Reason,
		ReferenceID:    in.ReferenceID,
		CreatedBy:      in.ActorID,
		CreatedAt:      time.Now(),
	}
	if err := historyRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// PublishChange publica los eventos de cambio de las entradas confirmadas.
// Best-effort en goroutine propia: no bloquea al caller y un fallo solo se loguea.
func (m *Mutator) PublishChange(entries ...*entity.StockHistory) {
	if m.notifier == nil {
		return
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		ev := StockChangeEvent{
			CompanyID:   e.CompanyID,
			ProductID:   e.ProductID,
			NewQuantity: e.QuantityAfter,
			EventType:   e.Type,
		}
		go func(ev StockChangeEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := m.notifier.PublishStockChange(ctx, ev); err != nil {
				m.log.Warn().Err(err).
					Str("product_id", ev.ProductID).
					Msg("no se pudo publicar el evento de cambio de stock")
			}
		}(ev)
	}
}

// RetryOnConflict ejecuta fn y reintenta ante domain.ErrConflict con backoff
// lineal, hasta attempts intentos. Cualquier otro error corta de inmediato.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return domain.ErrUnavailable
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return err
}
